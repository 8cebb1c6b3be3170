package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"fleetreport/internal/auth"
	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/repository"
)

const wireDateLayout = "2006-01-02"

// httpError translates a domain error into the standardized response body.
func httpError(err error) *echo.HTTPError {
	herr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(herr.StatusCode, herr.ToErrorResponse())
}

// requestClaims extracts the verified token claims the JWT middleware placed
// on the context.
func requestClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get("user").(*auth.Claims)
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", apperrors.ErrInvalidParameter, name)
	}
	return v, nil
}

// parseRecordFilter reads the optional start_date / end_date / fleet query
// parameters shared by the batch-delete and analytics endpoints.
func parseRecordFilter(c echo.Context) (repository.RecordFilter, error) {
	var filter repository.RecordFilter

	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := time.Parse(wireDateLayout, raw)
		if err != nil {
			return filter, fmt.Errorf("%w: start_date must be YYYY-MM-DD", apperrors.ErrInvalidParameter)
		}
		filter.StartDate = &t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, err := time.Parse(wireDateLayout, raw)
		if err != nil {
			return filter, fmt.Errorf("%w: end_date must be YYYY-MM-DD", apperrors.ErrInvalidParameter)
		}
		filter.EndDate = &t
	}
	if fleets := c.QueryParams()["fleets"]; len(fleets) > 0 {
		filter.Fleets = fleets
	} else if fleet := c.QueryParam("fleet"); fleet != "" && fleet != "All" {
		filter.Fleets = []string{fleet}
	}
	return filter, nil
}
