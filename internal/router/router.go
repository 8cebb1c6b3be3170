package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fleetreport/internal/auth"
	"fleetreport/internal/config"
	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/handler"
	"fleetreport/internal/model"
)

// CustomValidator adapts go-playground/validator to echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate runs struct validation on the bound request.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Register wires middleware and the full route table onto the echo instance.
// Token verification goes through jwtService so the middleware and the auth
// service share one validation path.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	fleetHandler *handler.FleetHandler,
	fileHandler *handler.FileHandler,
	analyticsHandler *handler.AnalyticsHandler,
) {
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		// Browser clients read the import outcome and download filename from
		// these response headers.
		ExposeHeaders: []string{"X-Import-Rows", "X-Import-Skipped", echo.HeaderContentDisposition},
	}))

	e.GET("/", liveness)
	e.GET("/health", liveness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.POST("/auth/token", authHandler.Login)

	secured := e.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.Validate(token)
		},
		ErrorHandler: jwtErrorHandler,
	}))

	secured.GET("/auth/me", authHandler.Me)
	secured.POST("/auth/register", authHandler.Register, requireRole(model.RoleAdmin))
	secured.GET("/auth/users", authHandler.ListUsers, requireRole(model.RoleAdmin))

	secured.POST("/fleet/", fleetHandler.CreateRecord)
	secured.GET("/fleet/", fleetHandler.ListRecords)
	secured.DELETE("/fleet/batch", fleetHandler.DeleteBatch, requireRole(model.RoleAdmin))
	secured.DELETE("/fleet/:id", fleetHandler.DeleteRecord, requireRole(model.RoleAdmin))

	secured.POST("/files/upload-summary", fileHandler.UploadSummary, requireRole(model.RoleAdmin))

	secured.GET("/analytics/summary", analyticsHandler.Summary)
	secured.GET("/analytics/dashboard-stats", analyticsHandler.Dashboard)
	secured.GET("/analytics/charts", analyticsHandler.Charts)
	secured.GET("/analytics/filters", analyticsHandler.Filters)
	secured.GET("/analytics/download/excel", analyticsHandler.DownloadExcel)
}

func liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fleetreport",
	})
}

// jwtErrorHandler keeps error bodies in the standard shape and distinguishes
// expired tokens from missing, malformed, or badly signed ones.
func jwtErrorHandler(c echo.Context, err error) error {
	mapped := apperrors.ErrTokenInvalid
	if errors.Is(err, apperrors.ErrTokenExpired) {
		mapped = apperrors.ErrTokenExpired
	}
	herr := apperrors.MapErrorToHTTP(mapped)
	return echo.NewHTTPError(herr.StatusCode, herr.ToErrorResponse())
}

// requireRole gates a route on the role claim of the verified token.
func requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.Claims)
			if !ok {
				herr := apperrors.MapErrorToHTTP(apperrors.ErrTokenInvalid)
				return echo.NewHTTPError(herr.StatusCode, herr.ToErrorResponse())
			}
			if err := auth.RequireRole(claims, role); err != nil {
				herr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(herr.StatusCode, herr.ToErrorResponse())
			}
			return next(c)
		}
	}
}
