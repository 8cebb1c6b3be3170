package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
	"fleetreport/internal/service"
)

// FleetHandler handles fleet record CRUD endpoints.
type FleetHandler struct {
	fleetService service.FleetService
}

// NewFleetHandler creates a new fleet record handler.
func NewFleetHandler(fleetService service.FleetService) *FleetHandler {
	return &FleetHandler{fleetService: fleetService}
}

// CreateRecordRequest carries one record to store.
type CreateRecordRequest struct {
	Date   string          `json:"date" validate:"required"`
	Fleet  string          `json:"fleet" validate:"required,min=1,max=100"`
	Amount decimal.Decimal `json:"amount"`
}

// RecordResponse is the wire representation of a stored record.
type RecordResponse struct {
	ID     uint            `json:"id"`
	Date   string          `json:"date"`
	Fleet  string          `json:"fleet"`
	Amount decimal.Decimal `json:"amount"`
}

// BatchDeleteResponse reports how many records a batch delete removed.
type BatchDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func toRecordResponse(r *model.FleetRecord) RecordResponse {
	return RecordResponse{
		ID:     r.ID,
		Date:   r.Date.Format(wireDateLayout),
		Fleet:  r.Fleet,
		Amount: r.Amount,
	}
}

func toStorageRecord(req *CreateRecordRequest) (*model.FleetRecord, error) {
	date, err := time.Parse(wireDateLayout, req.Date)
	if err != nil {
		return nil, apperrors.ErrInvalidParameter
	}
	return &model.FleetRecord{
		Date:   date,
		Fleet:  req.Fleet,
		Amount: req.Amount,
	}, nil
}

// CreateRecord godoc
// @Summary Create a fleet record
// @Tags fleet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRecordRequest true "Record to create"
// @Success 201 {object} RecordResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /fleet/ [post]
func (h *FleetHandler) CreateRecord(c echo.Context) error {
	var req CreateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := toStorageRecord(&req)
	if err != nil {
		return httpError(err)
	}
	created, err := h.fleetService.Create(c.Request().Context(), record)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toRecordResponse(created))
}

// ListRecords godoc
// @Summary List fleet records
// @Tags fleet
// @Produce json
// @Security BearerAuth
// @Param offset query int false "Offset"
// @Param limit query int false "Limit (max 500)"
// @Success 200 {array} RecordResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /fleet/ [get]
func (h *FleetHandler) ListRecords(c echo.Context) error {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return httpError(err)
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return httpError(err)
	}

	records, err := h.fleetService.List(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}

	out := make([]RecordResponse, 0, len(records))
	for i := range records {
		out = append(out, toRecordResponse(&records[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteRecord godoc
// @Summary Delete one fleet record (admin only)
// @Tags fleet
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /fleet/{id} [delete]
func (h *FleetHandler) DeleteRecord(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return httpError(apperrors.ErrInvalidParameter)
	}
	if err := h.fleetService.Delete(c.Request().Context(), uint(id)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteBatch godoc
// @Summary Delete fleet records matching a filter (admin only)
// @Tags fleet
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param fleet query string false "Fleet code"
// @Success 200 {object} BatchDeleteResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /fleet/batch [delete]
func (h *FleetHandler) DeleteBatch(c echo.Context) error {
	filter, err := parseRecordFilter(c)
	if err != nil {
		return httpError(err)
	}
	deleted, err := h.fleetService.DeleteBatch(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, BatchDeleteResponse{Deleted: deleted})
}
