package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"fleetreport/internal/service"
)

// AnalyticsHandler handles the read-only reporting endpoints.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary godoc
// @Summary Full reporting payload for the current filter
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param fleet query string false "Fleet code"
// @Success 200 {object} service.AnalyticsSummary
// @Failure 400 {object} errors.ErrorResponse
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	filter, err := parseRecordFilter(c)
	if err != nil {
		return httpError(err)
	}
	summary, err := h.analytics.Summary(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Dashboard godoc
// @Summary KPI aggregates for the dashboard
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param fleet query string false "Fleet code"
// @Success 200 {object} service.DashboardStats
// @Failure 400 {object} errors.ErrorResponse
// @Router /analytics/dashboard-stats [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	filter, err := parseRecordFilter(c)
	if err != nil {
		return httpError(err)
	}
	stats, err := h.analytics.Dashboard(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Charts godoc
// @Summary Pre-aggregated chart series
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param fleet query string false "Fleet code"
// @Success 200 {object} service.ChartData
// @Failure 400 {object} errors.ErrorResponse
// @Router /analytics/charts [get]
func (h *AnalyticsHandler) Charts(c echo.Context) error {
	filter, err := parseRecordFilter(c)
	if err != nil {
		return httpError(err)
	}
	charts, err := h.analytics.Charts(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, charts)
}

// Filters godoc
// @Summary Available filter values
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.FilterOptions
// @Router /analytics/filters [get]
func (h *AnalyticsHandler) Filters(c echo.Context) error {
	opts, err := h.analytics.FilterOptions(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, opts)
}

// DownloadExcel godoc
// @Summary Download the filtered report as a styled workbook
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param fleet query string false "Fleet code"
// @Success 200 {file} binary
// @Failure 400 {object} errors.ErrorResponse
// @Router /analytics/download/excel [get]
func (h *AnalyticsHandler) DownloadExcel(c echo.Context) error {
	filter, err := parseRecordFilter(c)
	if err != nil {
		return httpError(err)
	}
	workbook, err := h.analytics.ExcelReport(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}

	filename := fmt.Sprintf("Fleet_Report_%s.xlsx", time.Now().Format(wireDateLayout))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, xlsxContentType, workbook)
}
