package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileHandler handles bulk file uploads.
type FileHandler struct {
	importService service.ImportService
	reports       *service.ReportBuilder
}

// NewFileHandler creates a new file upload handler.
func NewFileHandler(importService service.ImportService, reports *service.ReportBuilder) *FileHandler {
	return &FileHandler{importService: importService, reports: reports}
}

// UploadSummary godoc
// @Summary Import a CSV/XLSX file and return a summary workbook (admin only)
// @Tags files
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param file formData file true "CSV or XLSX file with Date, Fleet, Amount columns"
// @Success 200 {file} binary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /files/upload-summary [post]
func (h *FileHandler) UploadSummary(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}
	if fh.Size > service.MaxUploadSize {
		return httpError(apperrors.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot open uploaded file")
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, service.MaxUploadSize+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}

	result, err := h.importService.Import(c.Request().Context(), fh.Filename, content)
	if err != nil {
		return httpError(err)
	}

	workbook, err := h.reports.BuildWorkbook(result.Imported, result)
	if err != nil {
		return httpError(err)
	}

	filename := fmt.Sprintf("Fleet_Report_%s.xlsx", time.Now().Format(wireDateLayout))
	header := c.Response().Header()
	header.Set("X-Import-Rows", strconv.Itoa(len(result.Imported)))
	header.Set("X-Import-Skipped", strconv.Itoa(len(result.Skipped)))
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, xlsxContentType, workbook)
}
