package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fleetreport/internal/cache"
	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
	"fleetreport/internal/repository"
)

// MaxUploadSize bounds accepted upload payloads.
const MaxUploadSize = 10 << 20 // 10 MiB

// fleetAliases maps legacy fleet codes to their canonical form.
var fleetAliases = map[string]string{
	"2010M": "2010",
}

// ImportResult summarizes one processed upload. Skipped rows never abort the
// upload; they are collected here and reported back to the caller.
type ImportResult struct {
	Filename string
	Imported []model.FleetRecord
	Skipped  []apperrors.RowError
}

// ImportService converts an uploaded tabular file into persisted records.
type ImportService interface {
	Import(ctx context.Context, filename string, content []byte) (*ImportResult, error)
}

type importService struct {
	records repository.FleetRecordRepository
	cache   *cache.Client
}

// NewImportService builds the import pipeline over the record repository. A
// committed batch drops the cached dashboard aggregates.
func NewImportService(records repository.FleetRecordRepository, cache *cache.Client) ImportService {
	return &importService{records: records, cache: cache}
}

// Import runs the pipeline: accept the file, parse it into rows, locate the
// required columns, clean each row, and persist the valid rows in a single
// transaction. File-level failures (type, size, structure, missing columns)
// abort the whole upload with nothing committed; row-level failures are
// skipped and reported.
func (s *importService) Import(ctx context.Context, filename string, content []byte) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".csv" && ext != ".xlsx" {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFile, ext)
	}
	if len(content) > MaxUploadSize {
		return nil, apperrors.ErrFileTooLarge
	}

	var rows [][]string
	var err error
	if ext == ".csv" {
		rows, err = parseCSV(content)
	} else {
		rows, err = parseXLSX(content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedFile, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file has no header row", apperrors.ErrUnsupportedFile)
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Filename: filename}
	for i, row := range rows[1:] {
		line := i + 2 // 1-based, first data row follows the header
		record, rowErr := cleanRow(row, cols, line)
		if rowErr != nil {
			result.Skipped = append(result.Skipped, *rowErr)
			continue
		}
		result.Imported = append(result.Imported, *record)
	}

	if len(result.Imported) == 0 {
		if len(result.Skipped) > 0 {
			return nil, fmt.Errorf("%w: no importable rows (%d rejected, first: %s)",
				apperrors.ErrInvalidParameter, len(result.Skipped), result.Skipped[0].Reason)
		}
		return result, nil
	}

	inserted, err := s.records.BulkCreate(ctx, result.Imported)
	if err != nil {
		return nil, fmt.Errorf("persist batch: %w", err)
	}
	_ = s.cache.Delete(ctx, dashboardCacheKey)
	result.Imported = inserted
	return result, nil
}

func parseCSV(content []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func parseXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

type columnIndex struct {
	date, fleet, amount int
}

// locateColumns resolves the required headers case-insensitively.
func locateColumns(header []string) (columnIndex, error) {
	idx := columnIndex{date: -1, fleet: -1, amount: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			idx.date = i
		case "fleet":
			idx.fleet = i
		case "amount":
			idx.amount = i
		}
	}
	switch {
	case idx.date < 0:
		return idx, &apperrors.MissingColumnError{Column: "Date"}
	case idx.fleet < 0:
		return idx, &apperrors.MissingColumnError{Column: "Fleet"}
	case idx.amount < 0:
		return idx, &apperrors.MissingColumnError{Column: "Amount"}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// cleanRow validates and normalizes one data row. Dates are parsed
// best-effort across common formats, fleet codes are trimmed, uppercased and
// de-aliased, and amounts must parse as numbers (negative and zero allowed).
func cleanRow(row []string, cols columnIndex, line int) (*model.FleetRecord, *apperrors.RowError) {
	rawDate := cell(row, cols.date)
	parsed, err := dateparse.ParseAny(rawDate)
	if rawDate == "" || err != nil {
		return nil, &apperrors.RowError{Line: line, Reason: fmt.Sprintf("unparseable date %q", rawDate)}
	}
	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)

	fleet := strings.ToUpper(cell(row, cols.fleet))
	if alias, ok := fleetAliases[fleet]; ok {
		fleet = alias
	}
	if fleet == "" {
		return nil, &apperrors.RowError{Line: line, Reason: "empty fleet"}
	}

	rawAmount := cell(row, cols.amount)
	amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", ""))
	if err != nil {
		return nil, &apperrors.RowError{Line: line, Reason: fmt.Sprintf("non-numeric amount %q", rawAmount)}
	}

	return &model.FleetRecord{
		Date:   date,
		Fleet:  fleet,
		Amount: amount,
	}, nil
}
