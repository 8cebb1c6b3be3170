package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []model.FleetRecord {
	return []model.FleetRecord{
		{ID: 1, Date: day(15), Fleet: "1001", Amount: decimal.NewFromInt(10000)},
		{ID: 2, Date: day(15), Fleet: "1001", Amount: decimal.NewFromInt(5000)},
		{ID: 3, Date: day(15), Fleet: "2205", Amount: decimal.NewFromInt(8000)},
		{ID: 4, Date: day(16), Fleet: "3001", Amount: decimal.NewFromInt(2000)},
	}
}

func TestSummarize(t *testing.T) {
	summaries, subtotals, stats := Summarize(sampleRecords())

	assert.Len(t, summaries, 3)
	assert.Equal(t, "1001", summaries[0].Fleet)
	assert.True(t, summaries[0].TotalAmount.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, int64(2), summaries[0].RecordCount)
	// 1xxx fleets remit 84%.
	assert.True(t, summaries[0].Remittance.Equal(decimal.NewFromInt(12600)))
	// 2xxx fleets remit 87.5%.
	assert.True(t, summaries[1].Remittance.Equal(decimal.NewFromInt(7000)))
	// Everything else remits in full.
	assert.True(t, summaries[2].Remittance.Equal(decimal.NewFromInt(2000)))

	assert.Len(t, subtotals, 3)
	assert.Equal(t, "2024-01-15", subtotals[0].Date)
	assert.Equal(t, "1001", subtotals[0].Fleet)
	assert.True(t, subtotals[0].DailyTotal.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, int64(2), subtotals[0].Pax)

	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, int64(4), stats.TotalRecords)
	assert.Equal(t, "1001", stats.TopPerformingFleet)
	assert.True(t, stats.AverageTripRevenue.Equal(decimal.NewFromInt(6250)))
}

func TestSummarize_Empty(t *testing.T) {
	summaries, subtotals, stats := Summarize(nil)

	assert.Empty(t, summaries)
	assert.Empty(t, subtotals)
	assert.Equal(t, "N/A", stats.TopPerformingFleet)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.True(t, stats.AverageTripRevenue.IsZero())
}

func TestReportBuilder_BuildWorkbook(t *testing.T) {
	builder := NewReportBuilder()
	workbook, err := builder.BuildWorkbook(sampleRecords(), nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, workbook)

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	assert.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Fleet Performance", "Dashboard", "Daily Subtotals", "Raw Data"}, f.GetSheetList())

	header, err := f.GetCellValue("Fleet Performance", "A1")
	assert.NoError(t, err)
	assert.Equal(t, "BUS CODE", header)

	fleet, _ := f.GetCellValue("Fleet Performance", "A2")
	assert.Equal(t, "1001", fleet)
	revenue, _ := f.GetCellValue("Fleet Performance", "C2", excelize.Options{RawCellValue: true})
	assert.Equal(t, "15000", revenue)

	// Grand Total row follows the three fleet rows.
	label, _ := f.GetCellValue("Fleet Performance", "A5")
	assert.Equal(t, "Grand Total", label)
	total, _ := f.GetCellValue("Fleet Performance", "C5", excelize.Options{RawCellValue: true})
	assert.Equal(t, "25000", total)

	topFleet, _ := f.GetCellValue("Dashboard", "B4")
	assert.Equal(t, "1001", topFleet)

	// Jan 15 has two fleet rows then the subtotal.
	subtotalLabel, _ := f.GetCellValue("Daily Subtotals", "B4")
	assert.Equal(t, "Subtotal", subtotalLabel)
	subtotal, _ := f.GetCellValue("Daily Subtotals", "D4", excelize.Options{RawCellValue: true})
	assert.Equal(t, "23000", subtotal)
}

func TestReportBuilder_ImportReportSheet(t *testing.T) {
	result := &ImportResult{
		Filename: "upload.csv",
		Imported: sampleRecords(),
		Skipped: []apperrors.RowError{
			{Line: 3, Reason: `unparseable date "nope"`},
		},
	}

	builder := NewReportBuilder()
	workbook, err := builder.BuildWorkbook(result.Imported, result)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	assert.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Import Report")

	filename, _ := f.GetCellValue("Import Report", "A2")
	assert.Equal(t, "upload.csv", filename)
	imported, _ := f.GetCellValue("Import Report", "B2", excelize.Options{RawCellValue: true})
	assert.Equal(t, "4", imported)
	line, _ := f.GetCellValue("Import Report", "A5", excelize.Options{RawCellValue: true})
	assert.Equal(t, "3", line)
}
