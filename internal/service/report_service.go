package service

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fleetreport/internal/model"
)

const dateLayout = "2006-01-02"

// FleetSummary aggregates one fleet's revenue.
type FleetSummary struct {
	Fleet       string          `json:"fleet"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	RecordCount int64           `json:"record_count"`
	Remittance  decimal.Decimal `json:"remittance"`
}

// DailySubtotal aggregates one fleet's revenue on one date.
type DailySubtotal struct {
	Date       string          `json:"date"`
	Fleet      string          `json:"fleet"`
	DailyTotal decimal.Decimal `json:"daily_total"`
	Pax        int64           `json:"pax"`
}

// DashboardStats holds the KPI aggregates.
type DashboardStats struct {
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalRecords       int64           `json:"total_records"`
	TopPerformingFleet string          `json:"top_performing_fleet"`
	AverageTripRevenue decimal.Decimal `json:"average_trip_revenue"`
}

// remittanceRate returns the fraction of revenue remitted for a fleet code.
// 1xxx-series fleets remit 84%, 2xxx-series 87.5%, everything else in full.
func remittanceRate(fleet string) decimal.Decimal {
	switch {
	case strings.HasPrefix(fleet, "1"):
		return decimal.NewFromFloat(0.84)
	case strings.HasPrefix(fleet, "2"):
		return decimal.NewFromFloat(0.875)
	default:
		return decimal.NewFromInt(1)
	}
}

// Summarize computes per-fleet summaries, per-day subtotals, and dashboard
// stats from a record set.
func Summarize(records []model.FleetRecord) ([]FleetSummary, []DailySubtotal, DashboardStats) {
	type agg struct {
		total decimal.Decimal
		count int64
	}

	byFleet := map[string]*agg{}
	byDay := map[string]*agg{} // key: date|fleet
	total := decimal.Zero

	for _, r := range records {
		total = total.Add(r.Amount)

		fa := byFleet[r.Fleet]
		if fa == nil {
			fa = &agg{}
			byFleet[r.Fleet] = fa
		}
		fa.total = fa.total.Add(r.Amount)
		fa.count++

		key := r.Date.Format(dateLayout) + "|" + r.Fleet
		da := byDay[key]
		if da == nil {
			da = &agg{}
			byDay[key] = da
		}
		da.total = da.total.Add(r.Amount)
		da.count++
	}

	fleets := make([]string, 0, len(byFleet))
	for fleet := range byFleet {
		fleets = append(fleets, fleet)
	}
	sort.Strings(fleets)

	summaries := make([]FleetSummary, 0, len(fleets))
	topFleet := "N/A"
	topTotal := decimal.Zero
	for _, fleet := range fleets {
		a := byFleet[fleet]
		summaries = append(summaries, FleetSummary{
			Fleet:       fleet,
			TotalAmount: a.total,
			RecordCount: a.count,
			Remittance:  a.total.Mul(remittanceRate(fleet)).Round(2),
		})
		if topFleet == "N/A" || a.total.GreaterThan(topTotal) {
			topFleet, topTotal = fleet, a.total
		}
	}

	dayKeys := make([]string, 0, len(byDay))
	for key := range byDay {
		dayKeys = append(dayKeys, key)
	}
	sort.Strings(dayKeys)

	subtotals := make([]DailySubtotal, 0, len(dayKeys))
	for _, key := range dayKeys {
		a := byDay[key]
		parts := strings.SplitN(key, "|", 2)
		subtotals = append(subtotals, DailySubtotal{
			Date:       parts[0],
			Fleet:      parts[1],
			DailyTotal: a.total,
			Pax:        a.count,
		})
	}

	stats := DashboardStats{
		TotalRevenue:       total,
		TotalRecords:       int64(len(records)),
		TopPerformingFleet: topFleet,
	}
	if len(records) > 0 {
		stats.AverageTripRevenue = total.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	} else {
		stats.AverageTripRevenue = decimal.Zero
	}
	return summaries, subtotals, stats
}

// ReportBuilder renders styled summary workbooks.
type ReportBuilder struct{}

// NewReportBuilder creates a workbook renderer.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{}
}

type reportStyles struct {
	header  int
	totals  int
	series1 int
	series2 int
	money   int
	count   int
}

func makeStyles(f *excelize.File) (reportStyles, error) {
	var s reportStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return s, err
	}
	if s.totals, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"A6A6A6"}, Pattern: 1},
		Font:   &excelize.Font{Bold: true},
		Border: border,
	}); err != nil {
		return s, err
	}
	if s.series1, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Border: border,
	}); err != nil {
		return s, err
	}
	if s.series2, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Border: border,
	}); err != nil {
		return s, err
	}
	moneyFmt := "#,##0.00"
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt, Border: border}); err != nil {
		return s, err
	}
	countFmt := "#,##0"
	if s.count, err = f.NewStyle(&excelize.Style{CustomNumFmt: &countFmt, Border: border}); err != nil {
		return s, err
	}
	return s, nil
}

// BuildWorkbook renders the multi-sheet summary report for a record set.
// When result is non-nil an Import Report sheet is appended describing the
// upload that produced the records.
func (b *ReportBuilder) BuildWorkbook(records []model.FleetRecord, result *ImportResult) ([]byte, error) {
	summaries, subtotals, stats := Summarize(records)

	f := excelize.NewFile()
	defer f.Close()

	styles, err := makeStyles(f)
	if err != nil {
		return nil, fmt.Errorf("report styles: %w", err)
	}

	if err := writeFleetPerformance(f, styles, summaries); err != nil {
		return nil, err
	}
	if err := writeDashboard(f, styles, stats); err != nil {
		return nil, err
	}
	if err := writeDailySubtotals(f, styles, subtotals); err != nil {
		return nil, err
	}
	if err := writeRawData(f, styles, records); err != nil {
		return nil, err
	}
	if result != nil {
		if err := writeImportReport(f, styles, result); err != nil {
			return nil, err
		}
	}

	// The default sheet excelize creates is replaced by the first report sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, styles reportStyles, titles []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	for i, title := range titles {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(titles), 1)
	return f.SetCellStyle(sheet, "A1", last, styles.header)
}

func writeFleetPerformance(f *excelize.File, styles reportStyles, summaries []FleetSummary) error {
	const sheet = "Fleet Performance"
	if err := writeHeader(f, sheet, styles, []string{"BUS CODE", "PAX", "REVENUE", "REMITTANCE"}); err != nil {
		return err
	}

	row := 2
	grandPax := int64(0)
	grandRevenue := decimal.Zero
	grandRemit := decimal.Zero
	for _, s := range summaries {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			s.Fleet, s.RecordCount, s.TotalAmount.InexactFloat64(), s.Remittance.InexactFloat64(),
		}); err != nil {
			return err
		}
		switch {
		case strings.HasPrefix(s.Fleet, "1"):
			_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.series1)
		case strings.HasPrefix(s.Fleet, "2"):
			_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.series2)
		}
		_ = f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.count)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), styles.money)
		grandPax += s.RecordCount
		grandRevenue = grandRevenue.Add(s.TotalAmount)
		grandRemit = grandRemit.Add(s.Remittance)
		row++
	}

	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
		"Grand Total", grandPax, grandRevenue.InexactFloat64(), grandRemit.InexactFloat64(),
	}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), styles.totals); err != nil {
		return err
	}
	return sizeColumns(f, sheet, []float64{14, 10, 14, 14})
}

func writeDashboard(f *excelize.File, styles reportStyles, stats DashboardStats) error {
	const sheet = "Dashboard"
	if err := writeHeader(f, sheet, styles, []string{"Metric", "Value"}); err != nil {
		return err
	}
	rows := []struct {
		metric string
		value  interface{}
	}{
		{"Total Revenue", stats.TotalRevenue.InexactFloat64()},
		{"Total Records", stats.TotalRecords},
		{"Top Fleet", stats.TopPerformingFleet},
		{"Avg Revenue", stats.AverageTripRevenue.InexactFloat64()},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &[]interface{}{r.metric, r.value}); err != nil {
			return err
		}
	}
	return sizeColumns(f, sheet, []float64{18, 18})
}

func writeDailySubtotals(f *excelize.File, styles reportStyles, subtotals []DailySubtotal) error {
	const sheet = "Daily Subtotals"
	if err := writeHeader(f, sheet, styles, []string{"Date", "BUS CODE", "PAX", "REVENUE"}); err != nil {
		return err
	}

	row := 2
	i := 0
	for i < len(subtotals) {
		date := subtotals[i].Date
		dayPax := int64(0)
		dayTotal := decimal.Zero
		for i < len(subtotals) && subtotals[i].Date == date {
			s := subtotals[i]
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
				s.Date, s.Fleet, s.Pax, s.DailyTotal.InexactFloat64(),
			}); err != nil {
				return err
			}
			_ = f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), styles.count)
			_ = f.SetCellStyle(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), styles.money)
			dayPax += s.Pax
			dayTotal = dayTotal.Add(s.DailyTotal)
			row++
			i++
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			date, "Subtotal", dayPax, dayTotal.InexactFloat64(),
		}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), styles.totals); err != nil {
			return err
		}
		row++
	}
	return sizeColumns(f, sheet, []float64{12, 14, 10, 14})
}

func writeRawData(f *excelize.File, styles reportStyles, records []model.FleetRecord) error {
	const sheet = "Raw Data"
	if err := writeHeader(f, sheet, styles, []string{"ID", "Date", "Fleet", "Amount"}); err != nil {
		return err
	}
	for i, r := range records {
		row := i + 2
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			r.ID, r.Date.Format(dateLayout), r.Fleet, r.Amount.InexactFloat64(),
		}); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), styles.money)
	}
	return sizeColumns(f, sheet, []float64{8, 12, 14, 14})
}

func writeImportReport(f *excelize.File, styles reportStyles, result *ImportResult) error {
	const sheet = "Import Report"
	if err := writeHeader(f, sheet, styles, []string{"File", "Imported", "Skipped"}); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{
		result.Filename, len(result.Imported), len(result.Skipped),
	}); err != nil {
		return err
	}
	if len(result.Skipped) > 0 {
		if err := f.SetSheetRow(sheet, "A4", &[]interface{}{"Line", "Reason"}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A4", "B4", styles.header); err != nil {
			return err
		}
		for i, rowErr := range result.Skipped {
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+5), &[]interface{}{
				rowErr.Line, rowErr.Reason,
			}); err != nil {
				return err
			}
		}
	}
	return sizeColumns(f, sheet, []float64{24, 12, 40})
}

func sizeColumns(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
