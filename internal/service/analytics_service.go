package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fleetreport/internal/cache"
	"fleetreport/internal/model"
	"fleetreport/internal/repository"
)

const (
	dashboardCacheKey = "dashboard_stats"
	dashboardCacheTTL = 5 * time.Minute
	topFleetsLimit    = 15
)

// ChartDataPoint is one label/value pair for chart rendering.
type ChartDataPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// ChartData holds pre-aggregated series for the analytics charts.
type ChartData struct {
	RevenueTrend   []ChartDataPoint `json:"revenue_trend"`
	RevenueByFleet []ChartDataPoint `json:"revenue_by_fleet"`
	TopFleets      []ChartDataPoint `json:"top_fleets"`
}

// FilterOptions lists the values available for narrowing analytics queries.
type FilterOptions struct {
	Fleets  []string `json:"fleets"`
	MinDate *string  `json:"min_date"`
	MaxDate *string  `json:"max_date"`
}

// AnalyticsSummary is the full reporting payload.
type AnalyticsSummary struct {
	Records        []model.FleetRecord `json:"records"`
	FleetSummaries []FleetSummary      `json:"fleet_summaries"`
	DailySubtotals []DailySubtotal     `json:"daily_subtotals"`
	DashboardStats DashboardStats      `json:"dashboard_stats"`
}

// AnalyticsService exposes read-only reporting over the record store.
type AnalyticsService interface {
	Summary(ctx context.Context, filter repository.RecordFilter) (*AnalyticsSummary, error)
	Dashboard(ctx context.Context, filter repository.RecordFilter) (*DashboardStats, error)
	Charts(ctx context.Context, filter repository.RecordFilter) (*ChartData, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
	ExcelReport(ctx context.Context, filter repository.RecordFilter) ([]byte, error)
}

type analyticsService struct {
	records repository.FleetRecordRepository
	reports *ReportBuilder
	cache   *cache.Client
}

// NewAnalyticsService builds the analytics layer.
func NewAnalyticsService(records repository.FleetRecordRepository, reports *ReportBuilder, cache *cache.Client) AnalyticsService {
	return &analyticsService{records: records, reports: reports, cache: cache}
}

func (s *analyticsService) Summary(ctx context.Context, filter repository.RecordFilter) (*AnalyticsSummary, error) {
	records, err := s.records.ListFiltered(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	summaries, subtotals, stats := Summarize(records)
	return &AnalyticsSummary{
		Records:        records,
		FleetSummaries: summaries,
		DailySubtotals: subtotals,
		DashboardStats: stats,
	}, nil
}

// Dashboard computes the KPI aggregates from grouped queries. The unfiltered
// result is cached briefly since the dashboard polls it.
func (s *analyticsService) Dashboard(ctx context.Context, filter repository.RecordFilter) (*DashboardStats, error) {
	unfiltered := filter.StartDate == nil && filter.EndDate == nil && len(filter.Fleets) == 0
	if unfiltered {
		if data, _ := s.cache.Get(ctx, dashboardCacheKey); data != nil {
			var cached DashboardStats
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	totals, err := s.records.TotalsByFleet(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fleet totals: %w", err)
	}

	stats := DashboardStats{TopPerformingFleet: "N/A", AverageTripRevenue: decimal.Zero, TotalRevenue: decimal.Zero}
	topTotal := decimal.Zero
	for _, t := range totals {
		stats.TotalRevenue = stats.TotalRevenue.Add(t.Total)
		stats.TotalRecords += t.Count
		if stats.TopPerformingFleet == "N/A" || t.Total.GreaterThan(topTotal) {
			stats.TopPerformingFleet, topTotal = t.Fleet, t.Total
		}
	}
	if stats.TotalRecords > 0 {
		stats.AverageTripRevenue = stats.TotalRevenue.Div(decimal.NewFromInt(stats.TotalRecords)).Round(2)
	}

	if unfiltered {
		if payload, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL)
		}
	}
	return &stats, nil
}

func (s *analyticsService) Charts(ctx context.Context, filter repository.RecordFilter) (*ChartData, error) {
	daily, err := s.records.TotalsByDay(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	fleets, err := s.records.TotalsByFleet(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fleet totals: %w", err)
	}

	charts := &ChartData{}

	// Collapse per-fleet daily rows into one point per date; rows arrive
	// ordered by date.
	for _, d := range daily {
		label := d.Date.Format(dateLayout)
		if n := len(charts.RevenueTrend); n > 0 && charts.RevenueTrend[n-1].Label == label {
			charts.RevenueTrend[n-1].Value = charts.RevenueTrend[n-1].Value.Add(d.Total)
			continue
		}
		charts.RevenueTrend = append(charts.RevenueTrend, ChartDataPoint{Label: label, Value: d.Total})
	}

	for _, t := range fleets {
		charts.RevenueByFleet = append(charts.RevenueByFleet, ChartDataPoint{Label: t.Fleet, Value: t.Total})
	}

	top := make([]ChartDataPoint, len(charts.RevenueByFleet))
	copy(top, charts.RevenueByFleet)
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			if top[j].Value.GreaterThan(top[i].Value) {
				top[i], top[j] = top[j], top[i]
			}
		}
	}
	if len(top) > topFleetsLimit {
		top = top[:topFleetsLimit]
	}
	charts.TopFleets = top

	return charts, nil
}

func (s *analyticsService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	fleets, err := s.records.DistinctFleets(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct fleets: %w", err)
	}
	min, max, err := s.records.DateRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("date range: %w", err)
	}

	opts := &FilterOptions{Fleets: fleets}
	if min != nil {
		v := min.Format(dateLayout)
		opts.MinDate = &v
	}
	if max != nil {
		v := max.Format(dateLayout)
		opts.MaxDate = &v
	}
	return opts, nil
}

func (s *analyticsService) ExcelReport(ctx context.Context, filter repository.RecordFilter) ([]byte, error) {
	records, err := s.records.ListFiltered(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return s.reports.BuildWorkbook(records, nil)
}
