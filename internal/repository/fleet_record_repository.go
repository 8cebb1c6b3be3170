package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fleetreport/internal/model"
)

// RecordFilter narrows record queries to a date range and/or set of fleets.
// Nil fields mean unconstrained.
type RecordFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Fleets    []string
}

// FleetTotal is one per-fleet aggregate row.
type FleetTotal struct {
	Fleet string
	Total decimal.Decimal
	Count int64
}

// DailyTotal is one per-date per-fleet aggregate row.
type DailyTotal struct {
	Date  time.Time
	Fleet string
	Total decimal.Decimal
	Count int64
}

// FleetRecordRepository defines fleet record persistence operations.
type FleetRecordRepository interface {
	Create(ctx context.Context, record *model.FleetRecord) error
	List(ctx context.Context, offset, limit int) ([]model.FleetRecord, error)
	ListFiltered(ctx context.Context, filter RecordFilter) ([]model.FleetRecord, error)
	Delete(ctx context.Context, id uint) error
	DeleteBatch(ctx context.Context, filter RecordFilter) (int64, error)
	// BulkCreate inserts all records in a single transaction; either every
	// row commits or none do.
	BulkCreate(ctx context.Context, records []model.FleetRecord) ([]model.FleetRecord, error)
	TotalsByFleet(ctx context.Context, filter RecordFilter) ([]FleetTotal, error)
	TotalsByDay(ctx context.Context, filter RecordFilter) ([]DailyTotal, error)
	DistinctFleets(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (min, max *time.Time, err error)
}

type fleetRecordRepository struct {
	db *gorm.DB
}

// NewFleetRecordRepository builds a GORM-backed repository.
func NewFleetRecordRepository(db *gorm.DB) FleetRecordRepository {
	return &fleetRecordRepository{db: db}
}

func (r *fleetRecordRepository) filtered(ctx context.Context, filter RecordFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.FleetRecord{})
	if filter.StartDate != nil {
		q = q.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("date <= ?", *filter.EndDate)
	}
	if len(filter.Fleets) > 0 {
		q = q.Where("fleet IN ?", filter.Fleets)
	}
	return q
}

func (r *fleetRecordRepository) Create(ctx context.Context, record *model.FleetRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// List returns records in stable identifier order.
func (r *fleetRecordRepository) List(ctx context.Context, offset, limit int) ([]model.FleetRecord, error) {
	var records []model.FleetRecord
	if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *fleetRecordRepository) ListFiltered(ctx context.Context, filter RecordFilter) ([]model.FleetRecord, error) {
	var records []model.FleetRecord
	if err := r.filtered(ctx, filter).Order("date, fleet, id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *fleetRecordRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.FleetRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fleetRecordRepository) DeleteBatch(ctx context.Context, filter RecordFilter) (int64, error) {
	res := r.filtered(ctx, filter).Delete(&model.FleetRecord{})
	return res.RowsAffected, res.Error
}

func (r *fleetRecordRepository) BulkCreate(ctx context.Context, records []model.FleetRecord) ([]model.FleetRecord, error) {
	if len(records) == 0 {
		return records, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *fleetRecordRepository) TotalsByFleet(ctx context.Context, filter RecordFilter) ([]FleetTotal, error) {
	var rows []FleetTotal
	err := r.filtered(ctx, filter).
		Select("fleet, SUM(amount) AS total, COUNT(*) AS count").
		Group("fleet").
		Order("fleet").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *fleetRecordRepository) TotalsByDay(ctx context.Context, filter RecordFilter) ([]DailyTotal, error) {
	var rows []DailyTotal
	err := r.filtered(ctx, filter).
		Select("date, fleet, SUM(amount) AS total, COUNT(*) AS count").
		Group("date").Group("fleet").
		Order("date, fleet").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *fleetRecordRepository) DistinctFleets(ctx context.Context) ([]string, error) {
	var fleets []string
	err := r.db.WithContext(ctx).Model(&model.FleetRecord{}).
		Distinct("fleet").
		Order("fleet").
		Pluck("fleet", &fleets).Error
	if err != nil {
		return nil, err
	}
	return fleets, nil
}

func (r *fleetRecordRepository) DateRange(ctx context.Context) (*time.Time, *time.Time, error) {
	var bounds struct {
		Min *time.Time
		Max *time.Time
	}
	err := r.db.WithContext(ctx).Model(&model.FleetRecord{}).
		Select("MIN(date) AS min, MAX(date) AS max").
		Scan(&bounds).Error
	if err != nil {
		return nil, nil, err
	}
	return bounds.Min, bounds.Max, nil
}
