package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fleetreport/internal/cache"
	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
	"fleetreport/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// FleetService exposes fleet record operations.
type FleetService interface {
	Create(ctx context.Context, record *model.FleetRecord) (*model.FleetRecord, error)
	List(ctx context.Context, offset, limit int) ([]model.FleetRecord, error)
	Delete(ctx context.Context, id uint) error
	DeleteBatch(ctx context.Context, filter repository.RecordFilter) (int64, error)
}

type fleetService struct {
	records repository.FleetRecordRepository
	cache   *cache.Client
}

// NewFleetService builds a FleetService over the record repository. Mutations
// drop the cached dashboard aggregates so readers never see stale KPIs.
func NewFleetService(records repository.FleetRecordRepository, cache *cache.Client) FleetService {
	return &fleetService{records: records, cache: cache}
}

func (s *fleetService) Create(ctx context.Context, record *model.FleetRecord) (*model.FleetRecord, error) {
	if record.Fleet == "" {
		return nil, fmt.Errorf("%w: fleet must not be empty", apperrors.ErrInvalidParameter)
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	_ = s.cache.Delete(ctx, dashboardCacheKey)
	return record, nil
}

// List returns a page of records in insertion order. Defaults apply when
// limit is zero; negative parameters are rejected.
func (s *fleetService) List(ctx context.Context, offset, limit int) ([]model.FleetRecord, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must be non-negative", apperrors.ErrInvalidParameter)
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	records, err := s.records.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Delete removes one record; deleting an absent identifier fails with
// NotFound every time it is attempted.
func (s *fleetService) Delete(ctx context.Context, id uint) error {
	if err := s.records.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("delete record: %w", err)
	}
	_ = s.cache.Delete(ctx, dashboardCacheKey)
	return nil
}

func (s *fleetService) DeleteBatch(ctx context.Context, filter repository.RecordFilter) (int64, error) {
	count, err := s.records.DeleteBatch(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete batch: %w", err)
	}
	_ = s.cache.Delete(ctx, dashboardCacheKey)
	return count, nil
}
