package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fleetreport/internal/model"
	"fleetreport/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockFleetRecordRepository is a mock implementation of FleetRecordRepository.
type MockFleetRecordRepository struct {
	mock.Mock
}

func (m *MockFleetRecordRepository) Create(ctx context.Context, record *model.FleetRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockFleetRecordRepository) List(ctx context.Context, offset, limit int) ([]model.FleetRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FleetRecord), args.Error(1)
}

func (m *MockFleetRecordRepository) ListFiltered(ctx context.Context, filter repository.RecordFilter) ([]model.FleetRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FleetRecord), args.Error(1)
}

func (m *MockFleetRecordRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFleetRecordRepository) DeleteBatch(ctx context.Context, filter repository.RecordFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFleetRecordRepository) BulkCreate(ctx context.Context, records []model.FleetRecord) ([]model.FleetRecord, error) {
	args := m.Called(ctx, records)
	if fn, ok := args.Get(0).(func([]model.FleetRecord) []model.FleetRecord); ok {
		return fn(records), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FleetRecord), args.Error(1)
}

func (m *MockFleetRecordRepository) TotalsByFleet(ctx context.Context, filter repository.RecordFilter) ([]repository.FleetTotal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.FleetTotal), args.Error(1)
}

func (m *MockFleetRecordRepository) TotalsByDay(ctx context.Context, filter repository.RecordFilter) ([]repository.DailyTotal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyTotal), args.Error(1)
}

func (m *MockFleetRecordRepository) DistinctFleets(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFleetRecordRepository) DateRange(ctx context.Context) (*time.Time, *time.Time, error) {
	args := m.Called(ctx)
	var min, max *time.Time
	if args.Get(0) != nil {
		min = args.Get(0).(*time.Time)
	}
	if args.Get(1) != nil {
		max = args.Get(1).(*time.Time)
	}
	return min, max, args.Error(2)
}
