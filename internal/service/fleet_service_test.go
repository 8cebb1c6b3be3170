package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
	"fleetreport/internal/repository"
)

func TestFleetService_Create(t *testing.T) {
	mockRepo := new(MockFleetRecordRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.FleetRecord")).Return(nil)

	svc := NewFleetService(mockRepo, nil)

	record := &model.FleetRecord{
		Date:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Fleet:  "1001",
		Amount: decimal.NewFromInt(15000),
	}
	created, err := svc.Create(context.Background(), record)
	assert.NoError(t, err)
	assert.Equal(t, "1001", created.Fleet)

	_, err = svc.Create(context.Background(), &model.FleetRecord{Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	mockRepo.AssertExpectations(t)
}

func TestFleetService_List(t *testing.T) {
	tests := []struct {
		name          string
		offset, limit int
		repoLimit     int
		expectedError error
	}{
		{name: "default limit applies", offset: 0, limit: 0, repoLimit: 50},
		{name: "limit capped", offset: 0, limit: 9999, repoLimit: 500},
		{name: "explicit page", offset: 20, limit: 10, repoLimit: 10},
		{name: "negative offset rejected", offset: -1, limit: 10, expectedError: apperrors.ErrInvalidParameter},
		{name: "negative limit rejected", offset: 0, limit: -5, expectedError: apperrors.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockFleetRecordRepository)
			if tt.expectedError == nil {
				mockRepo.On("List", mock.Anything, tt.offset, tt.repoLimit).Return([]model.FleetRecord{}, nil)
			}

			svc := NewFleetService(mockRepo, nil)
			_, err := svc.List(context.Background(), tt.offset, tt.limit)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestFleetService_Delete(t *testing.T) {
	mockRepo := new(MockFleetRecordRepository)
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil).Once()
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(gorm.ErrRecordNotFound)

	svc := NewFleetService(mockRepo, nil)

	assert.NoError(t, svc.Delete(context.Background(), 1))

	// Deleting again keeps failing with NotFound.
	assert.ErrorIs(t, svc.Delete(context.Background(), 1), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 1), apperrors.ErrNotFound)

	mockRepo.AssertExpectations(t)
}

func TestFleetService_DeleteBatch(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := repository.RecordFilter{StartDate: &start, Fleets: []string{"1001"}}

	mockRepo := new(MockFleetRecordRepository)
	mockRepo.On("DeleteBatch", mock.Anything, filter).Return(int64(7), nil)

	svc := NewFleetService(mockRepo, nil)
	deleted, err := svc.DeleteBatch(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	mockRepo.AssertExpectations(t)
}
