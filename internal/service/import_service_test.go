package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xuri/excelize/v2"

	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
)

func passthroughBulkCreate(m *MockFleetRecordRepository) {
	m.On("BulkCreate", mock.Anything, mock.AnythingOfType("[]model.FleetRecord")).
		Return(func(records []model.FleetRecord) []model.FleetRecord { return records }, nil)
}

func TestImportService_ImportCSV(t *testing.T) {
	csv := "Date,Fleet,Amount\n2024-01-15,1001,15000\n2024-01-16,2205,22000.50\n"

	mockRepo := new(MockFleetRecordRepository)
	passthroughBulkCreate(mockRepo)

	svc := NewImportService(mockRepo, nil)
	result, err := svc.Import(context.Background(), "upload.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assert.Len(t, result.Imported, 2)

	first := result.Imported[0]
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "1001", first.Fleet)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(15000)))

	second := result.Imported[1]
	assert.Equal(t, "2205", second.Fleet)
	assert.True(t, second.Amount.Equal(decimal.NewFromFloat(22000.50)))

	mockRepo.AssertExpectations(t)
}

func TestImportService_RowCleaning(t *testing.T) {
	csv := "Date,Fleet,Amount\n" +
		"01/15/2024,  1001 ,\"1,500.25\"\n" + // date format and thousands separator normalized
		"2024-01-16,2010m,200\n" + // legacy alias folds into canonical code
		"2024-01-17,3001,-50\n" // refunds stay negative

	mockRepo := new(MockFleetRecordRepository)
	passthroughBulkCreate(mockRepo)

	svc := NewImportService(mockRepo, nil)
	result, err := svc.Import(context.Background(), "upload.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assert.Len(t, result.Imported, 3)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), result.Imported[0].Date)
	assert.True(t, result.Imported[0].Amount.Equal(decimal.NewFromFloat(1500.25)))
	assert.Equal(t, "2010", result.Imported[1].Fleet)
	assert.True(t, result.Imported[2].Amount.Equal(decimal.NewFromInt(-50)))
}

func TestImportService_SkipsBadRows(t *testing.T) {
	csv := "Date,Fleet,Amount\n" +
		"2024-01-15,1001,15000\n" +
		"not-a-date,1001,100\n" +
		"2024-01-16,,100\n" +
		"2024-01-17,1001,abc\n"

	mockRepo := new(MockFleetRecordRepository)
	passthroughBulkCreate(mockRepo)

	svc := NewImportService(mockRepo, nil)
	result, err := svc.Import(context.Background(), "upload.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Len(t, result.Skipped, 3)
	assert.Equal(t, 3, result.Skipped[0].Line)
	assert.Contains(t, result.Skipped[0].Reason, "date")
	assert.Equal(t, 4, result.Skipped[1].Line)
	assert.Contains(t, result.Skipped[1].Reason, "fleet")
	assert.Equal(t, 5, result.Skipped[2].Line)
	assert.Contains(t, result.Skipped[2].Reason, "amount")
}

func TestImportService_AllRowsRejected(t *testing.T) {
	csv := "Date,Fleet,Amount\nnope,1001,abc\n"

	mockRepo := new(MockFleetRecordRepository)

	svc := NewImportService(mockRepo, nil)
	_, err := svc.Import(context.Background(), "upload.csv", []byte(csv))

	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
	mockRepo.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
}

func TestImportService_MissingColumn(t *testing.T) {
	csv := "Date,Fleet\n2024-01-15,1001\n"

	mockRepo := new(MockFleetRecordRepository)

	svc := NewImportService(mockRepo, nil)
	_, err := svc.Import(context.Background(), "upload.csv", []byte(csv))

	var missing *apperrors.MissingColumnError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "Amount", missing.Column)
	mockRepo.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
}

func TestImportService_XLSX(t *testing.T) {
	f := excelize.NewFile()
	assert.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Fleet", "Amount"}))
	assert.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2024-01-15", "1001", 15000}))
	var buf bytes.Buffer
	assert.NoError(t, f.Write(&buf))
	assert.NoError(t, f.Close())

	mockRepo := new(MockFleetRecordRepository)
	passthroughBulkCreate(mockRepo)

	svc := NewImportService(mockRepo, nil)
	result, err := svc.Import(context.Background(), "upload.xlsx", buf.Bytes())

	assert.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Equal(t, "1001", result.Imported[0].Fleet)
}

func TestImportService_FileLevelRejections(t *testing.T) {
	mockRepo := new(MockFleetRecordRepository)
	svc := NewImportService(mockRepo, nil)

	_, err := svc.Import(context.Background(), "upload.pdf", []byte("whatever"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFile)

	_, err = svc.Import(context.Background(), "upload.csv", make([]byte, MaxUploadSize+1))
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	_, err = svc.Import(context.Background(), "upload.csv", nil)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFile)

	mockRepo.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
}
