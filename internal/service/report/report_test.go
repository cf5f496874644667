package report

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pluckandpay/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetAllPluckers(ctx context.Context) ([]storage.Plucker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Plucker), args.Error(1)
}

func (m *MockStorage) GetRecordsByDateRange(ctx context.Context, start, end time.Time) ([]storage.CollectionRecord, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.CollectionRecord), args.Error(1)
}

func (m *MockStorage) ListPayments(ctx context.Context, filter storage.PaymentFilter) ([]storage.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Payment), args.Error(1)
}

func (m *MockStorage) CountActivePluckers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) CountActivePluckersJoinedBefore(ctx context.Context, t time.Time) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildPluckerRows_IncludesInactivePluckers(t *testing.T) {
	pluckers := []storage.Plucker{
		{ID: 1, Name: "Amara", Status: storage.StatusActive},
		{ID: 2, Name: "Bimal", Status: storage.StatusActive},
		{ID: 3, Name: "Chathu", Status: storage.StatusInactive},
	}
	records := []storage.CollectionRecord{
		{
			ID: 100,
			Details: []storage.RecordDetail{
				{PluckerID: 1, Weight: 12.5},
				{PluckerID: 2, Weight: 7.5},
			},
		},
		{
			ID: 101,
			Details: []storage.RecordDetail{
				{PluckerID: 1, Weight: 2.5},
			},
		},
	}
	payments := []storage.Payment{
		{
			ID: 200,
			Details: []storage.PaymentDetail{
				{PluckerID: 1, Amount: decimal.RequireFromString("37.50")},
			},
		},
	}

	rows := buildPluckerRows(pluckers, records, payments)

	// One row per plucker, activity or not.
	require.Len(t, rows, 3)

	assert.Equal(t, "Amara", rows[0].Name)
	assert.Equal(t, 15.0, rows[0].TotalCollection)
	assert.True(t, rows[0].TotalEarnings.Equal(decimal.RequireFromString("37.50")))

	assert.Equal(t, "Bimal", rows[1].Name)
	assert.Equal(t, 7.5, rows[1].TotalCollection)
	assert.True(t, rows[1].TotalEarnings.IsZero())

	// Zero-activity plucker keeps zeroed totals.
	assert.Equal(t, "Chathu", rows[2].Name)
	assert.Equal(t, 0.0, rows[2].TotalCollection)
	assert.True(t, rows[2].TotalEarnings.IsZero())
	assert.Equal(t, storage.StatusInactive, rows[2].Status)
}

func TestPluckerReport_WritesFile(t *testing.T) {
	mockStorage := new(MockStorage)
	start := date("2023-05-01")
	end := date("2023-05-31")

	mockStorage.On("GetAllPluckers", mock.Anything).
		Return([]storage.Plucker{{ID: 1, Name: "Amara", Status: storage.StatusActive}}, nil)
	mockStorage.On("GetRecordsByDateRange", mock.Anything, start, end).
		Return([]storage.CollectionRecord{}, nil)
	mockStorage.On("ListPayments", mock.Anything, storage.PaymentFilter{StartDate: start, EndDate: end}).
		Return([]storage.Payment{}, nil)

	dir := t.TempDir()
	svc := NewService(mockStorage, dir)

	file, err := svc.PluckerReport(context.Background(), start, end)
	require.NoError(t, err)

	assert.Contains(t, file.FileName, "plucker-report-")
	assert.Equal(t, "/uploads/"+file.FileName, file.URL)

	data, err := os.ReadFile(file.FilePath)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))

	mockStorage.AssertExpectations(t)
}

func TestPluckerReport_ReadFailureAborts(t *testing.T) {
	mockStorage := new(MockStorage)
	start := date("2023-05-01")
	end := date("2023-05-31")

	mockStorage.On("GetAllPluckers", mock.Anything).
		Return([]storage.Plucker{}, nil).Maybe()
	mockStorage.On("GetRecordsByDateRange", mock.Anything, start, end).
		Return(nil, errors.New("db down"))
	mockStorage.On("ListPayments", mock.Anything, mock.Anything).
		Return([]storage.Payment{}, nil).Maybe()

	dir := t.TempDir()
	svc := NewService(mockStorage, dir)

	_, err := svc.PluckerReport(context.Background(), start, end)
	require.Error(t, err)

	// No partial report on disk.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDashboard_TrendsZeroWhenNoPreviousMonth(t *testing.T) {
	mockStorage := new(MockStorage)
	now := date("2024-06-15")

	startOfMonth := time.Date(2024, 6, 1, 0, 0, 0, 0, now.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Second)
	startOfPrev := startOfMonth.AddDate(0, -1, 0)
	endOfPrev := startOfMonth.Add(-time.Second)

	mockStorage.On("GetRecordsByDateRange", mock.Anything, startOfMonth, endOfMonth).
		Return([]storage.CollectionRecord{
			{TotalWeight: 120},
			{TotalWeight: 80},
		}, nil)
	mockStorage.On("GetRecordsByDateRange", mock.Anything, startOfPrev, endOfPrev).
		Return([]storage.CollectionRecord{}, nil)
	mockStorage.On("CountActivePluckers", mock.Anything).Return(4, nil)
	mockStorage.On("CountActivePluckersJoinedBefore", mock.Anything, startOfMonth).Return(0, nil)
	mockStorage.On("ListPayments", mock.Anything, storage.PaymentFilter{StartDate: startOfMonth, EndDate: endOfMonth}).
		Return([]storage.Payment{{TotalAmount: decimal.RequireFromString("500")}}, nil)
	mockStorage.On("ListPayments", mock.Anything, storage.PaymentFilter{StartDate: startOfPrev, EndDate: endOfPrev}).
		Return([]storage.Payment{}, nil)

	svc := NewService(mockStorage, t.TempDir())

	dashboardStats, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(200), dashboardStats.TotalCollection)
	assert.Equal(t, 4, dashboardStats.ActivePluckers)
	assert.Equal(t, 2, dashboardStats.CollectionDays)
	assert.Equal(t, int64(500), dashboardStats.TotalPayments)
	assert.Equal(t, 0, dashboardStats.CollectionTrend)
	assert.Equal(t, 0, dashboardStats.PluckersTrend)
	assert.Equal(t, 0, dashboardStats.PaymentsTrend)
}

func TestDashboard_Trends(t *testing.T) {
	mockStorage := new(MockStorage)
	now := date("2024-06-15")

	startOfMonth := time.Date(2024, 6, 1, 0, 0, 0, 0, now.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Second)
	startOfPrev := startOfMonth.AddDate(0, -1, 0)
	endOfPrev := startOfMonth.Add(-time.Second)

	mockStorage.On("GetRecordsByDateRange", mock.Anything, startOfMonth, endOfMonth).
		Return([]storage.CollectionRecord{{TotalWeight: 150}}, nil)
	mockStorage.On("GetRecordsByDateRange", mock.Anything, startOfPrev, endOfPrev).
		Return([]storage.CollectionRecord{{TotalWeight: 100}}, nil)
	mockStorage.On("CountActivePluckers", mock.Anything).Return(6, nil)
	mockStorage.On("CountActivePluckersJoinedBefore", mock.Anything, startOfMonth).Return(4, nil)
	mockStorage.On("ListPayments", mock.Anything, storage.PaymentFilter{StartDate: startOfMonth, EndDate: endOfMonth}).
		Return([]storage.Payment{{TotalAmount: decimal.RequireFromString("300")}}, nil)
	mockStorage.On("ListPayments", mock.Anything, storage.PaymentFilter{StartDate: startOfPrev, EndDate: endOfPrev}).
		Return([]storage.Payment{{TotalAmount: decimal.RequireFromString("200")}}, nil)

	svc := NewService(mockStorage, t.TempDir())

	dashboardStats, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 50, dashboardStats.CollectionTrend)
	assert.Equal(t, 50, dashboardStats.PluckersTrend)
	assert.Equal(t, 50, dashboardStats.PaymentsTrend)
}
