package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pluckandpay/internal/storage"
)

func TestRecordsExcel_DayTotalUsesRecordWeight(t *testing.T) {
	mockStorage := new(MockStorage)
	start := date("2023-05-01")
	end := date("2023-05-31")

	// Detail lines sum to 20 while the record claims 30; the displayed
	// Total Weight column and the Day Total must share one basis.
	mockStorage.On("GetRecordsByDateRange", mock.Anything, start, end).
		Return([]storage.CollectionRecord{
			{
				ID:           1,
				Date:         date("2023-05-10"),
				TotalWeight:  30,
				PluckerCount: 2,
				AveragePrice: decimal.RequireFromString("2.5"),
				Details: []storage.RecordDetail{
					{PluckerID: 1, Weight: 12},
					{PluckerID: 2, Weight: 8},
				},
			},
		}, nil)

	svc := NewService(mockStorage, t.TempDir())

	out, err := svc.RecordsExcel(context.Background(), start, end)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	weight, err := f.GetCellValue("Collection Records", "B2")
	require.NoError(t, err)
	total, err := f.GetCellValue("Collection Records", "E2")
	require.NoError(t, err)

	assert.Equal(t, "30", weight)
	assert.Equal(t, "75", total)

	mockStorage.AssertExpectations(t)
}

func TestRecordsExcel_EmptyRange(t *testing.T) {
	mockStorage := new(MockStorage)
	start := date("2023-06-01")
	end := date("2023-06-30")

	mockStorage.On("GetRecordsByDateRange", mock.Anything, start, end).
		Return([]storage.CollectionRecord{}, nil)

	svc := NewService(mockStorage, t.TempDir())

	out, err := svc.RecordsExcel(context.Background(), start, end)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	// Header row only.
	header, err := f.GetCellValue("Collection Records", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	rows, err := f.GetRows("Collection Records")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
