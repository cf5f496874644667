package save

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pluckandpay/internal/storage"
)

type MockRecordSaver struct {
	mock.Mock
}

func (m *MockRecordSaver) CreateRecord(ctx context.Context, rec storage.CollectionRecord) (storage.CollectionRecord, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(storage.CollectionRecord), args.Error(1)
}

func TestSaveRecord_Success(t *testing.T) {
	mockSaver := new(MockRecordSaver)
	mockSaver.On("CreateRecord", mock.Anything, mock.MatchedBy(func(rec storage.CollectionRecord) bool {
		return rec.TotalWeight == 25.0 &&
			rec.PluckerCount == 2 &&
			len(rec.Details) == 2 &&
			rec.Details[0].PluckerID == 1 &&
			rec.Details[1].Weight == 10.0
	})).Return(storage.CollectionRecord{ID: 42}, nil)

	handler := SaveRecord(slog.Default(), mockSaver)

	body := `{
		"date": "2023-05-10",
		"totalWeight": 25,
		"pluckerCount": 2,
		"averagePrice": 2.5,
		"pluckerDetails": [
			{"pluckerId": 1, "weight": 15},
			{"pluckerId": 2, "weight": 10}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp storage.CollectionRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)

	mockSaver.AssertExpectations(t)
}

func TestSaveRecord_InvalidJSON(t *testing.T) {
	mockSaver := new(MockRecordSaver)
	handler := SaveRecord(slog.Default(), mockSaver)

	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockSaver.AssertNotCalled(t, "CreateRecord")
}

func TestSaveRecord_MissingFields(t *testing.T) {
	mockSaver := new(MockRecordSaver)
	handler := SaveRecord(slog.Default(), mockSaver)

	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "Validation failed")
	assert.Contains(t, body, "date is required")
	assert.Contains(t, body, "totalWeight must be positive")
	assert.Contains(t, body, "pluckerCount must be positive")
	assert.Contains(t, body, "averagePrice must be positive")
	assert.Contains(t, body, "at least one detail line is required")

	mockSaver.AssertNotCalled(t, "CreateRecord")
}

func TestSaveRecord_BadDetailLine(t *testing.T) {
	mockSaver := new(MockRecordSaver)
	handler := SaveRecord(slog.Default(), mockSaver)

	body := `{
		"date": "2023-05-10",
		"totalWeight": 25,
		"pluckerCount": 2,
		"averagePrice": 2.5,
		"pluckerDetails": [
			{"pluckerId": 1, "weight": 15},
			{"pluckerId": 0, "weight": -3}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "pluckerDetails[1].pluckerId")
	assert.Contains(t, rr.Body.String(), "pluckerDetails[1].weight")

	mockSaver.AssertNotCalled(t, "CreateRecord")
}

func TestSaveRecord_BadDate(t *testing.T) {
	mockSaver := new(MockRecordSaver)
	handler := SaveRecord(slog.Default(), mockSaver)

	body := `{
		"date": "10/05/2023",
		"totalWeight": 25,
		"pluckerCount": 2,
		"averagePrice": 2.5,
		"pluckerDetails": [{"pluckerId": 1, "weight": 25}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid date")
}
