package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pluckandpay/internal/storage"
)

type MockPaymentGenerator struct {
	mock.Mock
}

func (m *MockPaymentGenerator) GeneratePayment(ctx context.Context, start, end time.Time) (storage.Payment, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(storage.Payment), args.Error(1)
}

func TestGeneratePayment_Success(t *testing.T) {
	mockGenerator := new(MockPaymentGenerator)
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC)

	mockGenerator.On("GeneratePayment", mock.Anything, start, end).
		Return(storage.Payment{
			Period:       "2023-05-01 to 2023-05-31",
			Status:       storage.PaymentPending,
			TotalAmount:  decimal.RequireFromString("70"),
			PluckerCount: 1,
		}, nil)

	handler := GeneratePayment(slog.Default(), mockGenerator)

	body := `{"startDate": "2023-05-01", "endDate": "2023-05-31"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/generate", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp storage.Payment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "2023-05-01 to 2023-05-31", resp.Period)
	assert.Equal(t, storage.PaymentPending, resp.Status)

	// The draft is never persisted here, so it carries no id.
	assert.Zero(t, resp.ID)

	mockGenerator.AssertExpectations(t)
}

func TestGeneratePayment_MissingDates(t *testing.T) {
	mockGenerator := new(MockPaymentGenerator)
	handler := GeneratePayment(slog.Default(), mockGenerator)

	req := httptest.NewRequest(http.MethodPost, "/payments/generate", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "startDate is required")
	assert.Contains(t, rr.Body.String(), "endDate is required")
	mockGenerator.AssertNotCalled(t, "GeneratePayment")
}

func TestGeneratePayment_EndBeforeStart(t *testing.T) {
	mockGenerator := new(MockPaymentGenerator)
	handler := GeneratePayment(slog.Default(), mockGenerator)

	body := `{"startDate": "2023-05-31", "endDate": "2023-05-01"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/generate", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "endDate must not be before startDate")
	mockGenerator.AssertNotCalled(t, "GeneratePayment")
}
