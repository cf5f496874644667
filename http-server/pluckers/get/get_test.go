package get

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pluckandpay/internal/storage"
)

type MockPluckerProvider struct {
	mock.Mock
}

func (m *MockPluckerProvider) GetAllPluckers(ctx context.Context) ([]storage.Plucker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Plucker), args.Error(1)
}

func (m *MockPluckerProvider) GetPluckerByID(ctx context.Context, id int64) (storage.Plucker, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(storage.Plucker), args.Error(1)
}

func (m *MockPluckerProvider) GetTopPluckers(ctx context.Context, limit int) ([]storage.Plucker, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Plucker), args.Error(1)
}

func TestGetPlucker_Success(t *testing.T) {
	mockProvider := new(MockPluckerProvider)
	mockProvider.On("GetPluckerByID", mock.Anything, int64(7)).
		Return(storage.Plucker{
			ID:         7,
			Name:       "Amara",
			Phone:      "0771234567",
			JoinDate:   time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			Status:     storage.StatusActive,
			Collection: 120.5,
		}, nil)

	router := chi.NewRouter()
	router.Get("/pluckers/{id}", GetPlucker(slog.Default(), mockProvider))

	req := httptest.NewRequest(http.MethodGet, "/pluckers/7", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp storage.Plucker
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "Amara", resp.Name)
	assert.Equal(t, 120.5, resp.Collection)

	mockProvider.AssertExpectations(t)
}

func TestGetPlucker_NotFound(t *testing.T) {
	mockProvider := new(MockPluckerProvider)
	mockProvider.On("GetPluckerByID", mock.Anything, int64(99)).
		Return(storage.Plucker{}, storage.ErrNotFound)

	router := chi.NewRouter()
	router.Get("/pluckers/{id}", GetPlucker(slog.Default(), mockProvider))

	req := httptest.NewRequest(http.MethodGet, "/pluckers/99", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Plucker not found")
}

func TestGetPlucker_MalformedID(t *testing.T) {
	mockProvider := new(MockPluckerProvider)

	router := chi.NewRouter()
	router.Get("/pluckers/{id}", GetPlucker(slog.Default(), mockProvider))

	// Malformed ids behave exactly like unknown ones.
	req := httptest.NewRequest(http.MethodGet, "/pluckers/not-an-id", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockProvider.AssertNotCalled(t, "GetPluckerByID")
}

func TestGetTopPluckers_DefaultLimit(t *testing.T) {
	mockProvider := new(MockPluckerProvider)
	mockProvider.On("GetTopPluckers", mock.Anything, 5).
		Return([]storage.Plucker{{ID: 1, Name: "Amara"}}, nil)

	handler := GetTopPluckers(slog.Default(), mockProvider)

	req := httptest.NewRequest(http.MethodGet, "/pluckers/top", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockProvider.AssertExpectations(t)
}

func TestGetTopPluckers_CustomLimit(t *testing.T) {
	mockProvider := new(MockPluckerProvider)
	mockProvider.On("GetTopPluckers", mock.Anything, 3).
		Return([]storage.Plucker{}, nil)

	handler := GetTopPluckers(slog.Default(), mockProvider)

	req := httptest.NewRequest(http.MethodGet, "/pluckers/top?limit=3", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockProvider.AssertExpectations(t)
}

func TestGetTopPluckers_BadLimit(t *testing.T) {
	mockProvider := new(MockPluckerProvider)

	handler := GetTopPluckers(slog.Default(), mockProvider)

	req := httptest.NewRequest(http.MethodGet, "/pluckers/top?limit=zero", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockProvider.AssertNotCalled(t, "GetTopPluckers")
}
