package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spendtrack/expense-forecast/internal/forecast"
	"github.com/spendtrack/expense-forecast/internal/models"
	"github.com/spendtrack/expense-forecast/internal/repository"
	"github.com/spendtrack/expense-forecast/internal/service"
)

type stubStore struct{}

func (stubStore) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	return 0, repository.ErrUserNotFound
}

func (stubStore) ListUserActivity(ctx context.Context) ([]models.UserActivity, error) {
	return nil, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error {
	return p.err
}

type stubDataAccess struct{}

func (stubDataAccess) FetchObservations(ctx context.Context, userID int64) ([]models.Observation, error) {
	return nil, nil
}

func (stubDataAccess) FetchYearToDate(ctx context.Context, userID int64, year int) (float64, error) {
	return 0, nil
}

func newTestHandler(db Pinger) *Handler {
	logger, _ := test.NewNullLogger()
	forecaster := forecast.NewForecaster(stubDataAccess{}, logger, time.Second)
	return NewHandler(service.NewService(stubStore{}, forecaster, logger), db)
}

func TestForecastRequiresEmail(t *testing.T) {
	h := newTestHandler(stubPinger{})
	rec := httptest.NewRecorder()
	h.Forecast(rec, httptest.NewRequest(http.MethodGet, "/analytics/forecast", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestForecastRejectsNonIntegerValue(t *testing.T) {
	h := newTestHandler(stubPinger{})
	rec := httptest.NewRecorder()
	h.Forecast(rec, httptest.NewRequest(http.MethodGet, "/analytics/forecast?email=a@example.com&value=two", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestForecastReturnsDiagnosticJSON(t *testing.T) {
	h := newTestHandler(stubPinger{})
	rec := httptest.NewRecorder()
	h.Forecast(rec, httptest.NewRequest(http.MethodGet, "/analytics/forecast?email=a@example.com&mode=months&value=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var resp models.ForecastResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Forecast != "User not found" {
		t.Errorf("expected the user-not-found diagnostic, got %q", resp.Forecast)
	}
	if resp.Numeric {
		t.Error("a diagnostic must not be flagged numeric")
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(stubPinger{})
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}

func TestHealthDegradedOnPingFailure(t *testing.T) {
	h := newTestHandler(stubPinger{err: errors.New("connection refused")})
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("expected status degraded, got %v", body)
	}
}
