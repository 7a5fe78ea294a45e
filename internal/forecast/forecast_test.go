package forecast

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spendtrack/expense-forecast/internal/models"
)

type mockDataAccess struct {
	observations []models.Observation
	obsErr       error
	ytd          float64
	ytdErr       error
	ytdCalled    bool
}

func (m *mockDataAccess) FetchObservations(ctx context.Context, userID int64) ([]models.Observation, error) {
	return m.observations, m.obsErr
}

func (m *mockDataAccess) FetchYearToDate(ctx context.Context, userID int64, year int) (float64, error) {
	m.ytdCalled = true
	return m.ytd, m.ytdErr
}

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestForecaster(da DataAccess) *Forecaster {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f := NewForecaster(da, logger, 10*time.Second)
	f.now = func() time.Time { return testNow }
	return f
}

// monthlyHistory builds n months of varied spending ending in the month of
// testNow, with the latest entry a few days before "now".
func monthlyHistory(n int) []models.Observation {
	observations := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		date := testNow.AddDate(0, -(n - 1 - i), 0)
		if i == n-1 {
			date = testNow.AddDate(0, 0, -5)
		}
		observations[i] = models.Observation{
			Date:   time.Date(date.Year(), date.Month(), 10, 0, 0, 0, 0, time.UTC),
			Amount: 100 + 15*pseudoNoise(i) + float64(i),
		}
	}
	return observations
}

func TestEstimateNoData(t *testing.T) {
	f := newTestForecaster(&mockDataAccess{})
	if got := f.Estimate(context.Background(), 1, "months", 2); got != msgNoData {
		t.Errorf("expected %q, got %q", msgNoData, got)
	}
}

func TestEstimateAllRowsInvalid(t *testing.T) {
	da := &mockDataAccess{observations: []models.Observation{
		{Date: testNow, Amount: -50},
	}}
	f := newTestForecaster(da)
	if got := f.Estimate(context.Background(), 1, "months", 2); got != msgNoData {
		t.Errorf("expected %q, got %q", msgNoData, got)
	}
}

func TestEstimateFetchError(t *testing.T) {
	da := &mockDataAccess{obsErr: errors.New("connection refused")}
	f := newTestForecaster(da)
	if got := f.Estimate(context.Background(), 1, "months", 2); got != msgUnavailable {
		t.Errorf("expected %q, got %q", msgUnavailable, got)
	}
}

func TestEstimateQualityGate(t *testing.T) {
	// Ten months, eight of them zero.
	var observations []models.Observation
	for i := 0; i < 10; i++ {
		amount := 0.0
		if i == 0 || i == 5 {
			amount = 80
		}
		date := testNow.AddDate(0, -(9 - i), 0)
		observations = append(observations, models.Observation{Date: date, Amount: amount})
	}

	f := newTestForecaster(&mockDataAccess{observations: observations})
	got := f.Estimate(context.Background(), 1, "months", 2)
	want := qualityPrefix + reasonTooManyZeros
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEstimateHorizonPolicy(t *testing.T) {
	da := &mockDataAccess{observations: monthlyHistory(10)}
	f := newTestForecaster(da)

	if got := f.Estimate(context.Background(), 1, "months", 8); got != msgLongNeedsHistory {
		t.Errorf("expected %q, got %q", msgLongNeedsHistory, got)
	}
	if got := f.Estimate(context.Background(), 1, "year", 2024); got != msgPastYear {
		t.Errorf("expected %q, got %q", msgPastYear, got)
	}
}

func TestEstimateStaleData(t *testing.T) {
	// Good history ending 90 days before "now".
	observations := monthlyHistory(24)
	for i := range observations {
		observations[i].Date = observations[i].Date.AddDate(0, 0, -90)
	}

	f := newTestForecaster(&mockDataAccess{observations: observations})
	if got := f.Estimate(context.Background(), 1, "months", 2); got != msgStaleData {
		t.Errorf("expected %q, got %q", msgStaleData, got)
	}
}

func TestEstimateStaleDataDespiteRecentInvalidRow(t *testing.T) {
	// Valid history ending 90 days back, plus a discarded negative row
	// dated 5 days before "now". Recency must come from rows that survive
	// preparation, so the forecast is still refused as stale.
	observations := monthlyHistory(24)
	for i := range observations {
		observations[i].Date = observations[i].Date.AddDate(0, 0, -90)
	}
	observations = append(observations, models.Observation{
		Date:   testNow.AddDate(0, 0, -5),
		Amount: -40,
	})

	f := newTestForecaster(&mockDataAccess{observations: observations})
	if got := f.Estimate(context.Background(), 1, "months", 2); got != msgStaleData {
		t.Errorf("expected %q, got %q", msgStaleData, got)
	}
}

func TestEstimateMonthsProducesBoundedNumber(t *testing.T) {
	da := &mockDataAccess{observations: monthlyHistory(24)}
	f := newTestForecaster(da)

	got := f.Estimate(context.Background(), 1, "months", 2)
	estimate, err := strconv.ParseFloat(got, 64)
	if err != nil {
		t.Fatalf("expected a numeric estimate, got %q", got)
	}

	series := Prepare(da.observations)
	ceiling := series.Max() * 3
	if alt := series.Mean() * 24; alt < ceiling {
		ceiling = alt
	}
	if estimate > ceiling+1e-6 {
		t.Errorf("estimate %f above the sane ceiling %f", estimate, ceiling)
	}
	if estimate < series.Mean()*0.1-1e-6 {
		t.Errorf("estimate %f below the floor %f", estimate, series.Mean()*0.1)
	}
	if da.ytdCalled {
		t.Error("months mode must not consult year-to-date")
	}
}

func TestEstimateDeterministicForSameInput(t *testing.T) {
	da := &mockDataAccess{observations: monthlyHistory(24)}
	f := newTestForecaster(da)

	a := f.Estimate(context.Background(), 1, "months", 3)
	b := f.Estimate(context.Background(), 1, "months", 3)
	if a != b {
		t.Errorf("identical input produced different estimates: %q vs %q", a, b)
	}
}

func TestEstimateCurrentYearAddsYearToDate(t *testing.T) {
	da := &mockDataAccess{observations: monthlyHistory(24), ytd: 700}
	f := newTestForecaster(da)

	got := f.Estimate(context.Background(), 1, "year", testNow.Year())
	if _, err := strconv.ParseFloat(got, 64); err != nil {
		t.Fatalf("expected a numeric estimate, got %q", got)
	}
	if !da.ytdCalled {
		t.Error("current-year forecast must add year-to-date spend")
	}
}

func TestEstimateFutureYearSkipsYearToDate(t *testing.T) {
	da := &mockDataAccess{observations: monthlyHistory(24)}
	f := newTestForecaster(da)

	got := f.Estimate(context.Background(), 1, "year", testNow.Year()+1)
	if _, err := strconv.ParseFloat(got, 64); err != nil {
		t.Fatalf("expected a numeric estimate, got %q", got)
	}
	if da.ytdCalled {
		t.Error("future-year forecast must not consult year-to-date")
	}
}

func TestEstimateYearToDateErrorFailsClosed(t *testing.T) {
	da := &mockDataAccess{observations: monthlyHistory(24), ytdErr: errors.New("timeout")}
	f := newTestForecaster(da)

	if got := f.Estimate(context.Background(), 1, "year", testNow.Year()); got != msgUnavailable {
		t.Errorf("expected %q, got %q", msgUnavailable, got)
	}
}

func TestEstimateFormatsTwoDecimals(t *testing.T) {
	da := &mockDataAccess{observations: monthlyHistory(24)}
	f := newTestForecaster(da)

	got := f.Estimate(context.Background(), 1, "months", 2)
	dot := -1
	for i, r := range got {
		if r == '.' {
			dot = i
		}
	}
	if dot < 0 || len(got)-dot-1 != 2 {
		t.Errorf("expected two fractional digits, got %q", got)
	}
}
