// Package forecast implements the expense forecasting pipeline: data
// preparation, quality gating, stationarity assessment, ARIMA order search
// with a trend/seasonal fallback, forecast generation and sanity bounding.
package forecast

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spendtrack/expense-forecast/internal/models"
)

// StaleAfter is how old the most recent observation may be before the
// pipeline refuses to forecast.
const StaleAfter = 60 * 24 * time.Hour

// Terminal diagnostics, surfaced verbatim to the caller.
const (
	msgNoData      = "No expense data available for forecasting"
	msgStaleData   = "Data is too outdated for reliable forecasting"
	msgUnavailable = "Forecasting temporarily unavailable"

	qualityPrefix = "Data quality issue: "
)

// DataAccess is the collaborator the pipeline pulls its inputs from. The
// pipeline never owns a connection; an implementation is injected per
// forecaster.
type DataAccess interface {
	FetchObservations(ctx context.Context, userID int64) ([]models.Observation, error)
	FetchYearToDate(ctx context.Context, userID int64, year int) (float64, error)
}

// Forecaster runs the forecasting pipeline end to end for one user per
// call. Every invocation re-derives its series from current storage state;
// nothing is cached between calls.
type Forecaster struct {
	da            DataAccess
	log           *logrus.Logger
	searchTimeout time.Duration
	now           func() time.Time
}

// NewForecaster initializes a forecaster. searchTimeout bounds the total
// model order search time; on expiry the pipeline degrades to the fallback
// estimator.
func NewForecaster(da DataAccess, log *logrus.Logger, searchTimeout time.Duration) *Forecaster {
	return &Forecaster{
		da:            da,
		log:           log,
		searchTimeout: searchTimeout,
		now:           time.Now,
	}
}

// Estimate forecasts the user's aggregate spending for the requested
// horizon. mode is "months" (value = number of months ahead) or "year"
// (value = calendar year). The result is always a string: a decimal
// estimate with two fractional digits, or one of the fixed diagnostics.
func (f *Forecaster) Estimate(ctx context.Context, userID int64, mode string, value int) string {
	now := f.now()
	mode = strings.ToLower(mode)

	observations, err := f.da.FetchObservations(ctx, userID)
	if err != nil {
		f.log.Errorf("fetching observations for user %d: %v", userID, err)
		return msgUnavailable
	}
	if len(observations) == 0 {
		return msgNoData
	}

	series := Prepare(observations)
	if series == nil {
		return msgNoData
	}

	if ok, reason := CheckQuality(series); !ok {
		return qualityPrefix + reason
	}

	if ok, msg := validateRequest(mode, value, series.Len(), now); !ok {
		return msg
	}

	if now.Sub(latestObservation(observations)) > StaleAfter {
		return msgStaleData
	}

	lastValue := series.Last()
	clean := TrimOutliers(series, 3)

	st := AssessStationarity(clean)
	f.log.Debugf("stationarity for user %d: stationary=%t p=%.3f", userID, st.IsStationary, st.PValue)

	searchCtx, cancel := context.WithTimeout(ctx, f.searchTimeout)
	fit := fitModel(searchCtx, clean)
	cancel()

	steps, ytd, err := f.horizon(ctx, userID, mode, value, now)
	if err != nil {
		f.log.Errorf("year-to-date lookup for user %d: %v", userID, err)
		return msgUnavailable
	}

	rng := rand.New(rand.NewSource(seriesSeed(clean.Values)))
	forecast := generateForecast(fit, steps, lastValue, rng)

	total := ytd
	for _, v := range forecast {
		total += v
	}
	total = boundEstimate(total, series.Mean(), series.Max())

	f.log.Infof("forecast for user %d: model=%s mean=%.2f estimate=%.2f",
		userID, describeFit(fit), series.Mean(), total)

	return fmt.Sprintf("%.2f", total)
}

// horizon resolves the requested mode/value into a number of forecast steps
// plus any already-observed year-to-date spend to add to the sum.
func (f *Forecaster) horizon(ctx context.Context, userID int64, mode string, value int, now time.Time) (int, float64, error) {
	if mode == ModeYear {
		if value == now.Year() {
			remaining := 12 - int(now.Month()) + 1
			ytd, err := f.da.FetchYearToDate(ctx, userID, value)
			if err != nil {
				return 0, 0, err
			}
			return remaining, ytd, nil
		}
		return 12, 0, nil
	}
	return value, 0, nil
}

// latestObservation returns the date of the most recent row that survives
// preparation. Discarded rows must not count toward recency, otherwise a
// fresh invalid entry would mask stale spending history.
func latestObservation(observations []models.Observation) time.Time {
	var latest time.Time
	for _, o := range observations {
		if !validObservation(o) {
			continue
		}
		if o.Date.After(latest) {
			latest = o.Date
		}
	}
	return latest
}

func describeFit(fit ModelFit) string {
	switch m := fit.(type) {
	case *PrimaryFit:
		return fmt.Sprintf("ARIMA(%d,%d,%d)", m.Order.P, m.Order.D, m.Order.Q)
	case *FallbackFit:
		return "fallback"
	}
	return "unknown"
}
