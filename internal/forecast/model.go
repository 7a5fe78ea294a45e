package forecast

import (
	"context"
	"math"

	"github.com/spendtrack/expense-forecast/internal/arima"
	"github.com/spendtrack/expense-forecast/internal/stats"
	"github.com/spendtrack/expense-forecast/internal/timeseries"
)

// ModelFit is the outcome of the fitting stage. Exactly one of the two
// variants exists per forecasting run; consumers must switch on the concrete
// type rather than probe fields.
type ModelFit interface {
	modelFit()
}

// PrimaryFit is a successfully fitted ARIMA model together with its
// selection score and residual diagnostic. The diagnostic is informational
// only and never rejects the fit; LjungBox is nil when the residual series
// is too short to test, which does not escalate to the fallback.
type PrimaryFit struct {
	Order    arima.Order
	AIC      float64
	LjungBox *stats.LjungBoxResult

	model *arima.Model
}

func (*PrimaryFit) modelFit() {}

// FallbackFit is the trend/seasonal heuristic used whenever the primary
// path is unavailable.
type FallbackFit struct {
	TrendLevel     float64
	SeasonalFactor float64
}

func (*FallbackFit) modelFit() {}

// Interval is a summed 95% confidence interval over a forecast horizon.
type Interval struct {
	Lower float64
	Upper float64
}

// ConfidenceInterval sums approximate per-step 95% Gaussian bounds for the
// next steps periods. Only the primary variant can produce one.
func (f *PrimaryFit) ConfidenceInterval(steps int) (Interval, bool) {
	if f.model == nil || steps < 1 {
		return Interval{}, false
	}
	points, err := f.model.Predict(steps)
	if err != nil {
		return Interval{}, false
	}

	sigma := math.Sqrt(f.model.Variance)
	var iv Interval
	for h, p := range points {
		se := sigma * math.Sqrt(float64(h+1))
		iv.Lower += p - 1.96*se
		iv.Upper += p + 1.96*se
	}
	return iv, true
}

// fitModel runs the order search and assembles the primary fit, escalating
// to the fallback estimator when no candidate order converges.
func fitModel(ctx context.Context, series *timeseries.Series) ModelFit {
	sel := arima.Search(ctx, series, arima.DefaultSearchConfig())
	if !sel.Converged {
		return fitFallback(series)
	}

	residuals := sel.Model.Residuals()
	var lb *stats.LjungBoxResult
	if lags := min(10, len(residuals)/4); lags >= 1 {
		lb = stats.LjungBox(residuals, lags, sel.Order.P+sel.Order.Q)
	}

	return &PrimaryFit{
		Order:    sel.Order,
		AIC:      sel.AIC,
		LjungBox: lb,
		model:    sel.Model,
	}
}

// fitFallback computes the guaranteed terminal estimator: an exponentially
// weighted mean as trend level plus a recent-year seasonal factor. It never
// fails; on numeric trouble it degrades to the arithmetic mean.
func fitFallback(series *timeseries.Series) *FallbackFit {
	n := series.Len()
	if n == 0 {
		return &FallbackFit{TrendLevel: 0, SeasonalFactor: 1.0}
	}

	const alpha = 0.3
	level := series.Values[0]
	for _, v := range series.Values[1:] {
		level = alpha*v + (1-alpha)*level
	}

	seasonal := 1.0
	if n >= 12 {
		recent := 0.0
		for _, v := range series.Values[n-12:] {
			recent += v
		}
		recent /= 12
		if overall := series.Mean(); overall > 0 {
			seasonal = recent / overall
		}
	}

	if math.IsNaN(level) || math.IsInf(level, 0) || math.IsNaN(seasonal) || math.IsInf(seasonal, 0) {
		return &FallbackFit{TrendLevel: series.Mean(), SeasonalFactor: 1.0}
	}
	return &FallbackFit{TrendLevel: level, SeasonalFactor: seasonal}
}
