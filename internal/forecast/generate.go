package forecast

import (
	"math"
	"math/rand"
)

// generateForecast produces one non-negative point forecast per horizon
// step. The fallback variant injects bounded per-step noise around the
// trend/seasonal level; rng is seeded deterministically from the series so
// identical input yields an identical forecast. Any generation failure
// degrades to a constant forecast at the last observed value.
func generateForecast(fit ModelFit, steps int, lastValue float64, rng *rand.Rand) []float64 {
	switch m := fit.(type) {
	case *PrimaryFit:
		values, err := m.model.Predict(steps)
		if err != nil {
			return constantForecast(lastValue, steps)
		}
		for i, v := range values {
			if v < 0 || math.IsNaN(v) {
				values[i] = 0
			}
		}
		return values

	case *FallbackFit:
		values := make([]float64, steps)
		for i := range values {
			noise := rng.NormFloat64() * 0.1 * m.TrendLevel
			v := m.TrendLevel*m.SeasonalFactor + noise
			if v < 0 || math.IsNaN(v) {
				v = 0
			}
			values[i] = v
		}
		return values
	}

	return constantForecast(lastValue, steps)
}

// constantForecast repeats the last observed value (floored at zero) across
// the horizon; with no last value it forecasts zeros.
func constantForecast(lastValue float64, steps int) []float64 {
	v := math.Max(0, lastValue)
	if math.IsNaN(v) {
		v = 0
	}
	values := make([]float64, steps)
	for i := range values {
		values[i] = v
	}
	return values
}

// boundEstimate clamps the headline estimate to historically sane bounds:
// at most min(3x historical max, 24x historical mean), at least 0.1x
// historical mean.
func boundEstimate(total, histMean, histMax float64) float64 {
	ceiling := math.Min(histMax*3, histMean*24)
	total = math.Min(total, ceiling)
	return math.Max(total, histMean*0.1)
}

// seriesSeed derives a deterministic noise seed from the series contents.
func seriesSeed(values []float64) int64 {
	h := uint64(1469598103934665603)
	for _, v := range values {
		h ^= math.Float64bits(v)
		h *= 1099511628211
	}
	return int64(h)
}
