package forecast

import (
	"github.com/spendtrack/expense-forecast/internal/stats"
	"github.com/spendtrack/expense-forecast/internal/timeseries"
)

// StationarityResult summarizes the unit-root assessment of a series.
type StationarityResult struct {
	IsStationary bool
	PValue       float64
	CriticalVals map[string]float64
}

// AssessStationarity runs an ADF test at the 5% level. The result is
// advisory only, never a gate: when the test cannot run (short series,
// singular regression) the series is reported non-stationary with p-value
// 1.0 instead of an error.
func AssessStationarity(s *timeseries.Series) StationarityResult {
	res := stats.ADF(s, 0)
	if res == nil {
		return StationarityResult{IsStationary: false, PValue: 1.0}
	}
	return StationarityResult{
		IsStationary: res.IsStationary,
		PValue:       res.PValue,
		CriticalVals: res.CriticalVals,
	}
}
