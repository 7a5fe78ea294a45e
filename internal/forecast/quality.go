package forecast

import "github.com/spendtrack/expense-forecast/internal/timeseries"

// Quality gate reasons, surfaced verbatim to the caller.
const (
	reasonTooManyZeros = "Too many zero values in data"
	reasonNoVariance   = "No variance in expense data"
)

// CheckQuality decides whether a monthly series is suitable for modeling.
// Checks run in order and each failure is terminal: more than 70% zero
// months, then zero variance.
func CheckQuality(s *timeseries.Series) (bool, string) {
	n := s.Len()
	if n == 0 {
		return false, reasonTooManyZeros
	}

	zeros := 0
	for _, v := range s.Values {
		if v == 0 {
			zeros++
		}
	}
	if float64(zeros)/float64(n) > 0.7 {
		return false, reasonTooManyZeros
	}

	if s.Variance() == 0 {
		return false, reasonNoVariance
	}

	return true, ""
}
