package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/spendtrack/expense-forecast/internal/models"
	"github.com/spendtrack/expense-forecast/internal/timeseries"
)

// Prepare turns raw observations into a clean monthly series: non-finite and
// negative amounts are dropped, rows are sorted by date, amounts are summed
// per calendar month, interior gaps are filled with zero months and a
// leading all-zero prefix is trimmed. Returns nil when no valid rows remain.
// The transformation is pure and idempotent.
func Prepare(observations []models.Observation) *timeseries.Series {
	valid := make([]models.Observation, 0, len(observations))
	for _, o := range observations {
		if validObservation(o) {
			valid = append(valid, o)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Date.Before(valid[j].Date) })

	totals := make(map[time.Time]float64)
	for _, o := range valid {
		totals[monthOf(o.Date)] += o.Amount
	}

	first := monthOf(valid[0].Date)
	last := monthOf(valid[len(valid)-1].Date)

	var months []time.Time
	var values []float64
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
		values = append(values, totals[m])
	}

	// Trim months before the user started spending. A series with no
	// non-zero month is left intact for the quality gate to reject.
	start := 0
	for start < len(values) && values[start] == 0 {
		start++
	}
	if start == len(values) {
		start = 0
	}

	return timeseries.New(months[start:], values[start:])
}

// TrimOutliers removes months farther than k standard deviations from the
// mean. If that would discard more than 30% of the series, the original is
// returned instead.
func TrimOutliers(s *timeseries.Series, k float64) *timeseries.Series {
	n := s.Len()
	if n == 0 {
		return s
	}

	mean := s.Mean()
	std := s.Std()
	if std == 0 {
		return s
	}

	var months []time.Time
	var values []float64
	for i, v := range s.Values {
		if math.Abs(v-mean) <= k*std {
			months = append(months, s.Months[i])
			values = append(values, v)
		}
	}

	if float64(len(values)) < float64(n)*0.7 {
		return s
	}
	return timeseries.New(months, values)
}

// validObservation reports whether a raw row survives preparation: a real
// date and a finite, non-negative amount.
func validObservation(o models.Observation) bool {
	if math.IsNaN(o.Amount) || math.IsInf(o.Amount, 0) {
		return false
	}
	if o.Amount < 0 {
		return false
	}
	return !o.Date.IsZero()
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
