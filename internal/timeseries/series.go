// Package timeseries provides the monthly spending series used by the
// forecasting pipeline.
package timeseries

import (
	"math"
	"time"
)

// Series is a chronologically ordered, gap-free monthly series. Months holds
// the first day of each calendar month; Values holds the aggregated amount
// for that month.
type Series struct {
	Months []time.Time
	Values []float64
}

// New creates a series from parallel month/value slices. The caller is
// responsible for chronological ordering.
func New(months []time.Time, values []float64) *Series {
	return &Series{Months: months, Values: values}
}

// FromValues creates a series with synthetic consecutive months, most useful
// in tests and internal computations where only the values matter.
func FromValues(values []float64) *Series {
	months := make([]time.Time, len(values))
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range months {
		months[i] = base.AddDate(0, i, 0)
	}
	return &Series{Months: months, Values: values}
}

// Len returns the number of months in the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Max returns the maximum value in the series, or NaN when empty.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Last returns the most recent value, or 0 when empty.
func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

// Diff returns the first difference of the series. The result is one month
// shorter; months align with the subtrahend side.
func (s *Series) Diff() *Series {
	if len(s.Values) < 2 {
		return &Series{}
	}
	values := make([]float64, len(s.Values)-1)
	for i := 1; i < len(s.Values); i++ {
		values[i-1] = s.Values[i] - s.Values[i-1]
	}
	months := make([]time.Time, len(values))
	if len(s.Months) == len(s.Values) {
		copy(months, s.Months[1:])
	}
	return &Series{Months: months, Values: values}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	months := make([]time.Time, len(s.Months))
	copy(months, s.Months)
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{Months: months, Values: values}
}
