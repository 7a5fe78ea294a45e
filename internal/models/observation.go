package models

import "time"

// Observation is a single dated expense amount as fetched from storage.
// Rows with negative or non-finite amounts are discarded during preparation;
// observations are never persisted by the forecasting core.
type Observation struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}
