package forecast

import (
	"strings"
	"time"
)

// Forecast modes accepted by the pipeline.
const (
	ModeMonths = "months"
	ModeYear   = "year"
)

// Validation diagnostics, surfaced verbatim to the caller.
const (
	msgYearNeedsHistory  = "Need at least 6 months of data to predict yearly expenses"
	msgPastYear          = "Cannot forecast for past years"
	msgNonPositiveMonths = "Number of months must be positive"
	msgHorizonTooLong    = "Cannot forecast more than 12 months ahead"
	msgLongNeedsHistory  = "Need at least 12 months of data to forecast more than 6 months"
	msgShortNeedsHistory = "Need at least 6 months of data for reliable short-term forecasting"
	msgInvalidMode       = "Invalid mode. Use 'months' or 'year'"
)

// validateRequest applies the horizon policy: the requested mode and value
// must be coherent with how many months of cleaned history exist.
func validateRequest(mode string, value, pastMonths int, now time.Time) (bool, string) {
	switch strings.ToLower(mode) {
	case ModeYear:
		if pastMonths < 6 {
			return false, msgYearNeedsHistory
		}
		if value < now.Year() {
			return false, msgPastYear
		}
	case ModeMonths:
		if value <= 0 {
			return false, msgNonPositiveMonths
		}
		if value > 12 {
			return false, msgHorizonTooLong
		}
		if value > 6 && pastMonths < 12 {
			return false, msgLongNeedsHistory
		}
		if value <= 3 && pastMonths < 6 {
			return false, msgShortNeedsHistory
		}
	default:
		return false, msgInvalidMode
	}
	return true, ""
}
