package models

// ForecastResponse is the HTTP payload for a forecast request. Forecast is
// either a decimal estimate with two fractional digits or a diagnostic
// message; Numeric reports which of the two it is.
type ForecastResponse struct {
	Forecast string `json:"forecast"`
	Numeric  bool   `json:"numeric"`
}
