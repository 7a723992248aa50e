package models

// Usage categories derived from the predicted bill.
const (
	CategoryLow    = "low"
	CategoryMedium = "medium"
	CategoryHigh   = "high"
)

// Prediction represents a single prediction outcome, including the raw
// model outputs and the values derived from them.
type Prediction struct {
	PredictionID string  `json:"prediction_id"` // Unique identifier for this prediction
	Timestamp    int64   `json:"timestamp"`     // Unix timestamp (in seconds) when the prediction was made
	Username     string  `json:"username"`      // User the prediction was made for
	Voltage      float64 `json:"voltage"`       // Predicted voltage, in volts
	Bill         float64 `json:"bill"`          // Predicted monthly bill, in currency units
	UsageKWh     float64 `json:"usage_kwh"`     // Estimated monthly usage, bill divided by the per-unit rate
	Category     string  `json:"category"`      // Usage category: low, medium or high
}
