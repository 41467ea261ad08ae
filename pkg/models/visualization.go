package models

// VisualizationType tags the structured payload a renderer should use.
type VisualizationType string

const (
	VisualizationPricing    VisualizationType = "pricing"
	VisualizationComparison VisualizationType = "comparison"
	VisualizationForecast   VisualizationType = "forecast"
	VisualizationBreakdown  VisualizationType = "breakdown"
)

// VisualizationPayload is a typed data block extracted from assistant text.
// It is derived on read and never persisted on its own; unknown Type values
// are accepted and simply render nothing.
type VisualizationPayload struct {
	Type  VisualizationType `json:"type"`
	Title string            `json:"title,omitempty"`
	Data  map[string]any    `json:"data"`
}

// PricingData is the view model for pricing visualizations. Missing fields
// fall back to zero values so a partially populated payload still renders.
type PricingData struct {
	CurrentPrice   float64 `json:"current_price"`
	SuggestedPrice float64 `json:"suggested_price"`
	Margin         float64 `json:"margin"`
	Currency       string  `json:"currency"`
}

// ComparisonData is the view model for side-by-side comparisons.
type ComparisonData struct {
	Labels []string  `json:"labels"`
	Before []float64 `json:"before"`
	After  []float64 `json:"after"`
	Unit   string    `json:"unit"`
}

// ForecastData is the view model for projected series.
type ForecastData struct {
	Periods []string  `json:"periods"`
	Values  []float64 `json:"values"`
	Unit    string    `json:"unit"`
}

// BreakdownSlice is one segment of a breakdown visualization.
type BreakdownSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BreakdownData is the view model for part-of-whole breakdowns.
type BreakdownData struct {
	Slices []BreakdownSlice `json:"slices"`
	Total  float64          `json:"total"`
}
