package models

// PredictionKind classifies a derived advisory record.
type PredictionKind string

const (
	PredictionAlert          PredictionKind = "alert"
	PredictionOpportunity    PredictionKind = "opportunity"
	PredictionRecommendation PredictionKind = "recommendation"
)

// Prediction is an advisory record derived from current business snapshots.
// The full set is recomputed on every refresh; there is no deduplication
// against previously issued predictions.
type Prediction struct {
	ID          string         `json:"id"`
	Kind        PredictionKind `json:"kind"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Confidence  int            `json:"confidence"`
	ActionRef   string         `json:"action_ref,omitempty"`
}
