package viz

import (
	"github.com/adviso/adviso/pkg/models"
)

// Renderer turns a payload of one type into its typed view model.
type Renderer interface {
	Type() models.VisualizationType
	Render(payload *models.VisualizationPayload) any
}

// Registry dispatches payloads to renderers by type. Unknown types render
// nothing rather than erroring, so new payload kinds from the upstream
// generator degrade gracefully.
type Registry struct {
	renderers map[models.VisualizationType]Renderer
}

// NewRegistry creates a registry with the built-in renderers installed.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[models.VisualizationType]Renderer)}

	r.Register(pricingRenderer{})
	r.Register(comparisonRenderer{})
	r.Register(forecastRenderer{})
	r.Register(breakdownRenderer{})

	return r
}

// Register installs a renderer for its payload type.
func (r *Registry) Register(renderer Renderer) {
	r.renderers[renderer.Type()] = renderer
}

// Render returns the view model for a payload, or (nil, false) when no
// renderer knows the payload type.
func (r *Registry) Render(payload *models.VisualizationPayload) (any, bool) {
	if payload == nil {
		return nil, false
	}

	renderer, ok := r.renderers[payload.Type]
	if !ok {
		return nil, false
	}

	return renderer.Render(payload), true
}

type pricingRenderer struct{}

func (pricingRenderer) Type() models.VisualizationType {
	return models.VisualizationPricing
}

func (pricingRenderer) Render(payload *models.VisualizationPayload) any {
	return models.PricingData{
		CurrentPrice:   numberField(payload.Data, "current_price", 0),
		SuggestedPrice: numberField(payload.Data, "suggested_price", 0),
		Margin:         numberField(payload.Data, "margin", 0),
		Currency:       stringField(payload.Data, "currency", "USD"),
	}
}

type comparisonRenderer struct{}

func (comparisonRenderer) Type() models.VisualizationType {
	return models.VisualizationComparison
}

func (comparisonRenderer) Render(payload *models.VisualizationPayload) any {
	return models.ComparisonData{
		Labels: stringSliceField(payload.Data, "labels"),
		Before: numberSliceField(payload.Data, "before"),
		After:  numberSliceField(payload.Data, "after"),
		Unit:   stringField(payload.Data, "unit", ""),
	}
}

type forecastRenderer struct{}

func (forecastRenderer) Type() models.VisualizationType {
	return models.VisualizationForecast
}

func (forecastRenderer) Render(payload *models.VisualizationPayload) any {
	return models.ForecastData{
		Periods: stringSliceField(payload.Data, "periods"),
		Values:  numberSliceField(payload.Data, "values"),
		Unit:    stringField(payload.Data, "unit", ""),
	}
}

type breakdownRenderer struct{}

func (breakdownRenderer) Type() models.VisualizationType {
	return models.VisualizationBreakdown
}

func (breakdownRenderer) Render(payload *models.VisualizationPayload) any {
	rawSlices, _ := payload.Data["slices"].([]any)

	slices := make([]models.BreakdownSlice, 0, len(rawSlices))
	total := 0.0

	for _, raw := range rawSlices {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		slice := models.BreakdownSlice{
			Label: stringField(entry, "label", ""),
			Value: numberField(entry, "value", 0),
		}
		slices = append(slices, slice)
		total += slice.Value
	}

	if explicit := numberField(payload.Data, "total", 0); explicit > 0 {
		total = explicit
	}

	return models.BreakdownData{Slices: slices, Total: total}
}

func numberField(data map[string]any, key string, fallback float64) float64 {
	if value, ok := data[key].(float64); ok {
		return value
	}

	return fallback
}

func stringField(data map[string]any, key, fallback string) string {
	if value, ok := data[key].(string); ok && value != "" {
		return value
	}

	return fallback
}

func stringSliceField(data map[string]any, key string) []string {
	raw, _ := data[key].([]any)

	values := make([]string, 0, len(raw))

	for _, item := range raw {
		if value, ok := item.(string); ok {
			values = append(values, value)
		}
	}

	return values
}

func numberSliceField(data map[string]any, key string) []float64 {
	raw, _ := data[key].([]any)

	values := make([]float64, 0, len(raw))

	for _, item := range raw {
		if value, ok := item.(float64); ok {
			values = append(values, value)
		}
	}

	return values
}
