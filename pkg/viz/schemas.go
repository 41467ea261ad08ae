package viz

import (
	"github.com/adviso/adviso/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Data block schemas per payload type. Every property is optional because
// renderers carry fallback defaults, but a present property must have the
// right shape. Types without a schema here (forward-compatible unknowns)
// skip validation entirely.
var dataSchemas = map[models.VisualizationType]*gojsonschema.Schema{}

func init() {
	raw := map[models.VisualizationType]map[string]any{
		models.VisualizationPricing: {
			"type": "object",
			"properties": map[string]any{
				"current_price":   map[string]any{"type": "number"},
				"suggested_price": map[string]any{"type": "number"},
				"margin":          map[string]any{"type": "number"},
				"currency":        map[string]any{"type": "string"},
			},
		},
		models.VisualizationComparison: {
			"type": "object",
			"properties": map[string]any{
				"labels": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"before": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
				"after":  map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
				"unit":   map[string]any{"type": "string"},
			},
		},
		models.VisualizationForecast: {
			"type": "object",
			"properties": map[string]any{
				"periods": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"values":  map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
				"unit":    map[string]any{"type": "string"},
			},
		},
		models.VisualizationBreakdown: {
			"type": "object",
			"properties": map[string]any{
				"slices": map[string]any{"type": "array"},
				"total":  map[string]any{"type": "number"},
			},
		},
	}

	for vizType, schemaDoc := range raw {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaDoc))
		if err != nil {
			panic(err)
		}

		dataSchemas[vizType] = schema
	}
}

// validateData checks a payload's data block against the schema for its
// type. Unknown types pass: they are accepted and render as no-op.
func validateData(vizType models.VisualizationType, data map[string]any) bool {
	schema, ok := dataSchemas[vizType]
	if !ok {
		return true
	}

	if data == nil {
		data = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return false
	}

	return result.Valid()
}
