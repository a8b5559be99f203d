package forms

import (
	"fmt"

	"github.com/loadsmith/cargoflow/pkg/graph"
	"github.com/loadsmith/cargoflow/pkg/models"
)

// ConditionForm edits condition node configuration: an ordered rule list
// combined with a single logical operator.
type ConditionForm struct{}

func NewConditionForm() *ConditionForm {
	return &ConditionForm{}
}

var conditionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"conditions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field": map[string]any{"type": "string", "minLength": 1},
					"operator": map[string]any{
						"type": "string",
						"enum": []any{
							"equals", "not_equals", "contains", "not_contains",
							"greater_than", "less_than",
							"greater_than_or_equals", "less_than_or_equals",
							"is_empty", "is_not_empty",
						},
					},
					"value": map[string]any{},
				},
				"required":             []any{"field", "operator"},
				"additionalProperties": false,
			},
		},
		"logical_operator": map[string]any{
			"type": "string",
			"enum": []any{"AND", "OR"},
		},
	},
	"required":             []any{"conditions", "logical_operator"},
	"additionalProperties": false,
}

// Validate checks the raw payload and returns the typed condition config.
// Rules with is_empty/is_not_empty must not carry a value; for the other
// operators a value is required.
func (f *ConditionForm) Validate(payload map[string]any) (*models.ConditionConfig, error) {
	if err := validateSchema(conditionSchema, payload); err != nil {
		return nil, err
	}

	var cfg models.ConditionConfig
	if err := decode(payload, &cfg); err != nil {
		return nil, err
	}

	for i := range cfg.Rules {
		rule := &cfg.Rules[i]

		if rule.Operator.RequiresValue() {
			if rule.Value == nil {
				return nil, fieldError(
					fmt.Sprintf("conditions.%d.value", i),
					fmt.Sprintf("operator %q requires a value", rule.Operator))
			}
		} else {
			// Presence operators inspect only the field.
			rule.Value = nil
		}
	}

	return &cfg, nil
}

// Submit validates the payload and writes the config into the graph,
// marking the node configured.
func (f *ConditionForm) Submit(g *graph.Graph, nodeID string, payload map[string]any) error {
	if _, err := g.Node(nodeID); err != nil {
		return err
	}

	cfg, err := f.Validate(payload)
	if err != nil {
		return err
	}

	return g.UpdateNodeConfig(nodeID, models.NodeConfig{Condition: cfg}, true)
}
