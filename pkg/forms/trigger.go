package forms

import (
	"fmt"

	"github.com/loadsmith/cargoflow/pkg/graph"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/registry"
	"github.com/loadsmith/cargoflow/pkg/scheduler"
)

// TriggerForm edits trigger node configuration. The trigger type must
// belong to the module's vocabulary, and filters are validated against the
// sub-schema of the selected type.
type TriggerForm struct {
	registry *registry.Registry
}

func NewTriggerForm(reg *registry.Registry) *TriggerForm {
	return &TriggerForm{registry: reg}
}

var triggerSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"trigger_type":   map[string]any{"type": "string", "minLength": 1},
		"trigger_config": map[string]any{"type": "object"},
	},
	"required":             []any{"trigger_type"},
	"additionalProperties": false,
}

// filterSchemas describes the type-specific filter payloads. Types absent
// from the map accept no filters beyond an empty object.
var filterSchemas = map[models.TriggerType]map[string]any{
	models.TriggerLoadStatusChanged: {
		"type": "object",
		"properties": map[string]any{
			"statusFilter": map[string]any{"type": "string", "minLength": 1},
		},
		"additionalProperties": false,
	},
	models.TriggerCarrierAssigned: {
		"type": "object",
		"properties": map[string]any{
			"ratingThreshold": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	},
	models.TriggerPaymentReceived: {
		"type": "object",
		"properties": map[string]any{
			"amountThreshold": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	},
	models.TriggerInvoiceCreated: {
		"type": "object",
		"properties": map[string]any{
			"amountThreshold": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	},
	models.TriggerDocumentUploaded: {
		"type": "object",
		"properties": map[string]any{
			"documentType": map[string]any{"type": "string", "minLength": 1},
		},
		"additionalProperties": false,
	},
	models.TriggerInventoryLow: {
		"type": "object",
		"properties": map[string]any{
			"thresholdQuantity": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	},
	models.TriggerDriverHOSAlert: {
		"type": "object",
		"properties": map[string]any{
			"hoursRemaining": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	},
	models.TriggerScheduled: {
		"type": "object",
		"properties": map[string]any{
			"cronExpression": map[string]any{"type": "string", "minLength": 1},
		},
		"required":             []any{"cronExpression"},
		"additionalProperties": false,
	},
}

// Validate checks the raw payload and returns the typed trigger config.
func (f *TriggerForm) Validate(module models.ModuleContext, payload map[string]any) (*models.TriggerConfig, error) {
	if err := validateSchema(triggerSchema, payload); err != nil {
		return nil, err
	}

	var cfg models.TriggerConfig
	if err := decode(payload, &cfg); err != nil {
		return nil, err
	}

	if !f.registry.IsValidTriggerType(module, cfg.Type) {
		return nil, fieldError("trigger_type",
			fmt.Sprintf("%q is not a valid trigger type for the %s module", cfg.Type, module))
	}

	if schema, ok := filterSchemas[cfg.Type]; ok {
		filters := cfg.Filters
		if filters == nil {
			filters = map[string]any{}
		}

		if err := validateSchema(schema, filters); err != nil {
			return nil, err
		}
	}

	if cfg.Type == models.TriggerScheduled {
		expr, _ := cfg.Filters["cronExpression"].(string)

		// Same parser the schedule runner uses, so the form cannot accept
		// syntax the runner would reject.
		if err := scheduler.ValidateCronExpression(expr); err != nil {
			return nil, fieldError("trigger_config.cronExpression", "invalid cron expression: "+err.Error())
		}
	}

	if cfg.Filters == nil {
		cfg.Filters = map[string]any{}
	}

	return &cfg, nil
}

// Submit validates the payload and writes the config into the graph,
// marking the node configured.
func (f *TriggerForm) Submit(g *graph.Graph, nodeID string, payload map[string]any) error {
	node, err := g.Node(nodeID)
	if err != nil {
		return err
	}

	cfg, err := f.Validate(node.ModuleContext, payload)
	if err != nil {
		return err
	}

	return g.UpdateNodeConfig(nodeID, models.NodeConfig{Trigger: cfg}, true)
}
