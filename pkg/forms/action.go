package forms

import (
	"fmt"

	"github.com/loadsmith/cargoflow/pkg/graph"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/registry"
)

// ActionForm edits action node configuration. The generic schema only
// checks the envelope; the params are validated against the sub-schema of
// the selected action type.
type ActionForm struct {
	registry *registry.Registry
}

func NewActionForm(reg *registry.Registry) *ActionForm {
	return &ActionForm{registry: reg}
}

var actionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action_type":   map[string]any{"type": "string", "minLength": 1},
		"action_config": map[string]any{"type": "object"},
	},
	"required":             []any{"action_type"},
	"additionalProperties": false,
}

var actionParamSchemas = map[models.ActionType]map[string]any{
	models.ActionSendEmail: {
		"type": "object",
		"properties": map[string]any{
			"to":      map[string]any{"type": "string", "minLength": 1},
			"subject": map[string]any{"type": "string", "minLength": 1},
			"body":    map[string]any{"type": "string"},
		},
		"required": []any{"to", "subject", "body"},
	},
	models.ActionSendSMS: {
		"type": "object",
		"properties": map[string]any{
			"to":      map[string]any{"type": "string", "minLength": 1},
			"message": map[string]any{"type": "string", "minLength": 1, "maxLength": 160},
		},
		"required": []any{"to", "message"},
	},
	models.ActionSendNotification: {
		"type": "object",
		"properties": map[string]any{
			"userId":  map[string]any{"type": "string", "minLength": 1},
			"title":   map[string]any{"type": "string", "minLength": 1},
			"message": map[string]any{"type": "string"},
		},
		"required": []any{"userId", "title"},
	},
	models.ActionCreateAlert: {
		"type": "object",
		"properties": map[string]any{
			"severity": map[string]any{"type": "string", "enum": []any{"info", "warning", "critical"}},
			"message":  map[string]any{"type": "string", "minLength": 1},
		},
		"required": []any{"severity", "message"},
	},
	models.ActionUpdateStatus: {
		"type": "object",
		"properties": map[string]any{
			"entityType": map[string]any{"type": "string", "minLength": 1},
			"status":     map[string]any{"type": "string", "minLength": 1},
		},
		"required": []any{"entityType", "status"},
	},
	models.ActionUpdateField: {
		"type": "object",
		"properties": map[string]any{
			"entityType": map[string]any{"type": "string", "minLength": 1},
			"field":      map[string]any{"type": "string", "minLength": 1},
			"value":      map[string]any{},
		},
		"required": []any{"entityType", "field", "value"},
	},
	models.ActionAssignResource: {
		"type": "object",
		"properties": map[string]any{
			"resourceType": map[string]any{"type": "string", "minLength": 1},
			"resourceId":   map[string]any{"type": "string"},
		},
		"required": []any{"resourceType"},
	},
	models.ActionCreateTask: {
		"type": "object",
		"properties": map[string]any{
			"title":      map[string]any{"type": "string", "minLength": 1},
			"assignee":   map[string]any{"type": "string"},
			"dueInHours": map[string]any{"type": "number", "minimum": 0},
		},
		"required": []any{"title"},
	},
	models.ActionCreateFollowUp: {
		"type": "object",
		"properties": map[string]any{
			"subject":    map[string]any{"type": "string", "minLength": 1},
			"dueInHours": map[string]any{"type": "number", "minimum": 0},
		},
		"required": []any{"subject", "dueInHours"},
	},
	models.ActionScheduleAppointment: {
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{"type": "string", "minLength": 1},
			"startsAt": map[string]any{"type": "string", "format": "date-time"},
		},
		"required": []any{"location", "startsAt"},
	},
	models.ActionWebhook: {
		"type": "object",
		"properties": map[string]any{
			"url":     map[string]any{"type": "string", "format": "uri"},
			"method":  map[string]any{"type": "string", "enum": []any{"GET", "POST", "PUT", "PATCH", "DELETE"}},
			"headers": map[string]any{"type": "object"},
			"body":    map[string]any{"type": "string"},
		},
		"required": []any{"url", "method"},
	},
	models.ActionAPICall: {
		"type": "object",
		"properties": map[string]any{
			"endpoint": map[string]any{"type": "string", "minLength": 1},
			"method":   map[string]any{"type": "string", "enum": []any{"GET", "POST", "PUT", "PATCH", "DELETE"}},
			"payload":  map[string]any{"type": "object"},
		},
		"required": []any{"endpoint", "method"},
	},
	models.ActionExportData: {
		"type": "object",
		"properties": map[string]any{
			"format":      map[string]any{"type": "string", "enum": []any{"csv", "json", "pdf"}},
			"destination": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []any{"format", "destination"},
	},
}

// Validate checks the raw payload and returns the typed action config.
func (f *ActionForm) Validate(payload map[string]any) (*models.ActionConfig, error) {
	if err := validateSchema(actionSchema, payload); err != nil {
		return nil, err
	}

	var cfg models.ActionConfig
	if err := decode(payload, &cfg); err != nil {
		return nil, err
	}

	if !f.registry.IsValidActionType(cfg.Type) {
		return nil, fieldError("action_type", fmt.Sprintf("%q is not a known action type", cfg.Type))
	}

	schema, ok := actionParamSchemas[cfg.Type]
	if !ok {
		return nil, fieldError("action_type", fmt.Sprintf("no configuration schema for action type %q", cfg.Type))
	}

	params := cfg.Params
	if params == nil {
		params = map[string]any{}
	}

	if err := validateSchema(schema, params); err != nil {
		return nil, err
	}

	cfg.Params = params

	return &cfg, nil
}

// Submit validates the payload and writes the config into the graph,
// marking the node configured.
func (f *ActionForm) Submit(g *graph.Graph, nodeID string, payload map[string]any) error {
	if _, err := g.Node(nodeID); err != nil {
		return err
	}

	cfg, err := f.Validate(payload)
	if err != nil {
		return err
	}

	return g.UpdateNodeConfig(nodeID, models.NodeConfig{Action: cfg}, true)
}
