package forms

import (
	"fmt"
	"time"

	"github.com/loadsmith/cargoflow/pkg/graph"
	"github.com/loadsmith/cargoflow/pkg/models"
)

// DelayForm edits delay node configuration. The required fields depend on
// the delay type: fixed and business_hours need amount+unit, until_date
// needs an RFC 3339 timestamp.
type DelayForm struct{}

func NewDelayForm() *DelayForm {
	return &DelayForm{}
}

var delaySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"delay_type": map[string]any{
			"type": "string",
			"enum": []any{"fixed", "until_date", "business_hours"},
		},
		"delay_amount": map[string]any{"type": "number"},
		"delay_unit": map[string]any{
			"type": "string",
			"enum": []any{"minutes", "hours", "days"},
		},
		"until_date": map[string]any{"type": "string", "format": "date-time"},
	},
	"required":             []any{"delay_type"},
	"additionalProperties": false,
}

// Validate checks the raw payload and returns the typed delay config.
func (f *DelayForm) Validate(payload map[string]any) (*models.DelayConfig, error) {
	if err := validateSchema(delaySchema, payload); err != nil {
		return nil, err
	}

	var cfg models.DelayConfig
	if err := decode(payload, &cfg); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case models.DelayFixed, models.DelayBusinessHours:
		if cfg.Amount <= 0 {
			return nil, fieldError("delay_amount", "must be a positive number")
		}

		if cfg.Unit == "" {
			return nil, fieldError("delay_unit", "is required for "+string(cfg.Type)+" delays")
		}

		cfg.UntilDate = nil
	case models.DelayUntilDate:
		raw, ok := payload["until_date"].(string)
		if !ok || raw == "" {
			return nil, fieldError("until_date", "is required for until_date delays")
		}

		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fieldError("until_date", "must be an RFC 3339 timestamp")
		}

		cfg.UntilDate = &until
		cfg.Amount = 0
		cfg.Unit = ""
	default:
		return nil, fieldError("delay_type", fmt.Sprintf("unknown delay type %q", cfg.Type))
	}

	return &cfg, nil
}

// Submit validates the payload and writes the config into the graph,
// marking the node configured.
func (f *DelayForm) Submit(g *graph.Graph, nodeID string, payload map[string]any) error {
	if _, err := g.Node(nodeID); err != nil {
		return err
	}

	cfg, err := f.Validate(payload)
	if err != nil {
		return err
	}

	return g.UpdateNodeConfig(nodeID, models.NodeConfig{Delay: cfg}, true)
}
