package execution

import (
	"log/slog"

	"github.com/loadsmith/cargoflow/pkg/events"
	"github.com/loadsmith/cargoflow/pkg/models"
)

// filterBinding ties a trigger filter key to the payload path it constrains
// and how the configured value relates to the payload value.
type filterBinding struct {
	path     string
	operator models.ConditionOperator
}

// filterBindings covers every filter key the trigger forms accept. A filter
// key absent from the node's configuration imposes no constraint.
var filterBindings = map[string]filterBinding{
	"statusFilter":      {path: "load.status", operator: models.OpEquals},
	"shipmentStatus":    {path: "shipment.status", operator: models.OpEquals},
	"documentType":      {path: "document.type", operator: models.OpEquals},
	"ratingThreshold":   {path: "carrier.rating", operator: models.OpGreaterThanOrEquals},
	"amountThreshold":   {path: "payment.amount", operator: models.OpGreaterThanOrEquals},
	"thresholdQuantity": {path: "inventory.quantity", operator: models.OpLessThanOrEquals},
	"hoursRemaining":    {path: "driver.hoursOfService", operator: models.OpLessThanOrEquals},
}

// TriggerMatch pairs a workflow with one of its trigger nodes that accepted
// the event. A workflow with several matching triggers yields several
// matches, each starting an independent execution.
type TriggerMatch struct {
	Workflow    *models.Workflow
	TriggerNode *models.Node
}

// Matcher finds the workflow triggers a domain event should fire.
type Matcher struct {
	logger *slog.Logger
}

func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{logger: logger.With("module", "trigger_matcher")}
}

// Match inspects every trigger node of every workflow. Workflows are assumed
// pre-filtered to active non-drafts in the event's module.
func (m *Matcher) Match(event *events.DomainEvent, workflows []*models.Workflow) []TriggerMatch {
	matches := []TriggerMatch{}

	for _, workflow := range workflows {
		for _, node := range workflow.TriggerNodes() {
			if m.matchTrigger(event, node) {
				matches = append(matches, TriggerMatch{Workflow: workflow, TriggerNode: node})
			}
		}
	}

	m.logger.Debug("Completed trigger matching",
		"event_type", event.EventType,
		"module", event.Module,
		"workflows_count", len(workflows),
		"matches_found", len(matches))

	return matches
}

func (m *Matcher) matchTrigger(event *events.DomainEvent, node *models.Node) bool {
	cfg := node.Config.Trigger
	if !node.IsConfigured || cfg == nil {
		return false
	}

	// Scheduled triggers are fired by the schedule runner, never by
	// domain events.
	if cfg.Type == models.TriggerScheduled {
		return false
	}

	if string(cfg.Type) != event.EventType {
		return false
	}

	for key, configured := range cfg.Filters {
		binding, known := filterBindings[key]
		if !known {
			continue
		}

		matched, err := EvaluateRule(models.ConditionRule{
			Field:    binding.path,
			Operator: binding.operator,
			Value:    configured,
		}, event.Payload)
		if err != nil || !matched {
			return false
		}
	}

	return true
}
