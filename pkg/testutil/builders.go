// Package testutil provides test data builders shared across packages.
package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/loadsmith/cargoflow/pkg/models"
)

// CreateTestNode creates a configured test node with default values that
// can be overridden.
func CreateTestNode(kind models.NodeKind, overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:            "node-" + uuid.New().String(),
		Kind:          kind,
		Label:         "Test " + string(kind),
		ModuleContext: models.ModuleBroker,
		IsConfigured:  true,
		Position:      models.Position{X: 100, Y: 200},
	}

	switch kind {
	case models.KindTrigger:
		node.Config = models.NodeConfig{Trigger: &models.TriggerConfig{
			Type:    models.TriggerLoadStatusChanged,
			Filters: map[string]any{},
		}}
	case models.KindCondition:
		node.Config = models.NodeConfig{Condition: &models.ConditionConfig{
			Rules:           []models.ConditionRule{},
			LogicalOperator: models.LogicalAnd,
		}}
	case models.KindAction:
		node.Config = models.NodeConfig{Action: &models.ActionConfig{
			Type:   models.ActionSendNotification,
			Params: map[string]any{"message": "test"},
		}}
	case models.KindDelay:
		node.Config = models.NodeConfig{Delay: &models.DelayConfig{
			Type:   models.DelayFixed,
			Amount: 1,
			Unit:   models.UnitHours,
		}}
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithModule sets the node's module context.
func WithModule(module models.ModuleContext) func(*models.Node) {
	return func(n *models.Node) {
		n.ModuleContext = module
	}
}

// WithLabel sets the node label.
func WithLabel(label string) func(*models.Node) {
	return func(n *models.Node) {
		n.Label = label
	}
}

// WithConfig replaces the node configuration.
func WithConfig(config models.NodeConfig) func(*models.Node) {
	return func(n *models.Node) {
		n.Config = config
	}
}

// Unconfigured marks the node as not yet configured.
func Unconfigured() func(*models.Node) {
	return func(n *models.Node) {
		n.IsConfigured = false
	}
}

// CreateTestWorkflow builds a minimal valid live workflow: one trigger node
// wired to one action node.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	trigger := CreateTestNode(models.KindTrigger)
	action := CreateTestNode(models.KindAction)

	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:            uuid.New().String(),
		Name:          "Test Workflow",
		ModuleContext: models.ModuleBroker,
		IsActive:      true,
		IsDraft:       false,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Nodes:         []*models.Node{trigger, action},
		Edges: []*models.Edge{{
			ID:     models.EdgeID(trigger.ID, action.ID, ""),
			Source: trigger.ID,
			Target: action.ID,
		}},
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// AsDraft marks the workflow as an inactive draft.
func AsDraft() func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.IsActive = false
		w.IsDraft = true
	}
}

// InModule sets the workflow's module context and propagates it to nodes.
func InModule(module models.ModuleContext) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ModuleContext = module
		for _, node := range w.Nodes {
			node.ModuleContext = module
		}
	}
}
