package templates

import "github.com/loadsmith/cargoflow/pkg/models"

// Seed node ids are local to each template; instantiation always remaps
// them, so short stable names keep the seed data readable.
func seedTemplates() []*models.WorkflowTemplate {
	return []*models.WorkflowTemplate{
		podReminder(),
		hosAlert(),
		inventoryThreshold(),
	}
}

// podReminder: when a load is delivered, wait 24 business-agnostic hours,
// and if the proof-of-delivery document is still missing, nudge the carrier.
func podReminder() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:            "broker-pod-reminder",
		Name:          "POD Upload Reminder",
		Description:   "Remind the carrier to upload the proof of delivery 24h after a load is delivered.",
		ModuleContext: models.ModuleBroker,
		Nodes: []*models.Node{
			{
				ID: "t1", Kind: models.KindTrigger, Label: "Load Delivered",
				Position: models.Position{X: 80, Y: 120}, ModuleContext: models.ModuleBroker, IsConfigured: true,
				Config: models.NodeConfig{Trigger: &models.TriggerConfig{
					Type:    models.TriggerLoadStatusChanged,
					Filters: map[string]any{"statusFilter": "delivered"},
				}},
			},
			{
				ID: "d1", Kind: models.KindDelay, Label: "Wait 24 Hours",
				Position: models.Position{X: 320, Y: 120}, ModuleContext: models.ModuleBroker, IsConfigured: true,
				Config: models.NodeConfig{Delay: &models.DelayConfig{
					Type: models.DelayFixed, Amount: 24, Unit: models.UnitHours,
				}},
			},
			{
				ID: "c1", Kind: models.KindCondition, Label: "POD Missing?",
				Position: models.Position{X: 560, Y: 120}, ModuleContext: models.ModuleBroker, IsConfigured: true,
				Config: models.NodeConfig{Condition: &models.ConditionConfig{
					LogicalOperator: models.LogicalAnd,
					Rules: []models.ConditionRule{
						{Field: "load.podDocumentId", Operator: models.OpIsEmpty},
					},
				}},
			},
			{
				ID: "a1", Kind: models.KindAction, Label: "Email POD Reminder",
				Position: models.Position{X: 800, Y: 60}, ModuleContext: models.ModuleBroker, IsConfigured: true,
				Config: models.NodeConfig{Action: &models.ActionConfig{
					Type: models.ActionSendEmail,
					Params: map[string]any{
						"to":      "{{.event.carrier.email}}",
						"subject": "POD needed for load {{.event.load.reference}}",
						"body":    "Please upload the proof of delivery for load {{.event.load.reference}}.",
					},
				}},
			},
		},
		Edges: []*models.Edge{
			{ID: models.EdgeID("t1", "d1", ""), Source: "t1", Target: "d1"},
			{ID: models.EdgeID("d1", "c1", ""), Source: "d1", Target: "c1"},
			{ID: models.EdgeID("c1", "a1", models.HandleTrue), Source: "c1", Target: "a1", SourceHandle: models.HandleTrue},
		},
	}
}

// hosAlert: alert dispatch when a driver runs low on hours of service.
func hosAlert() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:            "carrier-hos-alert",
		Name:          "Driver HOS Alert",
		Description:   "Create a critical alert and a dispatch task when a driver is under 2 hours of service.",
		ModuleContext: models.ModuleCarrier,
		Nodes: []*models.Node{
			{
				ID: "t1", Kind: models.KindTrigger, Label: "HOS Below Threshold",
				Position: models.Position{X: 80, Y: 120}, ModuleContext: models.ModuleCarrier, IsConfigured: true,
				Config: models.NodeConfig{Trigger: &models.TriggerConfig{
					Type:    models.TriggerDriverHOSAlert,
					Filters: map[string]any{"hoursRemaining": 2},
				}},
			},
			{
				ID: "a1", Kind: models.KindAction, Label: "Critical Alert",
				Position: models.Position{X: 320, Y: 60}, ModuleContext: models.ModuleCarrier, IsConfigured: true,
				Config: models.NodeConfig{Action: &models.ActionConfig{
					Type: models.ActionCreateAlert,
					Params: map[string]any{
						"severity": "critical",
						"message":  "Driver {{.event.driver.name}} has under 2 hours of service remaining.",
					},
				}},
			},
			{
				ID: "a2", Kind: models.KindAction, Label: "Reassignment Task",
				Position: models.Position{X: 320, Y: 200}, ModuleContext: models.ModuleCarrier, IsConfigured: true,
				Config: models.NodeConfig{Action: &models.ActionConfig{
					Type: models.ActionCreateTask,
					Params: map[string]any{
						"title":      "Reassign load for driver {{.event.driver.name}}",
						"assignee":   "dispatch",
						"dueInHours": 1,
					},
				}},
			},
		},
		Edges: []*models.Edge{
			{ID: models.EdgeID("t1", "a1", ""), Source: "t1", Target: "a1"},
			{ID: models.EdgeID("a1", "a2", ""), Source: "a1", Target: "a2"},
		},
	}
}

// inventoryThreshold: shipper restock flow with a branch on supplier rating.
func inventoryThreshold() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:            "shipper-inventory-threshold",
		Name:          "Inventory Restock",
		Description:   "When inventory drops below threshold, create a restock task or escalate by email.",
		ModuleContext: models.ModuleShipper,
		Nodes: []*models.Node{
			{
				ID: "t1", Kind: models.KindTrigger, Label: "Inventory Low",
				Position: models.Position{X: 80, Y: 120}, ModuleContext: models.ModuleShipper, IsConfigured: true,
				Config: models.NodeConfig{Trigger: &models.TriggerConfig{
					Type:    models.TriggerInventoryLow,
					Filters: map[string]any{"thresholdQuantity": 50},
				}},
			},
			{
				ID: "c1", Kind: models.KindCondition, Label: "Preferred Supplier?",
				Position: models.Position{X: 320, Y: 120}, ModuleContext: models.ModuleShipper, IsConfigured: true,
				Config: models.NodeConfig{Condition: &models.ConditionConfig{
					LogicalOperator: models.LogicalAnd,
					Rules: []models.ConditionRule{
						{Field: "supplier.rating", Operator: models.OpGreaterThanOrEquals, Value: 4},
					},
				}},
			},
			{
				ID: "a1", Kind: models.KindAction, Label: "Restock Task",
				Position: models.Position{X: 560, Y: 60}, ModuleContext: models.ModuleShipper, IsConfigured: true,
				Config: models.NodeConfig{Action: &models.ActionConfig{
					Type: models.ActionCreateTask,
					Params: map[string]any{
						"title":      "Restock {{.event.item.sku}}",
						"dueInHours": 24,
					},
				}},
			},
			{
				ID: "a2", Kind: models.KindAction, Label: "Escalate",
				Position: models.Position{X: 560, Y: 200}, ModuleContext: models.ModuleShipper, IsConfigured: true,
				Config: models.NodeConfig{Action: &models.ActionConfig{
					Type: models.ActionSendEmail,
					Params: map[string]any{
						"to":      "procurement@example.com",
						"subject": "Low stock without preferred supplier: {{.event.item.sku}}",
						"body":    "Inventory for {{.event.item.sku}} is low and no preferred supplier is available.",
					},
				}},
			},
		},
		Edges: []*models.Edge{
			{ID: models.EdgeID("t1", "c1", ""), Source: "t1", Target: "c1"},
			{ID: models.EdgeID("c1", "a1", models.HandleTrue), Source: "c1", Target: "a1", SourceHandle: models.HandleTrue},
			{ID: models.EdgeID("c1", "a2", models.HandleFalse), Source: "c1", Target: "a2", SourceHandle: models.HandleFalse},
		},
	}
}
