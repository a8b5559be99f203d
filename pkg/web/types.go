// Package web provides the REST API over workflow management and execution
// history.
package web

import "github.com/loadsmith/cargoflow/pkg/models"

// CreateWorkflowRequest represents the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name          string                `json:"name"                     validate:"required,min=3"`
	Description   string                `json:"description"`
	ModuleContext models.ModuleContext  `json:"module_context"           validate:"required,oneof=broker carrier shipper"`
	CreatedBy     string                `json:"created_by"`
	Nodes         []*models.Node        `json:"nodes,omitempty"`
	Edges         []*models.Edge        `json:"edges,omitempty"`
	BusinessHours *models.BusinessHours `json:"business_hours,omitempty"`
}

// UpdateWorkflowRequest represents the request body for replacing a
// workflow's editable content. Module context and lifecycle fields cannot
// be changed through updates.
type UpdateWorkflowRequest struct {
	Name          string                `json:"name"                     validate:"required,min=3"`
	Description   string                `json:"description"`
	Nodes         []*models.Node        `json:"nodes"`
	Edges         []*models.Edge        `json:"edges"`
	BusinessHours *models.BusinessHours `json:"business_hours,omitempty"`
}

// InstantiateTemplateRequest represents the request body for creating a
// workflow from a template.
type InstantiateTemplateRequest struct {
	CreatedBy string `json:"created_by"`
}

// NodeTypeResponse describes one node kind's palette metadata for a module.
type NodeTypeResponse struct {
	Kind         models.NodeKind `json:"kind"`
	Label        string          `json:"label"`
	Color        string          `json:"color"`
	Icon         string          `json:"icon"`
	TriggerTypes []TypeOption    `json:"trigger_types,omitempty"`
	ActionTypes  []TypeOption    `json:"action_types,omitempty"`
}

// TypeOption pairs a machine identifier with its display label.
type TypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
