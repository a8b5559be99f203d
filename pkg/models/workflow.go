package models

import "time"

// Workflow is the persisted, named unit of automation: a node/edge graph
// with draft and activation lifecycle state.
type Workflow struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"           validate:"required,min=3"`
	Description   string         `json:"description,omitempty"`
	ModuleContext ModuleContext  `json:"module_context" validate:"required,oneof=broker carrier shipper"`
	IsActive      bool           `json:"is_active"`
	IsDraft       bool           `json:"is_draft"`
	Version       int            `json:"version"`
	CreatedBy     string         `json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	BusinessHours *BusinessHours `json:"business_hours,omitempty"`
	Nodes         []*Node        `json:"nodes"`
	Edges         []*Edge        `json:"edges"`
}

// Hours returns the workflow's business-hours window, falling back to the
// default when none is configured.
func (w *Workflow) Hours() BusinessHours {
	if w.BusinessHours != nil {
		return *w.BusinessHours
	}

	return DefaultBusinessHours()
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// TriggerNodes returns the workflow's trigger nodes in graph order.
func (w *Workflow) TriggerNodes() []*Node {
	var triggers []*Node

	for _, n := range w.Nodes {
		if n.Kind == KindTrigger {
			triggers = append(triggers, n)
		}
	}

	return triggers
}

// OutgoingEdges returns the edges leaving nodeID in insertion order.
func (w *Workflow) OutgoingEdges(nodeID string) []*Edge {
	var out []*Edge

	for _, e := range w.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}

	return out
}

// WorkflowTemplate is an immutable library-provided seed graph. It carries
// no activation lifecycle; instantiation copies it into a fresh draft with
// new node and edge ids.
type WorkflowTemplate struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	ModuleContext ModuleContext `json:"module_context"`
	Nodes         []*Node       `json:"nodes"`
	Edges         []*Edge       `json:"edges"`
}
