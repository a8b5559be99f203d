package models

import "strings"

// NodeKind is the structural role of a node in the automation graph.
// It is fixed at creation and never changes.
type NodeKind string

const (
	KindTrigger   NodeKind = "trigger"
	KindCondition NodeKind = "condition"
	KindAction    NodeKind = "action"
	KindDelay     NodeKind = "delay"
)

// AllKinds lists the node kinds in palette order.
var AllKinds = []NodeKind{KindTrigger, KindCondition, KindAction, KindDelay}

// IsValid reports whether the kind is one of the four node kinds.
func (k NodeKind) IsValid() bool {
	switch k {
	case KindTrigger, KindCondition, KindAction, KindDelay:
		return true
	default:
		return false
	}
}

// Position is the node's canvas coordinate. Presentation only; it has no
// bearing on execution semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a typed vertex in an automation graph.
type Node struct {
	ID            string        `json:"id"             validate:"required"`
	Kind          NodeKind      `json:"kind"           validate:"required,oneof=trigger condition action delay"`
	Position      Position      `json:"position"`
	Label         string        `json:"label"          validate:"required,min=1"`
	Description   string        `json:"description,omitempty"`
	ModuleContext ModuleContext `json:"module_context" validate:"required,oneof=broker carrier shipper"`
	IsConfigured  bool          `json:"is_configured"`
	Config        NodeConfig    `json:"config"`
}

// Condition nodes expose two named outputs; every other kind has a single
// unnamed output.
const (
	HandleTrue  = "true"
	HandleFalse = "false"
)

// Edge is a directed connection between two nodes, optionally qualified by
// a source handle (condition true/false branches).
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
}

// EdgeID derives the deterministic edge identifier for a connection. Two
// connections between the same handles collide by construction, which is
// what makes duplicate edges impossible to represent.
func EdgeID(source, target, sourceHandle string) string {
	parts := []string{"edge", source, target}
	if sourceHandle != "" {
		parts = append(parts, sourceHandle)
	}

	return strings.Join(parts, "-")
}
