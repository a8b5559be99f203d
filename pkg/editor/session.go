// Package editor implements the editing session that coordinates all graph
// mutations: selection and panel state, form submission, and the
// save/load/clear lifecycle. One Session serves one open editor; sessions
// are constructed values and never shared process-wide.
package editor

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loadsmith/cargoflow/pkg/forms"
	"github.com/loadsmith/cargoflow/pkg/graph"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/registry"
	"github.com/loadsmith/cargoflow/pkg/validation"
)

// ValidationFailedError is returned by Save when the structural rules
// reject the graph. The full rule list is attached for display.
type ValidationFailedError struct {
	Result validation.Result
}

func (e *ValidationFailedError) Error() string {
	return "workflow validation failed: " + strings.Join(e.Result.Errors, "; ")
}

type Session struct {
	logger *slog.Logger
	graph  *graph.Graph
	module models.ModuleContext

	triggerForm   *forms.TriggerForm
	conditionForm *forms.ConditionForm
	actionForm    *forms.ActionForm
	delayForm     *forms.DelayForm

	selectedNodeID string
	panelOpen      bool
	current        *models.Workflow
}

// NewSession creates an editing session scoped to one module context.
func NewSession(logger *slog.Logger, reg *registry.Registry, module models.ModuleContext) *Session {
	return &Session{
		logger:        logger.With("module", "editor"),
		graph:         graph.New(reg, module),
		module:        module,
		triggerForm:   forms.NewTriggerForm(reg),
		conditionForm: forms.NewConditionForm(),
		actionForm:    forms.NewActionForm(reg),
		delayForm:     forms.NewDelayForm(),
	}
}

// Graph exposes the underlying graph for read access.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// SelectedNodeID returns the current selection, or "" when idle.
func (s *Session) SelectedNodeID() string {
	return s.selectedNodeID
}

// IsPanelOpen reports whether the configuration panel is open. The panel
// is open exactly when a node is selected.
func (s *Session) IsPanelOpen() bool {
	return s.panelOpen
}

// AddNode instantiates a node and makes it the selection.
func (s *Session) AddNode(kind models.NodeKind, pos models.Position) (*models.Node, error) {
	node, err := s.graph.AddNode(kind, pos)
	if err != nil {
		return nil, err
	}

	s.selectedNodeID = node.ID
	s.panelOpen = true

	return node, nil
}

// SelectNode moves the session to NodeSelected, or back to Idle when id
// is empty.
func (s *Session) SelectNode(id string) error {
	if id == "" {
		s.selectedNodeID = ""
		s.panelOpen = false

		return nil
	}

	if _, err := s.graph.Node(id); err != nil {
		return err
	}

	s.selectedNodeID = id
	s.panelOpen = true

	return nil
}

// DeleteNode removes a node, cascading to its edges. Deleting the selected
// node returns the session to Idle.
func (s *Session) DeleteNode(id string) error {
	if err := s.graph.DeleteNode(id); err != nil {
		return err
	}

	if s.selectedNodeID == id {
		s.selectedNodeID = ""
		s.panelOpen = false
	}

	return nil
}

// Connect delegates to the graph. A *graph.ConnectionError is an expected
// outcome for the caller to surface, not a fault.
func (s *Session) Connect(source, target, sourceHandle string) (*models.Edge, error) {
	return s.graph.Connect(source, target, sourceHandle)
}

// Disconnect removes a single edge.
func (s *Session) Disconnect(edgeID string) error {
	return s.graph.Disconnect(edgeID)
}

// SubmitNodeConfig routes a raw form payload to the form matching the
// node's kind. On success the node's config is replaced and it is marked
// configured; on schema failure the graph is untouched.
func (s *Session) SubmitNodeConfig(nodeID string, payload map[string]any) error {
	node, err := s.graph.Node(nodeID)
	if err != nil {
		return err
	}

	switch node.Kind {
	case models.KindTrigger:
		return s.triggerForm.Submit(s.graph, nodeID, payload)
	case models.KindCondition:
		return s.conditionForm.Submit(s.graph, nodeID, payload)
	case models.KindAction:
		return s.actionForm.Submit(s.graph, nodeID, payload)
	case models.KindDelay:
		return s.delayForm.Submit(s.graph, nodeID, payload)
	default:
		return fmt.Errorf("node %s has unknown kind %q", nodeID, node.Kind)
	}
}

// Validate runs the structural rules over the current graph snapshot.
func (s *Session) Validate() validation.Result {
	return validation.Validate(s.graph.Nodes())
}

// Save validates the graph and snapshots it into a fresh draft workflow.
// The in-progress graph is left untouched so editing can continue.
func (s *Session) Save(name, description string) (*models.Workflow, error) {
	result := s.Validate()
	if !result.IsValid {
		return nil, &ValidationFailedError{Result: result}
	}

	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:            uuid.New().String(),
		Name:          name,
		Description:   description,
		ModuleContext: s.module,
		IsActive:      false,
		IsDraft:       true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Nodes:         copyNodes(s.graph.Nodes()),
		Edges:         copyEdges(s.graph.Edges()),
	}

	s.current = workflow
	s.logger.Info("Saved workflow draft",
		"workflow_id", workflow.ID,
		"name", workflow.Name,
		"nodes", len(workflow.Nodes),
		"edges", len(workflow.Edges))

	return workflow, nil
}

// Load replaces the session contents wholesale from a persisted workflow
// and resets selection to Idle.
func (s *Session) Load(workflow *models.Workflow) {
	s.module = workflow.ModuleContext
	s.graph.Load(workflow.ModuleContext, copyNodes(workflow.Nodes), copyEdges(workflow.Edges))
	s.current = workflow
	s.selectedNodeID = ""
	s.panelOpen = false
}

// Clear empties the session and drops the current workflow reference.
func (s *Session) Clear() {
	s.graph.Clear()
	s.current = nil
	s.selectedNodeID = ""
	s.panelOpen = false
}

// Current returns the most recently saved or loaded workflow, or nil.
func (s *Session) Current() *models.Workflow {
	return s.current
}

func copyNodes(nodes []*models.Node) []*models.Node {
	out := make([]*models.Node, len(nodes))
	for i, n := range nodes {
		copied := *n
		out[i] = &copied
	}

	return out
}

func copyEdges(edges []*models.Edge) []*models.Edge {
	out := make([]*models.Edge, len(edges))
	for i, e := range edges {
		copied := *e
		out[i] = &copied
	}

	return out
}
