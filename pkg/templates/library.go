// Package templates provides the read-only catalog of pre-built workflow
// graphs used to bootstrap new automations. Templates are never mutated;
// instantiation copies them into a fresh draft with new node and edge ids
// so two instantiations can never collide.
package templates

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loadsmith/cargoflow/pkg/models"
)

// ErrTemplateNotFound indicates an unknown template id.
var ErrTemplateNotFound = fmt.Errorf("template not found")

// IsTemplateNotFound checks whether err indicates a missing template.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

type Library struct {
	templates []*models.WorkflowTemplate
	byID      map[string]*models.WorkflowTemplate
}

// NewLibrary builds the built-in catalog.
func NewLibrary() *Library {
	lib := &Library{byID: make(map[string]*models.WorkflowTemplate)}
	for _, t := range seedTemplates() {
		lib.templates = append(lib.templates, t)
		lib.byID[t.ID] = t
	}

	return lib
}

// All returns the full catalog.
func (l *Library) All() []*models.WorkflowTemplate {
	return append([]*models.WorkflowTemplate(nil), l.templates...)
}

// ForModule returns the templates seeded for one module context.
func (l *Library) ForModule(module models.ModuleContext) []*models.WorkflowTemplate {
	var out []*models.WorkflowTemplate

	for _, t := range l.templates {
		if t.ModuleContext == module {
			out = append(out, t)
		}
	}

	return out
}

// Get returns one template by id.
func (l *Library) Get(id string) (*models.WorkflowTemplate, error) {
	t, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrTemplateNotFound)
	}

	return t, nil
}

// Instantiate copies a template into a workflow-shaped draft. Every node
// receives a fresh id and every edge is remapped to the new node ids with
// its deterministic id recomputed.
func (l *Library) Instantiate(templateID string) (*models.Workflow, error) {
	tpl, err := l.Get(templateID)
	if err != nil {
		return nil, err
	}

	idMap := make(map[string]string, len(tpl.Nodes))
	nodes := make([]*models.Node, len(tpl.Nodes))

	for i, n := range tpl.Nodes {
		copied := *n
		copied.ID = "node-" + uuid.New().String()
		idMap[n.ID] = copied.ID
		nodes[i] = &copied
	}

	edges := make([]*models.Edge, len(tpl.Edges))

	for i, e := range tpl.Edges {
		source, ok := idMap[e.Source]
		if !ok {
			return nil, fmt.Errorf("template %s: edge %s references unknown source %s", templateID, e.ID, e.Source)
		}

		target, ok := idMap[e.Target]
		if !ok {
			return nil, fmt.Errorf("template %s: edge %s references unknown target %s", templateID, e.ID, e.Target)
		}

		edges[i] = &models.Edge{
			ID:           models.EdgeID(source, target, e.SourceHandle),
			Source:       source,
			Target:       target,
			SourceHandle: e.SourceHandle,
		}
	}

	now := time.Now().UTC()

	return &models.Workflow{
		ID:            uuid.New().String(),
		Name:          tpl.Name,
		Description:   tpl.Description,
		ModuleContext: tpl.ModuleContext,
		IsActive:      false,
		IsDraft:       true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Nodes:         nodes,
		Edges:         edges,
	}, nil
}
