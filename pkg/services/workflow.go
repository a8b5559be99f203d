package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/persistence"
	"github.com/loadsmith/cargoflow/pkg/templates"
	"github.com/loadsmith/cargoflow/pkg/validation"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

type Workflow struct {
	persistence persistence.Persistence
	library     *templates.Library
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persist persistence.Persistence, library *templates.Library) *Workflow {
	return &Workflow{
		persistence: persist,
		library:     library,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := w.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves workflows, optionally filtered by module context.
func (w *Workflow) List(ctx context.Context, module models.ModuleContext, onlyLive bool) ([]*models.Workflow, error) {
	if module != "" && !module.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModule, module)
	}

	workflows, err := w.persistence.WorkflowRepository().List(ctx, persistence.ListWorkflowsOptions{
		Module:   module,
		OnlyLive: onlyLive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a single workflow.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// Create persists a new draft workflow. The caller supplies name, module and
// graph content; lifecycle fields are owned here.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.Name == "" {
		return nil, ErrNameRequired
	}

	if !workflow.ModuleContext.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModule, workflow.ModuleContext)
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.IsActive = false
	workflow.IsDraft = true
	workflow.Version = 1
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if workflow.Nodes == nil {
		workflow.Nodes = []*models.Node{}
	}

	if workflow.Edges == nil {
		workflow.Edges = []*models.Edge{}
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update replaces a workflow's editable content and bumps its version.
// Lifecycle fields (active, draft, created_at) are preserved from the
// stored copy.
func (w *Workflow) Update(ctx context.Context, id string, updated *models.Workflow) (*models.Workflow, error) {
	if updated == nil {
		return nil, ErrWorkflowNil
	}

	if updated.Name == "" {
		return nil, ErrNameRequired
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = updated.Name
	existing.Description = updated.Description
	existing.Nodes = updated.Nodes
	existing.Edges = updated.Edges
	existing.BusinessHours = updated.BusinessHours
	existing.Version++
	existing.UpdatedAt = time.Now().UTC()

	if existing.Nodes == nil {
		existing.Nodes = []*models.Node{}
	}

	if existing.Edges == nil {
		existing.Edges = []*models.Edge{}
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update workflow %s: %w", id, err)
	}

	return existing, nil
}

// Delete removes a workflow.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.persistence.WorkflowRepository().Delete(ctx, id)
}

// Validate runs the aggregate validation rules against a stored workflow.
func (w *Workflow) Validate(ctx context.Context, id string) (*validation.Result, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := validation.Validate(workflow.Nodes)

	return &result, nil
}

// Activate makes a workflow live. Activation is refused while validation
// reports errors; an already active workflow is a conflict.
func (w *Workflow) Activate(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.IsActive && !workflow.IsDraft {
		return nil, fmt.Errorf("workflow %s: %w", id, ErrAlreadyActive)
	}

	result := validation.Validate(workflow.Nodes)
	if !result.IsValid {
		return nil, &ActivationError{Messages: result.Errors}
	}

	workflow.IsActive = true
	workflow.IsDraft = false
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to activate workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Deactivate takes a workflow out of the live set. The engine cancels its
// in-flight executions before their next node visit; visits already made
// stand.
func (w *Workflow) Deactivate(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !workflow.IsActive {
		return nil, fmt.Errorf("workflow %s: %w", id, ErrAlreadyInactive)
	}

	workflow.IsActive = false
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to deactivate workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Duplicate copies a workflow into a fresh draft. Node ids are globally
// unique already, so the copy keeps them; only identity and lifecycle
// fields are reset.
func (w *Workflow) Duplicate(ctx context.Context, id string) (*models.Workflow, error) {
	source, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copied := *source
	copied.ID = uuid.New().String()
	copied.Name = source.Name + " (copy)"
	copied.IsActive = false
	copied.IsDraft = true
	copied.Version = 1
	copied.CreatedAt = now
	copied.UpdatedAt = now

	if err := w.persistence.WorkflowRepository().Save(ctx, &copied); err != nil {
		return nil, fmt.Errorf("failed to duplicate workflow %s: %w", id, err)
	}

	return &copied, nil
}

// Instantiate creates a draft workflow from a library template.
func (w *Workflow) Instantiate(ctx context.Context, templateID, createdBy string) (*models.Workflow, error) {
	workflow, err := w.library.Instantiate(templateID)
	if err != nil {
		return nil, err
	}

	workflow.CreatedBy = createdBy

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to persist workflow from template %s: %w", templateID, err)
	}

	return workflow, nil
}
