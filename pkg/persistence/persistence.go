// Package persistence abstracts storage for workflows and executions.
package persistence

import (
	"context"

	"github.com/loadsmith/cargoflow/pkg/models"
)

// ListWorkflowsOptions filters a workflow listing.
type ListWorkflowsOptions struct {
	Module   models.ModuleContext
	OnlyLive bool // active, non-draft workflows only
}

type WorkflowRepository interface {
	List(ctx context.Context, opts ListWorkflowsOptions) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

type ExecutionRepository interface {
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	Save(ctx context.Context, execution *models.Execution) error
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
