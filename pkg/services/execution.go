package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/loadsmith/cargoflow/pkg/execution"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/persistence"
)

// ErrExecutionNotFound is returned when an execution is not found.
var ErrExecutionNotFound = persistence.ErrExecutionNotFound

type Execution struct {
	persistence persistence.Persistence
	engine      *execution.Engine
}

// NewExecution creates a new execution service. The engine may be nil in
// read-only deployments (the API without a worker); Cancel then degrades to
// a direct status write without timer cleanup.
func NewExecution(persist persistence.Persistence, engine *execution.Engine) *Execution {
	return &Execution{
		persistence: persist,
		engine:      engine,
	}
}

// ListByWorkflow retrieves the execution history of one workflow.
func (s *Execution) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	if _, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return nil, err
	}

	executions, err := s.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions for workflow %s: %w", workflowID, err)
	}

	return executions, nil
}

// FetchByID retrieves a single execution.
func (s *Execution) FetchByID(ctx context.Context, id string) (*models.Execution, error) {
	return s.persistence.ExecutionRepository().GetByID(ctx, id)
}

// Cancel stops a running or paused execution.
func (s *Execution) Cancel(ctx context.Context, id string) error {
	if s.engine != nil {
		err := s.engine.Cancel(ctx, id)
		if errors.Is(err, execution.ErrExecutionFinished) {
			return fmt.Errorf("execution %s: %w", id, ErrExecutionFinished)
		}

		return err
	}

	stored, err := s.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if stored.Status.Terminal() {
		return fmt.Errorf("execution %s: %w", id, ErrExecutionFinished)
	}

	stored.Finish(models.ExecutionCancelled)

	if err := s.persistence.ExecutionRepository().Save(ctx, stored); err != nil {
		return fmt.Errorf("failed to cancel execution %s: %w", id, err)
	}

	return nil
}
