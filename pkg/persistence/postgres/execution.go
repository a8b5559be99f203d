package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/persistence"
)

type ExecutionRepository struct {
	db *sql.DB
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM executions WHERE workflow_id = $1 ORDER BY started_at DESC`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list executions for workflow %s: %w", workflowID, err)
	}
	defer rows.Close()

	executions := []*models.Execution{}

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("list executions for workflow %s: %w", workflowID, err)
		}

		var execution models.Execution
		if err := json.Unmarshal(data, &execution); err != nil {
			return nil, fmt.Errorf("list executions for workflow %s: %w", workflowID, err)
		}

		executions = append(executions, &execution)
	}

	return executions, rows.Err()
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	var data []byte

	err := r.db.QueryRowContext(ctx, `SELECT data FROM executions WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("execution %s: %w", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("get execution %s: %w", id, err)
	}

	var execution models.Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("get execution %s: %w", id, err)
	}

	return &execution, nil
}

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("save execution %s: %w", execution.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO executions (id, workflow_id, status, data, started_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			data   = EXCLUDED.data`,
		execution.ID, execution.WorkflowID, string(execution.Status), data, execution.StartedAt)
	if err != nil {
		return fmt.Errorf("save execution %s: %w", execution.ID, err)
	}

	return nil
}
