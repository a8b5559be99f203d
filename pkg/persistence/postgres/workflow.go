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

type WorkflowRepository struct {
	db *sql.DB
}

func (r *WorkflowRepository) List(ctx context.Context, opts persistence.ListWorkflowsOptions) ([]*models.Workflow, error) {
	query := `SELECT data FROM workflows WHERE 1=1`
	args := []any{}

	if opts.Module != "" {
		args = append(args, string(opts.Module))
		query += fmt.Sprintf(" AND module_context = $%d", len(args))
	}

	if opts.OnlyLive {
		query += " AND is_active = TRUE AND is_draft = FALSE"
	}

	query += " ORDER BY updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewWorkflowError("list", "", err)
	}
	defer rows.Close()

	workflows := []*models.Workflow{}

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, persistence.NewWorkflowError("list", "", err)
		}

		var workflow models.Workflow
		if err := json.Unmarshal(data, &workflow); err != nil {
			return nil, persistence.NewWorkflowError("list", "", err)
		}

		workflows = append(workflows, &workflow)
	}

	return workflows, rows.Err()
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	var data []byte

	err := r.db.QueryRowContext(ctx, `SELECT data FROM workflows WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewWorkflowError("get", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewWorkflowError("get", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("get", id, err)
	}

	return &workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("save", workflow.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, module_context, is_active, is_draft, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			module_context = EXCLUDED.module_context,
			is_active      = EXCLUDED.is_active,
			is_draft       = EXCLUDED.is_draft,
			data           = EXCLUDED.data,
			updated_at     = EXCLUDED.updated_at`,
		workflow.ID, string(workflow.ModuleContext), workflow.IsActive, workflow.IsDraft,
		data, workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return persistence.NewWorkflowError("save", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return persistence.NewWorkflowError("delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}
