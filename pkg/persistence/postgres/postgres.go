// Package postgres implements persistence on PostgreSQL. Workflows and
// executions are stored as whole JSONB documents keyed by id, with the
// columns needed for filtering lifted out alongside.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
	"github.com/loadsmith/cargoflow/pkg/persistence"
)

type Persistence struct {
	db            *sql.DB
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence opens a connection pool and runs migrations.
func NewPersistence(ctx context.Context, databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		return nil, err
	}

	return &Persistence{
		db:            db,
		workflowRepo:  &WorkflowRepository{db: db},
		executionRepo: &ExecutionRepository{db: db},
	}, nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) Close(_ context.Context) error {
	return p.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			id             TEXT PRIMARY KEY,
			module_context TEXT NOT NULL,
			is_active      BOOLEAN NOT NULL DEFAULT FALSE,
			is_draft       BOOLEAN NOT NULL DEFAULT TRUE,
			data           JSONB NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workflows_module ON workflows (module_context)`,
		`CREATE TABLE IF NOT EXISTS executions (
			id          TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			status      TEXT NOT NULL,
			data        JSONB NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_workflow ON executions (workflow_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
