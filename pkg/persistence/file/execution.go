package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/persistence"
)

type ExecutionRepository struct {
	root string
	mu   sync.RWMutex
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (r *ExecutionRepository) path(id string) string {
	return filepath.Join(r.root, "execution_"+id+".json")
}

func (r *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read execution directory: %w", err)
	}

	var executions []*models.Execution

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "execution_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		execution, err := r.read(filepath.Join(r.root, name))
		if err != nil {
			return nil, err
		}

		if workflowID != "" && execution.WorkflowID != workflowID {
			continue
		}

		executions = append(executions, execution)
	}

	return executions, nil
}

func (r *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	execution, err := r.read(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("execution %s: %w", id, persistence.ErrExecutionNotFound)
		}

		return nil, err
	}

	return execution, nil
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.path(execution.ID)
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("save execution %s: %w", execution.ID, err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("save execution %s: %w", execution.ID, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) read(path string) (*models.Execution, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is repository-owned
	if err != nil {
		return nil, err
	}

	var execution models.Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &execution, nil
}
