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

type WorkflowRepository struct {
	root string
	mu   sync.RWMutex
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (r *WorkflowRepository) path(id string) string {
	return filepath.Join(r.root, "workflow_"+id+".json")
}

func (r *WorkflowRepository) List(_ context.Context, opts persistence.ListWorkflowsOptions) ([]*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read workflow directory: %w", err)
	}

	var workflows []*models.Workflow

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "workflow_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		workflow, err := r.read(filepath.Join(r.root, name))
		if err != nil {
			return nil, err
		}

		if opts.Module != "" && workflow.ModuleContext != opts.Module {
			continue
		}

		if opts.OnlyLive && (!workflow.IsActive || workflow.IsDraft) {
			continue
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflow, err := r.read(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, err
	}

	return workflow, nil
}

func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.path(workflow.ID)
	if err := ensureDir(path); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path(id)); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

func (r *WorkflowRepository) read(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is repository-owned
	if err != nil {
		return nil, err
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &workflow, nil
}
