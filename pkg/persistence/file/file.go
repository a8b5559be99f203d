// Package file implements persistence on the local file system. Workflows
// are stored as whole JSON documents named workflow_<id>.json, matching the
// per-document keying of the original per-browser storage; executions live
// alongside as execution_<id>.json.
package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/loadsmith/cargoflow/pkg/persistence"
)

type Persistence struct {
	root          string
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence creates a file-backed persistence rooted at the given
// directory. Accepts a file:// URL or a plain path.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		workflowRepo:  NewWorkflowRepository(cleanRoot),
		executionRepo: NewExecutionRepository(cleanRoot),
	}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o750)
}
