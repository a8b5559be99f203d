package services_test

import (
	"context"
	"testing"

	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/persistence/file"
	"github.com/loadsmith/cargoflow/pkg/services"
	"github.com/loadsmith/cargoflow/pkg/templates"
	"github.com/loadsmith/cargoflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflowService(t *testing.T) (*services.Workflow, *file.Persistence) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())

	return services.NewWorkflow(persist, templates.NewLibrary()), persist
}

func TestWorkflow_CreateOwnsLifecycle(t *testing.T) {
	service, _ := newWorkflowService(t)

	created, err := service.Create(context.Background(), &models.Workflow{
		Name:          "Detention watch",
		ModuleContext: models.ModuleCarrier,
		IsActive:      true, // caller cannot smuggle in a live workflow
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.IsActive)
	assert.True(t, created.IsDraft)
	assert.Equal(t, 1, created.Version)
	assert.NotNil(t, created.Nodes)
	assert.NotNil(t, created.Edges)
}

func TestWorkflow_CreateRejections(t *testing.T) {
	service, _ := newWorkflowService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, nil)
	assert.ErrorIs(t, err, services.ErrWorkflowNil)

	_, err = service.Create(ctx, &models.Workflow{ModuleContext: models.ModuleBroker})
	assert.ErrorIs(t, err, services.ErrNameRequired)

	_, err = service.Create(ctx, &models.Workflow{Name: "No module", ModuleContext: "dispatch"})
	assert.ErrorIs(t, err, services.ErrInvalidModule)
	assert.True(t, services.IsValidationError(err))
}

func TestWorkflow_UpdatePreservesLifecycle(t *testing.T) {
	service, persist := newWorkflowService(t)
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, persist.WorkflowRepository().Save(ctx, workflow))

	updated, err := service.Update(ctx, workflow.ID, &models.Workflow{
		Name:  "New name",
		Nodes: workflow.Nodes,
		Edges: workflow.Edges,
	})
	require.NoError(t, err)

	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, workflow.Version+1, updated.Version)
	assert.True(t, updated.IsActive, "update must not deactivate a live workflow")
	assert.False(t, updated.IsDraft)
}

func TestWorkflow_ActivateRequiresValidGraph(t *testing.T) {
	service, persist := newWorkflowService(t)
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow(testutil.AsDraft())
	workflow.Nodes = workflow.Nodes[:1] // trigger only, no action
	require.NoError(t, persist.WorkflowRepository().Save(ctx, workflow))

	_, err := service.Activate(ctx, workflow.ID)
	require.Error(t, err)
	assert.True(t, services.IsActivationError(err))

	var activationErr *services.ActivationError
	require.ErrorAs(t, err, &activationErr)
	assert.NotEmpty(t, activationErr.Messages)
}

func TestWorkflow_ActivateDeactivateCycle(t *testing.T) {
	service, persist := newWorkflowService(t)
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow(testutil.AsDraft())
	require.NoError(t, persist.WorkflowRepository().Save(ctx, workflow))

	activated, err := service.Activate(ctx, workflow.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.False(t, activated.IsDraft)

	_, err = service.Activate(ctx, workflow.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyActive)
	assert.True(t, services.IsConflictError(err))

	deactivated, err := service.Deactivate(ctx, workflow.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = service.Deactivate(ctx, workflow.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyInactive)
}

func TestWorkflow_Duplicate(t *testing.T) {
	service, persist := newWorkflowService(t)
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, persist.WorkflowRepository().Save(ctx, workflow))

	duplicated, err := service.Duplicate(ctx, workflow.ID)
	require.NoError(t, err)

	assert.NotEqual(t, workflow.ID, duplicated.ID)
	assert.Equal(t, workflow.Name+" (copy)", duplicated.Name)
	assert.True(t, duplicated.IsDraft)
	assert.False(t, duplicated.IsActive)
	assert.Equal(t, 1, duplicated.Version)
	assert.Len(t, duplicated.Nodes, len(workflow.Nodes))

	// Both copies exist independently.
	_, err = persist.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	_, err = persist.WorkflowRepository().GetByID(ctx, duplicated.ID)
	require.NoError(t, err)
}

func TestWorkflow_Instantiate(t *testing.T) {
	service, persist := newWorkflowService(t)
	ctx := context.Background()

	workflow, err := service.Instantiate(ctx, "broker-pod-reminder", "user-9")
	require.NoError(t, err)

	assert.Equal(t, "user-9", workflow.CreatedBy)
	assert.True(t, workflow.IsDraft)

	stored, err := persist.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, stored.Name)
}
