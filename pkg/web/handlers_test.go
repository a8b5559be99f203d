package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/persistence/file"
	"github.com/loadsmith/cargoflow/pkg/registry"
	"github.com/loadsmith/cargoflow/pkg/services"
	"github.com/loadsmith/cargoflow/pkg/templates"
	"github.com/loadsmith/cargoflow/pkg/testutil"
	"github.com/loadsmith/cargoflow/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	persist := file.NewPersistence(t.TempDir())
	library := templates.NewLibrary()

	workflowService := services.NewWorkflow(persist, library)
	executionService := services.NewExecution(persist, nil)

	handlers := web.NewAPIHandlers(
		workflowService,
		executionService,
		library,
		registry.NewRegistry(logger),
		validator.New(),
	)

	app := fiber.New()
	handlers.RegisterRoutes(app)

	return app, persist
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body io.Reader

	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestCreateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/workflows", map[string]any{
		"name":           "POD chase",
		"module_context": "broker",
		"created_by":     "user-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.Workflow
	decodeBody(t, resp, &created)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "POD chase", created.Name)
	assert.True(t, created.IsDraft)
	assert.False(t, created.IsActive)
	assert.Equal(t, 1, created.Version)
}

func TestCreateWorkflow_Invalid(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{name: "name too short", payload: map[string]any{"name": "ab", "module_context": "broker"}},
		{name: "unknown module", payload: map[string]any{"name": "Valid name", "module_context": "dispatch"}},
		{name: "missing module", payload: map[string]any{"name": "Valid name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/workflows", tt.payload))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetWorkflows_ModuleAndLiveFilters(t *testing.T) {
	app, persist := setupTestApp(t)
	ctx := context.Background()

	live := testutil.CreateTestWorkflow()
	draft := testutil.CreateTestWorkflow(testutil.AsDraft())
	require.NoError(t, persist.WorkflowRepository().Save(ctx, live))
	require.NoError(t, persist.WorkflowRepository().Save(ctx, draft))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows?module=broker&live=true", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing struct {
		Workflows []*models.Workflow `json:"workflows"`
		Count     int                `json:"count"`
	}
	decodeBody(t, resp, &listing)

	require.Equal(t, 1, listing.Count)
	assert.Equal(t, live.ID, listing.Workflows[0].ID)
}

func TestGetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows/missing-id", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateWorkflow_BumpsVersion(t *testing.T) {
	app, persist := setupTestApp(t)

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, persist.WorkflowRepository().Save(context.Background(), workflow))

	resp, err := app.Test(jsonRequest(http.MethodPut, "/workflows/"+workflow.ID, map[string]any{
		"name":  "Renamed automation",
		"nodes": workflow.Nodes,
		"edges": workflow.Edges,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Workflow
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Renamed automation", updated.Name)
	assert.Equal(t, workflow.Version+1, updated.Version)
}

func TestDeleteWorkflow(t *testing.T) {
	app, persist := setupTestApp(t)

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, persist.WorkflowRepository().Save(context.Background(), workflow))

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/workflows/"+workflow.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/workflows/"+workflow.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestValidateWorkflow(t *testing.T) {
	app, persist := setupTestApp(t)

	workflow := testutil.CreateTestWorkflow(testutil.AsDraft())
	workflow.Nodes = workflow.Nodes[:1] // drop the action node
	require.NoError(t, persist.WorkflowRepository().Save(context.Background(), workflow))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/validate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		IsValid bool     `json:"is_valid"`
		Errors  []string `json:"errors"`
	}
	decodeBody(t, resp, &result)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors)
}

func TestActivateWorkflow(t *testing.T) {
	app, persist := setupTestApp(t)

	workflow := testutil.CreateTestWorkflow(testutil.AsDraft())
	require.NoError(t, persist.WorkflowRepository().Save(context.Background(), workflow))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/activate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var activated models.Workflow
	decodeBody(t, resp, &activated)
	assert.True(t, activated.IsActive)
	assert.False(t, activated.IsDraft)

	// Already live: conflict.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/activate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestActivateWorkflow_InvalidGraph(t *testing.T) {
	app, persist := setupTestApp(t)

	workflow := testutil.CreateTestWorkflow(testutil.AsDraft())
	workflow.Nodes = workflow.Nodes[:1]
	require.NoError(t, persist.WorkflowRepository().Save(context.Background(), workflow))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/activate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeactivateWorkflow(t *testing.T) {
	app, persist := setupTestApp(t)

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, persist.WorkflowRepository().Save(context.Background(), workflow))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/deactivate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/deactivate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestDuplicateWorkflow(t *testing.T) {
	app, persist := setupTestApp(t)

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, persist.WorkflowRepository().Save(context.Background(), workflow))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/duplicate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var duplicated models.Workflow
	decodeBody(t, resp, &duplicated)
	assert.NotEqual(t, workflow.ID, duplicated.ID)
	assert.Equal(t, workflow.Name+" (copy)", duplicated.Name)
	assert.True(t, duplicated.IsDraft)
}

func TestGetTemplates(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/templates?module=carrier", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing struct {
		Templates []*models.WorkflowTemplate `json:"templates"`
		Count     int                        `json:"count"`
	}
	decodeBody(t, resp, &listing)
	require.NotZero(t, listing.Count)

	for _, tpl := range listing.Templates {
		assert.Equal(t, models.ModuleCarrier, tpl.ModuleContext)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/templates?module=warehouse", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInstantiateTemplate(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/templates/broker-pod-reminder/instantiate", map[string]any{
		"created_by": "user-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var workflow models.Workflow
	decodeBody(t, resp, &workflow)
	assert.True(t, workflow.IsDraft)
	assert.Equal(t, "user-1", workflow.CreatedBy)
	assert.NotEmpty(t, workflow.Nodes)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/templates/no-such/instantiate", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetExecutions(t *testing.T) {
	app, persist := setupTestApp(t)
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, persist.WorkflowRepository().Save(ctx, workflow))
	require.NoError(t, persist.ExecutionRepository().Save(ctx, &models.Execution{
		ID:         "exec-1",
		WorkflowID: workflow.ID,
		Status:     models.ExecutionCompleted,
		Path:       []string{},
		Context:    map[string]any{},
		Logs:       []models.ExecutionLog{},
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/executions?workflowId="+workflow.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing struct {
		Executions []*models.Execution `json:"executions"`
		Count      int                 `json:"count"`
	}
	decodeBody(t, resp, &listing)
	assert.Equal(t, 1, listing.Count)

	// Missing workflowId is a bad request; unknown workflow a 404.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/executions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/executions?workflowId=unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCancelExecution(t *testing.T) {
	app, persist := setupTestApp(t)
	ctx := context.Background()

	require.NoError(t, persist.ExecutionRepository().Save(ctx, &models.Execution{
		ID:         "exec-1",
		WorkflowID: "wf-1",
		Status:     models.ExecutionRunning,
		Path:       []string{},
		Context:    map[string]any{},
		Logs:       []models.ExecutionLog{},
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/executions/exec-1/cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	cancelled, err := persist.ExecutionRepository().GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionCancelled, cancelled.Status)

	// A finished execution cannot be cancelled again.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/executions/exec-1/cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGetNodeTypes(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/node-types?module=carrier", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing struct {
		NodeTypes []web.NodeTypeResponse `json:"node_types"`
	}
	decodeBody(t, resp, &listing)
	require.Len(t, listing.NodeTypes, 4)

	byKind := map[models.NodeKind]web.NodeTypeResponse{}
	for _, entry := range listing.NodeTypes {
		byKind[entry.Kind] = entry
	}

	assert.NotEmpty(t, byKind[models.KindTrigger].TriggerTypes)
	assert.NotEmpty(t, byKind[models.KindAction].ActionTypes)
	assert.Empty(t, byKind[models.KindDelay].TriggerTypes)

	// Module is mandatory for the palette.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/node-types", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
