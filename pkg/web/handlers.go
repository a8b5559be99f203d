package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/registry"
	"github.com/loadsmith/cargoflow/pkg/services"
	"github.com/loadsmith/cargoflow/pkg/templates"
)

type APIHandlers struct {
	workflowService  *services.Workflow
	executionService *services.Execution
	library          *templates.Library
	registry         *registry.Registry
	validator        *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	executionService *services.Execution,
	library *templates.Library,
	reg *registry.Registry,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		executionService: executionService,
		library:          library,
		registry:         reg,
		validator:        validate,
	}
}

// RegisterRoutes mounts every API route on the app.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	app.Get("/workflows", h.GetWorkflows)
	app.Post("/workflows", h.CreateWorkflow)
	app.Get("/workflows/:id", h.GetWorkflow)
	app.Put("/workflows/:id", h.UpdateWorkflow)
	app.Delete("/workflows/:id", h.DeleteWorkflow)
	app.Post("/workflows/:id/validate", h.ValidateWorkflow)
	app.Post("/workflows/:id/activate", h.ActivateWorkflow)
	app.Post("/workflows/:id/deactivate", h.DeactivateWorkflow)
	app.Post("/workflows/:id/duplicate", h.DuplicateWorkflow)

	app.Get("/templates", h.GetTemplates)
	app.Post("/templates/:id/instantiate", h.InstantiateTemplate)

	app.Get("/executions", h.GetExecutions)
	app.Get("/executions/:id", h.GetExecution)
	app.Post("/executions/:id/cancel", h.CancelExecution)

	app.Get("/node-types", h.GetNodeTypes)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOK := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOK {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	module := models.ModuleContext(c.Query("module"))

	onlyLive := false

	if liveStr := c.Query("live"); liveStr != "" {
		parsed, err := strconv.ParseBool(liveStr)
		if err != nil {
			return badRequest(c, "Invalid live parameter: "+liveStr)
		}

		onlyLive = parsed
	}

	workflows, err := h.workflowService.List(c.Context(), module, onlyLive)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{
		Name:          req.Name,
		Description:   req.Description,
		ModuleContext: req.ModuleContext,
		CreatedBy:     req.CreatedBy,
		Nodes:         req.Nodes,
		Edges:         req.Edges,
		BusinessHours: req.BusinessHours,
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), id, &models.Workflow{
		Name:          req.Name,
		Description:   req.Description,
		Nodes:         req.Nodes,
		Edges:         req.Edges,
		BusinessHours: req.BusinessHours,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	result, err := h.workflowService.Validate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) ActivateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.Activate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeactivateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.Deactivate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DuplicateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.Duplicate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	module := models.ModuleContext(c.Query("module"))

	if module != "" && !module.IsValid() {
		return badRequest(c, "Invalid module: "+string(module))
	}

	list := h.library.All()
	if module != "" {
		list = h.library.ForModule(module)
	}

	return c.JSON(fiber.Map{
		"templates": list,
		"count":     len(list),
	})
}

func (h *APIHandlers) InstantiateTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	var req InstantiateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow, err := h.workflowService.Instantiate(c.Context(), id, req.CreatedBy)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	workflowID := c.Query("workflowId")
	if workflowID == "" {
		return badRequest(c, "workflowId query parameter is required")
	}

	executions, err := h.executionService.ListByWorkflow(c.Context(), workflowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": executions,
		"count":      len(executions),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executionService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	if err := h.executionService.Cancel(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	module := models.ModuleContext(c.Query("module"))
	if !module.IsValid() {
		return badRequest(c, "A valid module query parameter is required")
	}

	types := make([]NodeTypeResponse, 0, len(models.AllKinds))

	for _, kind := range models.AllKinds {
		meta := h.registry.KindMeta(kind)
		entry := NodeTypeResponse{
			Kind:  kind,
			Label: meta.Label,
			Color: meta.Color,
			Icon:  meta.Icon,
		}

		switch kind {
		case models.KindTrigger:
			for _, t := range h.registry.TriggerTypes(module) {
				entry.TriggerTypes = append(entry.TriggerTypes, TypeOption{
					Value: string(t),
					Label: h.registry.DisplayName(string(t)),
				})
			}
		case models.KindAction:
			for _, t := range h.registry.ActionTypes() {
				entry.ActionTypes = append(entry.ActionTypes, TypeOption{
					Value: string(t),
					Label: h.registry.DisplayName(string(t)),
				})
			}
		}

		types = append(types, entry)
	}

	return c.JSON(fiber.Map{"node_types": types})
}
