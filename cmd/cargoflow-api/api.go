// Package main provides the Cargoflow API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/loadsmith/cargoflow/pkg/persistence"
	"github.com/loadsmith/cargoflow/pkg/registry"
	"github.com/loadsmith/cargoflow/pkg/services"
	"github.com/loadsmith/cargoflow/pkg/templates"
	"github.com/loadsmith/cargoflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	library     *templates.Library
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	library *templates.Library,
) *API {
	return &API{
		logger:      logger,
		persistence: persist,
		registry:    reg,
		library:     library,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, a.library)
	executionService := services.NewExecution(a.persistence, nil)

	handlers := web.NewAPIHandlers(workflowService, executionService, a.library, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Cargoflow API")
	})

	handlers.RegisterRoutes(app)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
