// Package main provides the Adviso API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/adviso/adviso/pkg/ai"
	"github.com/adviso/adviso/pkg/bulk"
	"github.com/adviso/adviso/pkg/eventbus"
	"github.com/adviso/adviso/pkg/persistence"
	"github.com/adviso/adviso/pkg/readmodel"
	"github.com/adviso/adviso/pkg/session"
	"github.com/adviso/adviso/pkg/web"
	"github.com/adviso/adviso/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	client      ai.Client
	source      readmodel.Source
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	client ai.Client,
	source readmodel.Source,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		client:      client,
		source:      source,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	sessions := session.NewManager(a.persistence.SessionRepository(), a.client, a.logger)
	runner := bulk.NewRunner(a.client, a.eventBus, a.logger)
	engine := workflow.NewEngine(
		a.persistence.WorkflowRepository(),
		a.persistence.WorkflowLogRepository(),
		a.client,
		a.eventBus,
		a.logger,
	)

	handlers := web.NewAPIHandlers(sessions, runner, engine, a.source, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Adviso API")
	})

	s := app.Group("/sessions")
	s.Post("/:id/messages", handlers.SendMessage)
	s.Get("/:id/messages", handlers.GetMessages)

	app.Get("/catalog", handlers.GetCatalogDomains)
	app.Get("/catalog/:domain", handlers.GetCatalog)

	app.Post("/bulk-runs", handlers.CreateBulkRun)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/toggle", handlers.ToggleWorkflow)
	w.Post("/:id/run", handlers.RunWorkflow)
	w.Get("/:id/logs", handlers.GetWorkflowLogs)

	app.Get("/predictions", handlers.GetPredictions)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
