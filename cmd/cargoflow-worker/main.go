package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/loadsmith/cargoflow/pkg/cmd"
	"github.com/loadsmith/cargoflow/pkg/execution"
	"github.com/loadsmith/cargoflow/pkg/log"
	"github.com/loadsmith/cargoflow/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

func main() {
	logger := log.WithModule("worker")

	command := &cli.Command{
		Name:                  "cargoflow-worker",
		Usage:                 "Run workflow executions against domain events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL for durable delay timers",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "worker-id",
				Usage:   "Stable worker identifier",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()
			}

			logger.InfoContext(ctx, "Initializing Cargoflow worker", "worker_id", workerID)

			if _, err := otelhelper.NewTracer(ctx, "cargoflow-worker"); err != nil {
				logger.WarnContext(ctx, "Failed to initialize tracer", "error", err)
			}

			persist := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persist.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "cargoflow-worker", logger)

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			timers := cmd.NewTimerQueue(logger, command.String("redis-url"))

			defer func() {
				if err := timers.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close timer queue", "error", err)
				}
			}()

			engine := execution.NewEngine(logger, persist, timers, eventBus)
			worker := NewWorker(workerID, logger, persist, engine, eventBus, timers)

			return worker.Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
