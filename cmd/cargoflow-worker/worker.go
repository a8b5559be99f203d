// Package main provides the Cargoflow execution worker. It consumes domain
// events, runs matching workflows, resumes delayed executions, and fires
// cron-scheduled triggers.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loadsmith/cargoflow/pkg/eventbus"
	"github.com/loadsmith/cargoflow/pkg/events"
	"github.com/loadsmith/cargoflow/pkg/execution"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/persistence"
	"github.com/loadsmith/cargoflow/pkg/scheduler"
)

const scheduleRefreshInterval = time.Minute

type Worker struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	engine      *execution.Engine
	eventBus    eventbus.EventBus
	poller      *scheduler.Poller
	schedules   *scheduler.ScheduleRunner
}

func NewWorker(
	id string,
	logger *slog.Logger,
	persist persistence.Persistence,
	engine *execution.Engine,
	eventBus eventbus.EventBus,
	timers scheduler.TimerQueue,
) *Worker {
	workerLogger := logger.With("worker_id", id)

	return &Worker{
		id:          id,
		logger:      workerLogger,
		persistence: persist,
		engine:      engine,
		eventBus:    eventBus,
		poller:      scheduler.NewPoller(workerLogger, timers, 5*time.Second, engine.Resume),
		schedules:   scheduler.NewScheduleRunner(workerLogger, 30*time.Second, engine.RunScheduled),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.logger.InfoContext(ctx, "Starting worker")

	w.eventBus.Handle(events.DomainEventReceived, w.handleDomainEvent)

	if err := w.eventBus.Subscribe(ctx, events.DomainTopic); err != nil {
		return err
	}

	go func() {
		if err := w.poller.Start(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "Timer poller exited", "error", err)
		}
	}()

	go func() {
		if err := w.schedules.Start(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "Schedule runner exited", "error", err)
		}
	}()

	go w.refreshSchedulesLoop(ctx)

	w.logger.InfoContext(ctx, "Worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		w.logger.Info("Shutting down worker")
	case <-ctx.Done():
	}

	cancel()

	return nil
}

func (w *Worker) handleDomainEvent(ctx context.Context, event any) error {
	domainEvent, ok := event.(*events.DomainEvent)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for domain event")

		return nil
	}

	w.logger.InfoContext(ctx, "Processing domain event",
		"event_id", domainEvent.ID,
		"event_type", domainEvent.EventType,
		"module", domainEvent.Module)

	return w.engine.HandleEvent(ctx, domainEvent)
}

// refreshSchedulesLoop rebuilds the cron schedule set from the live
// workflows so edits and activations are picked up without a restart.
func (w *Worker) refreshSchedulesLoop(ctx context.Context) {
	w.refreshSchedules(ctx)

	ticker := time.NewTicker(scheduleRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refreshSchedules(ctx)
		}
	}
}

func (w *Worker) refreshSchedules(ctx context.Context) {
	workflows, err := w.persistence.WorkflowRepository().List(ctx, persistence.ListWorkflowsOptions{
		OnlyLive: true,
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to list workflows for schedule refresh", "error", err)

		return
	}

	schedules := []*scheduler.Schedule{}

	for _, workflow := range workflows {
		for _, node := range workflow.TriggerNodes() {
			cfg := node.Config.Trigger
			if cfg == nil || cfg.Type != models.TriggerScheduled {
				continue
			}

			expr, _ := cfg.Filters["cronExpression"].(string)
			if expr == "" {
				continue
			}

			schedule, err := scheduler.NewSchedule(workflow.ID+":"+node.ID, workflow.ID, node.ID, expr)
			if err != nil {
				w.logger.WarnContext(ctx, "Skipping invalid schedule",
					"workflow_id", workflow.ID,
					"node_id", node.ID,
					"error", err)

				continue
			}

			schedules = append(schedules, schedule)
		}
	}

	w.schedules.Replace(schedules)
	w.logger.DebugContext(ctx, "Refreshed schedules", "count", len(schedules))
}
