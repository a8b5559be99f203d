package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FireFunc starts an execution for the workflow trigger a schedule targets.
type FireFunc func(ctx context.Context, workflowID, triggerNodeID string) error

// ScheduleRunner drives cron-based workflow triggers. It keeps the active
// schedules in memory and fires each one when its NextDueAt passes, then
// advances the schedule to the next occurrence. Schedules are rebuilt from
// the live workflow set by the worker whenever workflows change, so the
// runner itself holds no persistence.
type ScheduleRunner struct {
	logger   *slog.Logger
	interval time.Duration
	fire     FireFunc

	mu        sync.Mutex
	schedules map[string]*Schedule
}

func NewScheduleRunner(logger *slog.Logger, interval time.Duration, fire FireFunc) *ScheduleRunner {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &ScheduleRunner{
		logger:    logger.With("module", "schedule_runner"),
		interval:  interval,
		fire:      fire,
		schedules: make(map[string]*Schedule),
	}
}

// Replace swaps the full schedule set. Existing entries keep their computed
// NextDueAt so a reload does not re-fire schedules early.
func (r *ScheduleRunner) Replace(schedules []*Schedule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]*Schedule, len(schedules))

	for _, schedule := range schedules {
		if existing, ok := r.schedules[schedule.ID]; ok &&
			existing.CronExpression == schedule.CronExpression {
			next[schedule.ID] = existing

			continue
		}

		next[schedule.ID] = schedule
	}

	r.schedules = next
}

// Start blocks until ctx is cancelled.
func (r *ScheduleRunner) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "Schedule runner started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Schedule runner stopped")

			return ctx.Err()
		case now := <-ticker.C:
			r.tick(ctx, now.UTC())
		}
	}
}

func (r *ScheduleRunner) tick(ctx context.Context, now time.Time) {
	for _, schedule := range r.dueSchedules(now) {
		if err := r.fire(ctx, schedule.WorkflowID, schedule.TriggerNodeID); err != nil {
			r.logger.ErrorContext(ctx, "Failed to fire schedule",
				"schedule_id", schedule.ID,
				"workflow_id", schedule.WorkflowID,
				"error", err)
		}
	}
}

// dueSchedules collects due entries and advances them under the lock.
func (r *ScheduleRunner) dueSchedules(now time.Time) []*Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()

	due := []*Schedule{}

	for _, schedule := range r.schedules {
		if !schedule.IsDue(now) {
			continue
		}

		due = append(due, schedule)

		if err := schedule.Advance(now); err != nil {
			r.logger.Error("Failed to advance schedule, deactivating",
				"schedule_id", schedule.ID, "error", err)
			schedule.Active = false
		}
	}

	return due
}
