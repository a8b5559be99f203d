// Package scheduler provides durable timers for suspended executions and
// cron-driven schedules for workflows with scheduled triggers. A paused
// execution survives process restarts because its resumption timer lives in
// the timer queue, not in an in-process time.Timer.
package scheduler

import (
	"context"
	"errors"
	"time"
)

var ErrTimerNotFound = errors.New("timer not found")

// Timer marks the moment a paused execution becomes due for resumption.
type Timer struct {
	ID          string    `json:"id"          validate:"required"`
	ExecutionID string    `json:"execution_id" validate:"required"`
	NodeID      string    `json:"node_id"     validate:"required"`
	DueAt       time.Time `json:"due_at"      validate:"required"`
}

// TimerQueue stores timers ordered by due time. Implementations must be safe
// for concurrent use.
type TimerQueue interface {
	// Schedule enqueues a timer. Scheduling the same timer ID twice
	// replaces the previous entry.
	Schedule(ctx context.Context, timer *Timer) error

	// Due returns and removes all timers with DueAt <= now. Each returned
	// timer is delivered to exactly one caller.
	Due(ctx context.Context, now time.Time) ([]*Timer, error)

	// Cancel removes a pending timer. Returns ErrTimerNotFound if no timer
	// with that ID is pending.
	Cancel(ctx context.Context, timerID string) error

	Close(ctx context.Context) error
}
