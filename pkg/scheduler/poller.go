package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// TimerHandler resumes the execution a due timer refers to.
type TimerHandler func(ctx context.Context, timer *Timer) error

// Poller drains due timers from a TimerQueue at a fixed interval and hands
// them to the handler. Handler failures are logged and the timer is
// rescheduled with a short backoff rather than dropped.
type Poller struct {
	logger   *slog.Logger
	queue    TimerQueue
	interval time.Duration
	handler  TimerHandler
}

func NewPoller(logger *slog.Logger, queue TimerQueue, interval time.Duration, handler TimerHandler) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &Poller{
		logger:   logger.With("module", "timer_poller"),
		queue:    queue,
		interval: interval,
		handler:  handler,
	}
}

// Start blocks until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.InfoContext(ctx, "Timer poller started", "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "Timer poller stopped")

			return ctx.Err()
		case now := <-ticker.C:
			p.tick(ctx, now.UTC())
		}
	}
}

func (p *Poller) tick(ctx context.Context, now time.Time) {
	due, err := p.queue.Due(ctx, now)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to query due timers", "error", err)

		return
	}

	for _, timer := range due {
		if err := p.handler(ctx, timer); err != nil {
			p.logger.ErrorContext(ctx, "Timer handler failed, rescheduling",
				"timer_id", timer.ID,
				"execution_id", timer.ExecutionID,
				"error", err)

			timer.DueAt = now.Add(p.interval)
			if err := p.queue.Schedule(ctx, timer); err != nil {
				p.logger.ErrorContext(ctx, "Failed to reschedule timer",
					"timer_id", timer.ID, "error", err)
			}
		}
	}
}
