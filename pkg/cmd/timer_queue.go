package cmd

import (
	"fmt"
	"log/slog"

	"github.com/loadsmith/cargoflow/pkg/scheduler"
)

// NewTimerQueue selects the timer backend. An empty redisURL falls back to
// the in-memory queue, which loses timers on restart.
func NewTimerQueue(logger *slog.Logger, redisURL string) scheduler.TimerQueue {
	if redisURL == "" {
		logger.Warn("No redis URL configured, delay timers will not survive restarts")

		return scheduler.NewMemoryTimerQueue()
	}

	queue, err := scheduler.NewRedisTimerQueue(redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to initialize redis timer queue: %w", err))
	}

	logger.Info("Using redis timer queue")

	return queue
}
