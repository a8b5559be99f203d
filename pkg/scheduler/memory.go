package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryTimerQueue keeps timers in process memory. Suitable for tests and
// single-process development; timers do not survive restarts.
type MemoryTimerQueue struct {
	mu     sync.Mutex
	timers map[string]*Timer
}

func NewMemoryTimerQueue() *MemoryTimerQueue {
	return &MemoryTimerQueue{timers: make(map[string]*Timer)}
}

func (q *MemoryTimerQueue) Schedule(_ context.Context, timer *Timer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	copied := *timer
	q.timers[timer.ID] = &copied

	return nil
}

func (q *MemoryTimerQueue) Due(_ context.Context, now time.Time) ([]*Timer, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	due := []*Timer{}

	for id, timer := range q.timers {
		if !timer.DueAt.After(now) {
			due = append(due, timer)
			delete(q.timers, id)
		}
	}

	return due, nil
}

func (q *MemoryTimerQueue) Cancel(_ context.Context, timerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.timers[timerID]; !ok {
		return ErrTimerNotFound
	}

	delete(q.timers, timerID)

	return nil
}

func (q *MemoryTimerQueue) Close(_ context.Context) error {
	return nil
}

// encodeTimer and decodeTimer are shared by the durable backends.
func encodeTimer(timer *Timer) ([]byte, error) {
	return json.Marshal(timer)
}

func decodeTimer(data []byte) (*Timer, error) {
	var timer Timer
	if err := json.Unmarshal(data, &timer); err != nil {
		return nil, err
	}

	return &timer, nil
}
