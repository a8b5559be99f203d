package scheduler

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	timerSetKey  = "cargoflow:timers"
	timerDataKey = "cargoflow:timers:data"
)

// RedisTimerQueue stores timers in a Redis sorted set scored by due time,
// with the timer payloads in a companion hash. Timers survive worker
// restarts as long as Redis does.
type RedisTimerQueue struct {
	client redis.UniversalClient
}

func NewRedisTimerQueue(redisURL string) (*RedisTimerQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &RedisTimerQueue{client: redis.NewClient(opts)}, nil
}

// NewRedisTimerQueueWithClient wraps an existing client, mainly for tests.
func NewRedisTimerQueueWithClient(client redis.UniversalClient) *RedisTimerQueue {
	return &RedisTimerQueue{client: client}
}

func (q *RedisTimerQueue) Schedule(ctx context.Context, timer *Timer) error {
	data, err := encodeTimer(timer)
	if err != nil {
		return fmt.Errorf("encode timer %s: %w", timer.ID, err)
	}

	pipe := q.client.TxPipeline()
	pipe.ZAdd(ctx, timerSetKey, redis.Z{
		Score:  float64(timer.DueAt.UnixMilli()),
		Member: timer.ID,
	})
	pipe.HSet(ctx, timerDataKey, timer.ID, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("schedule timer %s: %w", timer.ID, err)
	}

	return nil
}

func (q *RedisTimerQueue) Due(ctx context.Context, now time.Time) ([]*Timer, error) {
	ids, err := q.client.ZRangeByScore(ctx, timerSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("query due timers: %w", err)
	}

	due := []*Timer{}

	for _, id := range ids {
		// ZRem first so a concurrent poller cannot claim the same timer.
		removed, err := q.client.ZRem(ctx, timerSetKey, id).Result()
		if err != nil {
			return due, fmt.Errorf("claim timer %s: %w", id, err)
		}

		if removed == 0 {
			continue
		}

		data, err := q.client.HGet(ctx, timerDataKey, id).Result()
		if err != nil {
			return due, fmt.Errorf("load timer %s: %w", id, err)
		}

		q.client.HDel(ctx, timerDataKey, id)

		timer, err := decodeTimer([]byte(data))
		if err != nil {
			return due, fmt.Errorf("decode timer %s: %w", id, err)
		}

		due = append(due, timer)
	}

	return due, nil
}

func (q *RedisTimerQueue) Cancel(ctx context.Context, timerID string) error {
	removed, err := q.client.ZRem(ctx, timerSetKey, timerID).Result()
	if err != nil {
		return fmt.Errorf("cancel timer %s: %w", timerID, err)
	}

	if removed == 0 {
		return ErrTimerNotFound
	}

	q.client.HDel(ctx, timerDataKey, timerID)

	return nil
}

func (q *RedisTimerQueue) Close(_ context.Context) error {
	return q.client.Close()
}
