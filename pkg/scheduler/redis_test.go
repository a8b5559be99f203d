package scheduler_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/loadsmith/cargoflow/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisQueue(t *testing.T) (*scheduler.RedisTimerQueue, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	queue, err := scheduler.NewRedisTimerQueue(fmt.Sprintf("redis://%s:%s", host, port.Port()))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, queue.Close(ctx))
		require.NoError(t, container.Terminate(ctx))
		cancel()
	})

	return queue, ctx
}

func TestRedisTimerQueue_ScheduleAndDue(t *testing.T) {
	queue, ctx := setupRedisQueue(t)
	now := time.Now().UTC()

	require.NoError(t, queue.Schedule(ctx, &scheduler.Timer{
		ID:          "exec-1:node-1",
		ExecutionID: "exec-1",
		NodeID:      "node-1",
		DueAt:       now.Add(-time.Minute),
	}))
	require.NoError(t, queue.Schedule(ctx, &scheduler.Timer{
		ID:          "exec-2:node-4",
		ExecutionID: "exec-2",
		NodeID:      "node-4",
		DueAt:       now.Add(time.Hour),
	}))

	due, err := queue.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "exec-1", due[0].ExecutionID)
	assert.Equal(t, "node-1", due[0].NodeID)

	// Consumed: the same timer is never delivered twice.
	again, err := queue.Due(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again)

	later, err := queue.Due(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "exec-2", later[0].ExecutionID)
}

func TestRedisTimerQueue_ScheduleReplacesSameID(t *testing.T) {
	queue, ctx := setupRedisQueue(t)
	now := time.Now().UTC()

	timer := &scheduler.Timer{
		ID:          "exec-1:node-1",
		ExecutionID: "exec-1",
		NodeID:      "node-1",
		DueAt:       now.Add(time.Hour),
	}
	require.NoError(t, queue.Schedule(ctx, timer))

	timer.DueAt = now.Add(-time.Minute)
	require.NoError(t, queue.Schedule(ctx, timer))

	due, err := queue.Due(ctx, now)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestRedisTimerQueue_Cancel(t *testing.T) {
	queue, ctx := setupRedisQueue(t)
	now := time.Now().UTC()

	require.NoError(t, queue.Schedule(ctx, &scheduler.Timer{
		ID:          "exec-1:node-1",
		ExecutionID: "exec-1",
		NodeID:      "node-1",
		DueAt:       now.Add(-time.Minute),
	}))

	require.NoError(t, queue.Cancel(ctx, "exec-1:node-1"))

	due, err := queue.Due(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)

	assert.ErrorIs(t, queue.Cancel(ctx, "exec-1:node-1"), scheduler.ErrTimerNotFound)
}
