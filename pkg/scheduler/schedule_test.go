package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule(t *testing.T) {
	schedule, err := NewSchedule("wf-1:node-1", "wf-1", "node-1", "0 9 * * 1")
	require.NoError(t, err)

	assert.True(t, schedule.Active)
	assert.False(t, schedule.NextDueAt.IsZero())
	assert.True(t, schedule.NextDueAt.After(time.Now().UTC()))
}

func TestNewSchedule_InvalidExpression(t *testing.T) {
	_, err := NewSchedule("wf-1:node-1", "wf-1", "node-1", "not a cron")
	require.Error(t, err)
}

func TestSchedule_Advance(t *testing.T) {
	schedule, err := NewSchedule("wf-1:node-1", "wf-1", "node-1", "0 9 * * 1")
	require.NoError(t, err)

	// Sunday 2026-01-04; the next Monday 09:00 is 2026-01-05.
	reference := time.Date(2026, time.January, 4, 12, 0, 0, 0, time.UTC)
	require.NoError(t, schedule.Advance(reference))
	assert.Equal(t, time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC), schedule.NextDueAt)

	// Advancing from exactly the firing instant moves to the following week.
	require.NoError(t, schedule.Advance(schedule.NextDueAt))
	assert.Equal(t, time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC), schedule.NextDueAt)
}

func TestSchedule_IsDue(t *testing.T) {
	schedule, err := NewSchedule("wf-1:node-1", "wf-1", "node-1", "*/5 * * * *")
	require.NoError(t, err)

	assert.False(t, schedule.IsDue(schedule.NextDueAt.Add(-time.Second)))
	assert.True(t, schedule.IsDue(schedule.NextDueAt))
	assert.True(t, schedule.IsDue(schedule.NextDueAt.Add(time.Minute)))

	schedule.Active = false
	assert.False(t, schedule.IsDue(schedule.NextDueAt.Add(time.Minute)))
}

func TestSchedule_Validate(t *testing.T) {
	schedule, err := NewSchedule("wf-1:node-1", "wf-1", "node-1", "0 9 * * 1")
	require.NoError(t, err)
	require.NoError(t, schedule.Validate())

	schedule.WorkflowID = ""
	assert.ErrorIs(t, schedule.Validate(), ErrInvalidSchedule)
}

func TestValidateCronExpression(t *testing.T) {
	assert.NoError(t, ValidateCronExpression("0 9 * * 1"))
	assert.NoError(t, ValidateCronExpression("*/15 8-17 * * 1-5"))
	assert.Error(t, ValidateCronExpression("0 9 * *"))
	assert.Error(t, ValidateCronExpression("every monday"))
}
