package scheduler

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrInvalidSchedule = errors.New("invalid schedule configuration")

// cronParser accepts the standard 5-field format (minute hour dom month dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule represents the recurring firing plan of a workflow whose trigger
// is cron-based. NextDueAt is precomputed so the poller can select due
// schedules without parsing cron expressions on every tick.
type Schedule struct {
	ID             string    `json:"id"              validate:"required"`
	WorkflowID     string    `json:"workflow_id"     validate:"required"`
	TriggerNodeID  string    `json:"trigger_node_id" validate:"required"`
	CronExpression string    `json:"cron_expression" validate:"required"`
	NextDueAt      time.Time `json:"next_due_at"`
	Active         bool      `json:"active"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewSchedule(id, workflowID, triggerNodeID, cronExpression string) (*Schedule, error) {
	schedule := &Schedule{
		ID:             id,
		WorkflowID:     workflowID,
		TriggerNodeID:  triggerNodeID,
		CronExpression: cronExpression,
		Active:         true,
	}

	if err := schedule.Advance(time.Now().UTC()); err != nil {
		return nil, err
	}

	return schedule, nil
}

// Advance recomputes NextDueAt as the first firing strictly after reference.
func (s *Schedule) Advance(reference time.Time) error {
	cronSchedule, err := cronParser.Parse(s.CronExpression)
	if err != nil {
		return err
	}

	s.NextDueAt = cronSchedule.Next(reference)
	s.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *Schedule) IsDue(now time.Time) bool {
	return s.Active && !s.NextDueAt.After(now)
}

func (s *Schedule) Validate() error {
	if s.ID == "" || s.WorkflowID == "" || s.TriggerNodeID == "" || s.CronExpression == "" {
		return ErrInvalidSchedule
	}

	_, err := cronParser.Parse(s.CronExpression)

	return err
}

// ValidateCronExpression reports whether expr is a parseable 5-field cron
// expression. Used by the trigger configuration form.
func ValidateCronExpression(expr string) error {
	_, err := cronParser.Parse(expr)

	return err
}
