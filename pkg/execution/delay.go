package execution

import (
	"errors"
	"fmt"
	"time"

	"github.com/loadsmith/cargoflow/pkg/models"
)

// resolveDelay computes when a paused execution becomes due again. An
// until_date already in the past resumes immediately rather than erroring:
// the node expressed "wait until", and that moment has arrived.
func resolveDelay(cfg *models.DelayConfig, hours models.BusinessHours, now time.Time) (time.Time, error) {
	switch cfg.Type {
	case models.DelayFixed:
		duration := cfg.Unit.Duration(cfg.Amount)
		if duration <= 0 {
			return time.Time{}, fmt.Errorf("fixed delay has non-positive duration (%v %s)", cfg.Amount, cfg.Unit)
		}

		return now.Add(duration), nil

	case models.DelayUntilDate:
		if cfg.UntilDate == nil {
			return time.Time{}, errors.New("until_date delay has no target date")
		}

		if cfg.UntilDate.Before(now) {
			return now, nil
		}

		return *cfg.UntilDate, nil

	case models.DelayBusinessHours:
		duration := cfg.Unit.Duration(cfg.Amount)
		if duration <= 0 {
			return time.Time{}, fmt.Errorf("business hours delay has non-positive duration (%v %s)", cfg.Amount, cfg.Unit)
		}

		return hours.Add(now, duration), nil

	default:
		return time.Time{}, fmt.Errorf("unknown delay type: %s", cfg.Type)
	}
}
