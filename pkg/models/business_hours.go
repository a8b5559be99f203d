package models

import "time"

// BusinessHours is the window during which a business-hours delay accrues
// elapsed time. Hours are in the workflow's location; weekdays outside Days
// never accrue.
type BusinessHours struct {
	StartHour int            `json:"start_hour" validate:"min=0,max=23"`
	EndHour   int            `json:"end_hour"   validate:"min=1,max=24"`
	Days      []time.Weekday `json:"days"`
	Location  string         `json:"location,omitempty"`
}

// DefaultBusinessHours returns the conventional 09:00-17:00 Mon-Fri window
// in UTC, used when a workflow does not override it.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		StartHour: 9,
		EndHour:   17,
		Days: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Location: "UTC",
	}
}

func (b BusinessHours) location() *time.Location {
	if b.Location == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(b.Location)
	if err != nil {
		return time.UTC
	}

	return loc
}

func (b BusinessHours) includesDay(d time.Weekday) bool {
	for _, day := range b.Days {
		if day == d {
			return true
		}
	}

	return false
}

// Contains reports whether t falls inside the business-hours window.
func (b BusinessHours) Contains(t time.Time) bool {
	t = t.In(b.location())
	if !b.includesDay(t.Weekday()) {
		return false
	}

	h := t.Hour()

	return h >= b.StartHour && h < b.EndHour
}

// nextOpen returns t if it is within the window, otherwise the start of the
// next open interval.
func (b BusinessHours) nextOpen(t time.Time) time.Time {
	t = t.In(b.location())

	for range 8 { // at most a week of closed days plus the current one
		if b.includesDay(t.Weekday()) {
			open := time.Date(t.Year(), t.Month(), t.Day(), b.StartHour, 0, 0, 0, t.Location())
			close := time.Date(t.Year(), t.Month(), t.Day(), b.EndHour, 0, 0, 0, t.Location())

			if t.Before(open) {
				return open
			}

			if t.Before(close) {
				return t
			}
		}

		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).Add(24 * time.Hour)
	}

	return t
}

// Add returns the instant at which d of business time has elapsed after
// start. Time outside the window does not count toward d.
func (b BusinessHours) Add(start time.Time, d time.Duration) time.Time {
	t := b.nextOpen(start)

	for d > 0 {
		close := time.Date(t.Year(), t.Month(), t.Day(), b.EndHour, 0, 0, 0, t.Location())
		remaining := close.Sub(t)

		if d <= remaining {
			return t.Add(d)
		}

		d -= remaining
		t = b.nextOpen(close)
	}

	return t
}
