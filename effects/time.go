package effects

import (
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/date/v2/timespan"
)

type TimeSpan = timespan.TimeSpan

func NewTimeSpan(from, to time.Time) TimeSpan {
	return timespan.BetweenTimes(from, to)
}

// Registration describes one live subscription.
type Registration struct {
	ID       uuid.UUID
	Effect   string
	Dispatch bool
	Since    time.Time
}

// Active returns the span from registration until now.
func (r Registration) Active(now time.Time) TimeSpan {
	return NewTimeSpan(r.Since, now)
}
