// Package quota holds the value types of the daily AI usage quota.
package quota

import (
	"fmt"
	"time"
)

// dayLayout is the ISO calendar date used in store keys.
const dayLayout = "2006-01-02"

// Day is a civil calendar date ("2026-10-14"). It keys one usage counter per user.
type Day string

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// ParseDay validates an ISO date string.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(s), nil
}

// String implements fmt.Stringer.
func (d Day) String() string { return string(d) }

// Start returns midnight of the day in loc.
func (d Day) Start(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, string(d), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", d, err)
	}
	return t, nil
}

// Status is a quota snapshot for one user and day.
type Status struct {
	day      Day
	limit    int
	used     int
	resetsAt time.Time
}

// NewStatus creates a Status snapshot.
func NewStatus(day Day, limit, used int, resetsAt time.Time) Status {
	return Status{day: day, limit: limit, used: used, resetsAt: resetsAt}
}

// Day returns the day the snapshot covers.
func (s Status) Day() Day { return s.day }

// Limit returns the daily request cap.
func (s Status) Limit() int { return s.limit }

// Used returns requests recorded today. It may exceed Limit.
func (s Status) Used() int { return s.used }

// Remaining returns requests left today, never negative.
func (s Status) Remaining() int {
	if s.used >= s.limit {
		return 0
	}
	return s.limit - s.used
}

// IsExhausted reports whether a new request would be denied.
func (s Status) IsExhausted() bool { return s.used >= s.limit }

// ResetsAt returns the instant the next day's counter starts.
func (s Status) ResetsAt() time.Time { return s.resetsAt }
