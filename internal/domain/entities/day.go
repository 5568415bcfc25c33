package entities

import (
	"fmt"
	"time"
)

const (
	// DayLayout is the wire and storage format of calendar days.
	DayLayout = "2006-01-02"
	// ClockLayout is the wire and storage format of time-of-day values.
	ClockLayout = "15:04"
)

// ParseDay parses a YYYY-MM-DD calendar day at midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t, nil
}

// FormatDay renders t as a calendar day in its own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// Today returns the current calendar day of now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return FormatDay(now.In(loc))
}

// EndOfDay returns the last millisecond of day in loc, the instant used as
// the default deadline of a task scheduled for that day.
func EndOfDay(day string, loc *time.Location) (time.Time, error) {
	start, err := ParseDay(day, loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}
