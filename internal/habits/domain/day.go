package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

// DayOf returns the calendar day of t, as observed in t's location, encoded
// as midnight UTC. Two instants on the same local day map to the same value.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a day value.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// FormatDay is the inverse of ParseDay.
func FormatDay(day time.Time) string {
	return day.Format(DateLayout)
}
