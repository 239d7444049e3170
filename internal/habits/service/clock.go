package service

import (
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

// Clock decides what "now" and "today" mean. The zero value uses the wall
// clock in the process local zone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Clock) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

// Today is the current calendar day in the configured zone.
func (c Clock) Today() time.Time {
	return domain.DayOf(c.now().In(c.location()))
}
