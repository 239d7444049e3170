package domain

import "time"

type Habit struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// HabitCompletion records that a habit was done on a calendar day. There is
// at most one per (HabitID, Day).
type HabitCompletion struct {
	HabitID   string
	UserID    string
	Day       time.Time // UTC midnight, see DayOf
	CreatedAt time.Time
}

// HabitStatus is a habit annotated for the dashboard.
type HabitStatus struct {
	Habit
	Streak         int
	CompletedToday bool
}
