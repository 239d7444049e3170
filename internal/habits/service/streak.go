package service

import (
	"slices"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

// Streak returns the number of consecutive calendar days, ending today or
// yesterday, found in days. Input may be unsorted and contain duplicates;
// days after today are ignored. A streak whose latest day is older than
// yesterday is broken and counts as zero.
func Streak(days []time.Time, today time.Time) int {
	today = domain.DayOf(today)

	set := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		d = domain.DayOf(d)
		if d.After(today) {
			continue
		}
		set[d] = struct{}{}
	}
	if len(set) == 0 {
		return 0
	}

	sorted := make([]time.Time, 0, len(set))
	for d := range set {
		sorted = append(sorted, d)
	}
	slices.SortFunc(sorted, func(a, b time.Time) int { return b.Compare(a) })

	yesterday := today.AddDate(0, 0, -1)
	if sorted[0].Before(yesterday) {
		return 0
	}

	streak := 0
	expected := sorted[0]
	for _, d := range sorted {
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}
