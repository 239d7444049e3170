package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStreak(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	ago := func(n int) time.Time { return today.AddDate(0, 0, -n) }

	cases := []struct {
		name string
		days []time.Time
		want int
	}{
		{"no completions", nil, 0},
		{"only today", []time.Time{ago(0)}, 1},
		{"only yesterday", []time.Time{ago(1)}, 1},
		{"today and four prior days", []time.Time{ago(0), ago(1), ago(2), ago(3), ago(4)}, 5},
		{"gap after today", []time.Time{ago(0), ago(3)}, 1},
		{"latest two days ago", []time.Time{ago(2), ago(3), ago(4)}, 0},
		{"unsorted with duplicates", []time.Time{ago(2), ago(0), ago(1), ago(0), ago(2)}, 3},
		{"future days ignored", []time.Time{ago(-1), ago(0), ago(1)}, 2},
		{"only future", []time.Time{ago(-2)}, 0},
		{"yesterday run without today", []time.Time{ago(1), ago(2), ago(4)}, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Streak(tc.days, today))
		})
	}
}

func TestStreakAcrossMonthAndDST(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	days := []time.Time{
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC),
	}
	require.Equal(t, 3, Streak(days, today))
}

func TestClockToday(t *testing.T) {
	t.Parallel()

	sydney := time.FixedZone("AEST", 10*60*60)
	c := Clock{
		Now:      func() time.Time { return time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC) },
		Location: sydney,
	}
	require.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), c.Today())
}
