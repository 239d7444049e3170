package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/pkg/idx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

// streakHistoryDays bounds how much completion history feeds a streak.
const streakHistoryDays = 365

type HabitService struct {
	Store store.Store
	Clock Clock
}

func (s *HabitService) CreateHabit(ctx context.Context, userID, name string) (domain.Habit, error) {
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return domain.Habit{}, ErrMissingFields
	}
	if !idx.Valid(userID) {
		return domain.Habit{}, ErrUserNotFound
	}

	h := domain.Habit{
		ID:        idx.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: s.Clock.now().UTC(),
	}
	if err := s.Store.Habits().CreateHabit(ctx, h); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return domain.Habit{}, ErrUserNotFound
		}
		return domain.Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return h, nil
}

// DeleteHabit removes a habit and its completions in one transaction.
func (s *HabitService) DeleteHabit(ctx context.Context, habitID, userID string) error {
	if habitID == "" || userID == "" {
		return ErrMissingFields
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		h, err := tx.Habits().GetHabit(ctx, habitID)
		if err != nil {
			return err
		}
		if h.UserID != userID {
			return store.ErrNotFound
		}
		if err := tx.Completions().DeleteCompletionsByHabit(ctx, habitID); err != nil {
			return err
		}
		return tx.Habits().DeleteHabit(ctx, habitID, userID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrHabitNotFound
	}
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// MarkComplete records that habitID was done on day (today when zero).
// Marking an already completed day is a no-op. The day actually recorded is
// returned.
func (s *HabitService) MarkComplete(ctx context.Context, habitID, userID string, day time.Time) (time.Time, error) {
	if habitID == "" || userID == "" {
		return time.Time{}, ErrMissingFields
	}
	day = s.dayOrToday(day)

	h, err := s.Store.Habits().GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return time.Time{}, ErrHabitNotFound
		}
		return time.Time{}, fmt.Errorf("get habit: %w", err)
	}
	if h.UserID != userID {
		return time.Time{}, ErrHabitNotFound
	}

	created, err := s.Store.Completions().MarkCompletion(ctx, domain.HabitCompletion{
		HabitID:   habitID,
		UserID:    userID,
		Day:       day,
		CreatedAt: s.Clock.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			// Deleted between the lookup and the insert.
			return time.Time{}, ErrHabitNotFound
		}
		return time.Time{}, fmt.Errorf("mark completion: %w", err)
	}

	slogx.FromContext(ctx).Debug("habit completion marked",
		"habit_id", habitID,
		"day", domain.FormatDay(day),
		"created", created,
	)
	return day, nil
}

// UnmarkComplete removes the completion for day (today when zero). Missing
// completions are not an error.
func (s *HabitService) UnmarkComplete(ctx context.Context, habitID, userID string, day time.Time) (time.Time, error) {
	if habitID == "" || userID == "" {
		return time.Time{}, ErrMissingFields
	}
	day = s.dayOrToday(day)

	if err := s.Store.Completions().UnmarkCompletion(ctx, habitID, userID, day); err != nil {
		return time.Time{}, fmt.Errorf("unmark completion: %w", err)
	}
	return day, nil
}

// ListWithStatus returns every habit of userID with its current streak and
// whether it has been completed today.
func (s *HabitService) ListWithStatus(ctx context.Context, userID string) ([]domain.HabitStatus, error) {
	if userID == "" {
		return nil, ErrMissingFields
	}

	habits, err := s.Store.Habits().ListHabitsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	if len(habits) == 0 {
		return []domain.HabitStatus{}, nil
	}

	today := s.Clock.Today()
	from := today.AddDate(0, 0, -(streakHistoryDays - 1))
	completions, err := s.Store.Completions().ListCompletionsByUser(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	byHabit := make(map[string][]time.Time, len(habits))
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c.Day)
	}

	out := make([]domain.HabitStatus, 0, len(habits))
	for _, h := range habits {
		days := byHabit[h.ID]
		completedToday := false
		for _, d := range days {
			if d.Equal(today) {
				completedToday = true
				break
			}
		}
		out = append(out, domain.HabitStatus{
			Habit:          h,
			Streak:         Streak(days, today),
			CompletedToday: completedToday,
		})
	}
	return out, nil
}

// ListCompletions returns the user's completions between start and end
// inclusive. Zero bounds default to the current month.
func (s *HabitService) ListCompletions(ctx context.Context, userID string, start, end time.Time) ([]domain.HabitCompletion, error) {
	if userID == "" {
		return nil, ErrMissingFields
	}

	today := s.Clock.Today()
	monthStart := today.AddDate(0, 0, 1-today.Day())
	if start.IsZero() {
		start = monthStart
	}
	if end.IsZero() {
		end = monthStart.AddDate(0, 1, -1)
	}
	start, end = domain.DayOf(start), domain.DayOf(end)
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	out, err := s.Store.Completions().ListCompletionsByUser(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	if out == nil {
		out = []domain.HabitCompletion{}
	}
	return out, nil
}

func (s *HabitService) dayOrToday(day time.Time) time.Time {
	if day.IsZero() {
		return s.Clock.Today()
	}
	return domain.DayOf(day)
}
