package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
	"github.com/aussiebroadwan/habits/internal/habits/store"
)

type habitsRepo struct {
	db dbtx
}

func (r *habitsRepo) CreateHabit(ctx context.Context, h domain.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, formatTime(h.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *habitsRepo) GetHabit(ctx context.Context, id string) (domain.Habit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		return domain.Habit{}, mapNotFound(err)
	}
	return h, nil
}

func (r *habitsRepo) ListHabitsByUser(ctx context.Context, userID string) ([]domain.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM habits WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *habitsRepo) DeleteHabit(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (domain.Habit, error) {
	var (
		h       domain.Habit
		created string
	)
	if err := s.Scan(&h.ID, &h.UserID, &h.Name, &created); err != nil {
		return domain.Habit{}, err
	}
	var err error
	if h.CreatedAt, err = parseTime(created); err != nil {
		return domain.Habit{}, err
	}
	return h, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
