package postgres

import (
	"context"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

type habitsRepo struct {
	db dbtx
}

func (r *habitsRepo) CreateHabit(ctx context.Context, h domain.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		h.ID, h.UserID, h.Name, h.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *habitsRepo) GetHabit(ctx context.Context, id string) (domain.Habit, error) {
	h, err := scanHabit(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM habits WHERE id = $1`, id))
	if err != nil {
		return domain.Habit{}, mapNotFound(err)
	}
	return h, nil
}

func (r *habitsRepo) ListHabitsByUser(ctx context.Context, userID string) ([]domain.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM habits WHERE user_id = $1 ORDER BY created_at, id`, userID)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanHabit(s scanner) (domain.Habit, error) {
	var h domain.Habit
	if err := s.Scan(&h.ID, &h.UserID, &h.Name, &h.CreatedAt); err != nil {
		return domain.Habit{}, err
	}
	h.CreatedAt = h.CreatedAt.UTC()
	return h, nil
}
