package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

type completionsRepo struct {
	db dbtx
}

func (r *completionsRepo) MarkCompletion(ctx context.Context, c domain.HabitCompletion) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO habit_completions (habit_id, user_id, completion_date, created_at)
		VALUES ($1, $2, $3::date, $4)
		ON CONFLICT (habit_id, completion_date) DO NOTHING`,
		c.HabitID, c.UserID, formatDay(c.Day), c.CreatedAt.UTC(),
	)
	if err != nil {
		return false, mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *completionsRepo) UnmarkCompletion(ctx context.Context, habitID, userID string, day time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM habit_completions WHERE habit_id = $1 AND user_id = $2 AND completion_date = $3::date`,
		habitID, userID, formatDay(day),
	)
	return err
}

func (r *completionsRepo) ListCompletionsByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.HabitCompletion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT habit_id, user_id, completion_date, created_at
		FROM habit_completions
		WHERE user_id = $1 AND completion_date BETWEEN $2::date AND $3::date
		ORDER BY completion_date, habit_id`,
		userID, formatDay(from), formatDay(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HabitCompletion
	for rows.Next() {
		var c domain.HabitCompletion
		if err := rows.Scan(&c.HabitID, &c.UserID, &c.Day, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Day = normalizeDay(c.Day)
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *completionsRepo) DeleteCompletionsByHabit(ctx context.Context, habitID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = $1`, habitID)
	return err
}
