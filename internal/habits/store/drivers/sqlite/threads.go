package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

type threadsRepo struct {
	db dbtx
}

func (r *threadsRepo) CreateThread(ctx context.Context, t domain.ForumThread) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO forum_threads (id, user_id, anon_id, title, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, nullString(t.UserID), nullString(t.AnonID), t.Title, t.Content, formatTime(t.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *threadsRepo) GetThread(ctx context.Context, id string) (domain.ForumThread, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, anon_id, title, content, created_at FROM forum_threads WHERE id = ?`, id)
	t, err := scanThread(row)
	if err != nil {
		return domain.ForumThread{}, mapNotFound(err)
	}
	return t, nil
}

func (r *threadsRepo) ListThreads(ctx context.Context, limit int) ([]domain.ForumThread, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, anon_id, title, content, created_at
		FROM forum_threads
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ForumThread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanThread(s scanner) (domain.ForumThread, error) {
	var (
		t              domain.ForumThread
		userID, anonID sql.NullString
		created        string
	)
	if err := s.Scan(&t.ID, &userID, &anonID, &t.Title, &t.Content, &created); err != nil {
		return domain.ForumThread{}, err
	}
	t.UserID, t.AnonID = userID.String, anonID.String

	var err error
	if t.CreatedAt, err = parseTime(created); err != nil {
		return domain.ForumThread{}, err
	}
	return t, nil
}
