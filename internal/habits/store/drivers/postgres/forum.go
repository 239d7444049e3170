package postgres

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
		`INSERT INTO forum_threads (id, user_id, anon_id, title, content, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, nullString(t.UserID), nullString(t.AnonID), t.Title, t.Content, t.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *threadsRepo) GetThread(ctx context.Context, id string) (domain.ForumThread, error) {
	t, err := scanThread(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, anon_id, title, content, created_at FROM forum_threads WHERE id = $1`, id))
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
		LIMIT $1`, limit)
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
	)
	if err := s.Scan(&t.ID, &userID, &anonID, &t.Title, &t.Content, &t.CreatedAt); err != nil {
		return domain.ForumThread{}, err
	}
	t.UserID, t.AnonID = userID.String, anonID.String
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

type postsRepo struct {
	db dbtx
}

func (r *postsRepo) CreatePost(ctx context.Context, p domain.ForumPost) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO forum_posts (id, thread_id, user_id, anon_id, content, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.ThreadID, nullString(p.UserID), nullString(p.AnonID), p.Content, p.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *postsRepo) ListPostsByThread(ctx context.Context, threadID string) ([]domain.ForumPost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, thread_id, user_id, anon_id, content, created_at
		FROM forum_posts
		WHERE thread_id = $1
		ORDER BY created_at, id`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ForumPost
	for rows.Next() {
		var (
			p              domain.ForumPost
			userID, anonID sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ThreadID, &userID, &anonID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.UserID, p.AnonID = userID.String, anonID.String
		p.CreatedAt = p.CreatedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
