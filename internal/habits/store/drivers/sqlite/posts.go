package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

type postsRepo struct {
	db dbtx
}

func (r *postsRepo) CreatePost(ctx context.Context, p domain.ForumPost) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO forum_posts (id, thread_id, user_id, anon_id, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ThreadID, nullString(p.UserID), nullString(p.AnonID), p.Content, formatTime(p.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *postsRepo) ListPostsByThread(ctx context.Context, threadID string) ([]domain.ForumPost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, thread_id, user_id, anon_id, content, created_at
		FROM forum_posts
		WHERE thread_id = ?
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
			created        string
		)
		if err := rows.Scan(&p.ID, &p.ThreadID, &userID, &anonID, &p.Content, &created); err != nil {
			return nil, err
		}
		p.UserID, p.AnonID = userID.String, anonID.String
		if p.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
