package sqlite

import (
	"context"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

type uploadsRepo struct {
	db dbtx
}

const uploadColumns = `id, user_id, filename, filehash, size, uploaded_at`

func (r *uploadsRepo) UpsertUpload(ctx context.Context, u domain.Upload) (domain.Upload, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO uploads (id, user_id, filename, filehash, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, filename) DO UPDATE SET
			filehash    = excluded.filehash,
			size        = excluded.size,
			uploaded_at = excluded.uploaded_at
		RETURNING `+uploadColumns,
		u.ID, u.UserID, u.Filename, u.FileHash, u.Size, formatTime(u.UploadedAt),
	)
	stored, err := scanUpload(row)
	if err != nil {
		return domain.Upload{}, mapConstraint(err)
	}
	return stored, nil
}

func (r *uploadsRepo) ListUploads(ctx context.Context) ([]domain.Upload, error) {
	return r.list(ctx, `SELECT `+uploadColumns+` FROM uploads ORDER BY user_id, filename`)
}

func (r *uploadsRepo) ListUploadsByUser(ctx context.Context, userID string) ([]domain.Upload, error) {
	return r.list(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE user_id = ? ORDER BY uploaded_at DESC, id DESC`, userID)
}

func (r *uploadsRepo) DeleteUpload(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *uploadsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Upload, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUpload(s scanner) (domain.Upload, error) {
	var (
		u        domain.Upload
		uploaded string
	)
	if err := s.Scan(&u.ID, &u.UserID, &u.Filename, &u.FileHash, &u.Size, &uploaded); err != nil {
		return domain.Upload{}, err
	}
	var err error
	if u.UploadedAt, err = parseTime(uploaded); err != nil {
		return domain.Upload{}, err
	}
	return u, nil
}
