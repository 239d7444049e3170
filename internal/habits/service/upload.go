package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
	"github.com/aussiebroadwan/habits/internal/habits/filestore"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/pkg/idx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

type UploadService struct {
	Store store.Store
	Files *filestore.Store
	Clock Clock

	// MaxBytes caps a single upload. Zero means unlimited.
	MaxBytes int64
}

// Upload stores r as userID's filename and records its metadata. Uploading
// the same name again replaces the file and refreshes the row.
func (s *UploadService) Upload(ctx context.Context, userID, filename string, r io.Reader) (domain.Upload, error) {
	if userID == "" || filename == "" || r == nil {
		return domain.Upload{}, ErrMissingFields
	}
	if !idx.Valid(userID) {
		return domain.Upload{}, ErrUserNotFound
	}
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Upload{}, ErrUserNotFound
		}
		return domain.Upload{}, fmt.Errorf("lookup user: %w", err)
	}

	saved, err := s.Files.Save(userID, filename, r, s.MaxBytes)
	switch {
	case errors.Is(err, filestore.ErrInvalidFilename):
		return domain.Upload{}, ErrInvalidFilename
	case errors.Is(err, filestore.ErrInvalidUserID):
		return domain.Upload{}, ErrUserNotFound
	case errors.Is(err, filestore.ErrTooLarge):
		return domain.Upload{}, ErrFileTooLarge
	case err != nil:
		return domain.Upload{}, fmt.Errorf("save file: %w", err)
	}

	clean, _ := filestore.CleanFilename(filename)
	row, err := s.Store.Uploads().UpsertUpload(ctx, domain.Upload{
		ID:         idx.New().String(),
		UserID:     userID,
		Filename:   clean,
		FileHash:   saved.Hash,
		Size:       saved.Size,
		UploadedAt: s.Clock.now().UTC(),
	})
	if err != nil {
		// The file stays on disk; without a row the janitor treats it as an
		// orphan on its next pass.
		return domain.Upload{}, fmt.Errorf("record upload: %w", err)
	}

	slogx.FromContext(ctx).Info("file uploaded",
		"user_id", userID,
		"filename", clean,
		"size", saved.Size,
		"sha256", saved.Hash,
	)
	return row, nil
}

// ListUploads returns userID's uploads, newest first.
func (s *UploadService) ListUploads(ctx context.Context, userID string) ([]domain.Upload, error) {
	if userID == "" {
		return nil, ErrMissingFields
	}
	uploads, err := s.Store.Uploads().ListUploadsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	if uploads == nil {
		uploads = []domain.Upload{}
	}
	return uploads, nil
}
