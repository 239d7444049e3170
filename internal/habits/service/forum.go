package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/pkg/cryptox"
	"github.com/aussiebroadwan/habits/pkg/idx"
)

const defaultThreadLimit = 100

type ForumService struct {
	Store store.Store
	Clock Clock

	// ThreadLimit caps ListThreads. Zero means defaultThreadLimit.
	ThreadLimit int
}

// Author identifies who is writing. UserID wins when set; otherwise the post
// is attributed to AnonID.
type Author struct {
	UserID string
	AnonID string
}

// NewAnonID returns a fresh anonymous participant identifier.
func NewAnonID() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize128)
}

func (a Author) normalize() (Author, error) {
	if a.UserID != "" {
		if !idx.Valid(a.UserID) {
			return Author{}, ErrUserNotFound
		}
		return Author{UserID: a.UserID}, nil
	}
	if a.AnonID == "" {
		id, err := NewAnonID()
		if err != nil {
			return Author{}, err
		}
		a.AnonID = id
	}
	return a, nil
}

func (s *ForumService) CreateThread(ctx context.Context, author Author, title, content string) (domain.ForumThread, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return domain.ForumThread{}, ErrMissingFields
	}
	author, err := author.normalize()
	if err != nil {
		return domain.ForumThread{}, err
	}

	t := domain.ForumThread{
		ID:        idx.New().String(),
		UserID:    author.UserID,
		AnonID:    author.AnonID,
		Title:     title,
		Content:   content,
		CreatedAt: s.Clock.now().UTC(),
	}
	if err := s.Store.Threads().CreateThread(ctx, t); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return domain.ForumThread{}, ErrUserNotFound
		}
		return domain.ForumThread{}, fmt.Errorf("create thread: %w", err)
	}
	return t, nil
}

// ListThreads returns the newest threads first.
func (s *ForumService) ListThreads(ctx context.Context) ([]domain.ForumThread, error) {
	limit := s.ThreadLimit
	if limit <= 0 {
		limit = defaultThreadLimit
	}
	threads, err := s.Store.Threads().ListThreads(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	if threads == nil {
		threads = []domain.ForumThread{}
	}
	return threads, nil
}

// ListPosts returns a thread's posts oldest first.
func (s *ForumService) ListPosts(ctx context.Context, threadID string) ([]domain.ForumPost, error) {
	if err := s.requireThread(ctx, threadID); err != nil {
		return nil, err
	}
	posts, err := s.Store.Posts().ListPostsByThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []domain.ForumPost{}
	}
	return posts, nil
}

func (s *ForumService) CreatePost(ctx context.Context, threadID string, author Author, content string) (domain.ForumPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.ForumPost{}, ErrMissingFields
	}
	if err := s.requireThread(ctx, threadID); err != nil {
		return domain.ForumPost{}, err
	}
	author, err := author.normalize()
	if err != nil {
		return domain.ForumPost{}, err
	}

	p := domain.ForumPost{
		ID:        idx.New().String(),
		ThreadID:  threadID,
		UserID:    author.UserID,
		AnonID:    author.AnonID,
		Content:   content,
		CreatedAt: s.Clock.now().UTC(),
	}
	if err := s.Store.Posts().CreatePost(ctx, p); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			// The thread was checked above, so this is the user.
			return domain.ForumPost{}, ErrUserNotFound
		}
		return domain.ForumPost{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (s *ForumService) requireThread(ctx context.Context, threadID string) error {
	if threadID == "" {
		return ErrThreadNotFound
	}
	if _, err := s.Store.Threads().GetThread(ctx, threadID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrThreadNotFound
		}
		return fmt.Errorf("get thread: %w", err)
	}
	return nil
}
