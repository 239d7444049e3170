package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/pkg/cryptox"
	"github.com/aussiebroadwan/habits/pkg/idx"
	"github.com/aussiebroadwan/habits/pkg/jwtx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

type UserService struct {
	Store    store.Store
	Hasher   *cryptox.PasswordHasher
	Sessions *jwtx.SessionIssuer
	Clock    Clock
}

// Session is what a successful login hands back to the client.
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	Remember  bool
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrMissingFields
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Signup registers a new account.
func (s *UserService) Signup(ctx context.Context, email, password string) (domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.User{}, ErrMissingFields
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.Clock.now().UTC(),
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user signed up", "user_id", u.ID)
	return u, nil
}

// Login checks credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string, remember bool) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, ErrMissingFields
	}
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash unusable", "user_id", u.ID, "err", err)
		}
		return Session{}, ErrInvalidCredentials
	}

	token, exp, err := s.Sessions.Issue(u.ID, remember)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}

	return Session{UserID: u.ID, Token: token, ExpiresAt: exp, Remember: remember}, nil
}

// GetUser returns the user with id, or ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	if !idx.Valid(id) {
		return domain.User{}, ErrUserNotFound
	}
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}
