package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/internal/habits/store/drivers/sqlite"
	"github.com/aussiebroadwan/habits/pkg/cryptox"
	"github.com/aussiebroadwan/habits/pkg/jwtx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func fixedClock(now time.Time) Clock {
	return Clock{Now: func() time.Time { return now }, Location: time.UTC}
}

func newUserService(t *testing.T, st store.Store) *UserService {
	t.Helper()

	sessions, err := jwtx.NewSessionIssuer(jwtx.SessionOptions{
		Secret: []byte(strings.Repeat("k", 32)),
		Issuer: "habits-test",
	})
	require.NoError(t, err)

	return &UserService{
		Store:    st,
		Hasher:   cryptox.NewPasswordHasher("pepper"),
		Sessions: sessions,
	}
}

func signup(t *testing.T, st store.Store, email string) domain.User {
	t.Helper()
	u, err := newUserService(t, st).Signup(context.Background(), email, "correct horse")
	require.NoError(t, err)
	return u
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDay(s)
	require.NoError(t, err)
	return d
}
