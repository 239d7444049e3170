package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrInvalidReference is returned when a write points at a parent row
	// (user, habit, thread) that does not exist.
	ErrInvalidReference = errors.New("store: invalid reference")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Repositories hang off it so that a Tx can hand out the
// same repositories bound to the transaction.
type Store interface {
	Users() Users
	Habits() Habits
	Completions() Completions
	Threads() Threads
	Posts() Posts
	Uploads() Uploads

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type Habits interface {
	CreateHabit(ctx context.Context, h domain.Habit) error
	GetHabit(ctx context.Context, id string) (domain.Habit, error)

	// ListHabitsByUser returns the user's habits, oldest first.
	ListHabitsByUser(ctx context.Context, userID string) ([]domain.Habit, error)

	// DeleteHabit removes the habit only when owned by userID. Returns
	// ErrNotFound otherwise.
	DeleteHabit(ctx context.Context, id, userID string) error
}

type Completions interface {
	// MarkCompletion inserts the completion unless one already exists for
	// the same habit and day. Reports whether a row was written.
	MarkCompletion(ctx context.Context, c domain.HabitCompletion) (bool, error)

	// UnmarkCompletion deletes the completion if present. Absence is not an
	// error.
	UnmarkCompletion(ctx context.Context, habitID, userID string, day time.Time) error

	// ListCompletionsByUser returns the user's completions with from <= day
	// <= to, ordered by day then habit.
	ListCompletionsByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.HabitCompletion, error)

	DeleteCompletionsByHabit(ctx context.Context, habitID string) error
}

type Threads interface {
	CreateThread(ctx context.Context, t domain.ForumThread) error
	GetThread(ctx context.Context, id string) (domain.ForumThread, error)

	// ListThreads returns threads newest first.
	ListThreads(ctx context.Context, limit int) ([]domain.ForumThread, error)
}

type Posts interface {
	// CreatePost returns ErrInvalidReference when the thread does not exist.
	CreatePost(ctx context.Context, p domain.ForumPost) error

	// ListPostsByThread returns posts oldest first.
	ListPostsByThread(ctx context.Context, threadID string) ([]domain.ForumPost, error)
}

type Uploads interface {
	// UpsertUpload records u, replacing any existing row for the same user
	// and filename. The stored row is returned; its ID is the surviving one.
	UpsertUpload(ctx context.Context, u domain.Upload) (domain.Upload, error)

	ListUploads(ctx context.Context) ([]domain.Upload, error)
	ListUploadsByUser(ctx context.Context, userID string) ([]domain.Upload, error)
	DeleteUpload(ctx context.Context, id string) error
}
