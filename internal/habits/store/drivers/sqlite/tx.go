package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/habits/internal/habits/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users             { return &usersRepo{db: t.tx} }
func (t *txStore) Habits() store.Habits           { return &habitsRepo{db: t.tx} }
func (t *txStore) Completions() store.Completions { return &completionsRepo{db: t.tx} }
func (t *txStore) Threads() store.Threads         { return &threadsRepo{db: t.tx} }
func (t *txStore) Posts() store.Posts             { return &postsRepo{db: t.tx} }
func (t *txStore) Uploads() store.Uploads         { return &uploadsRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil }
