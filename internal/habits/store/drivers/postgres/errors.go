package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/aussiebroadwan/habits/internal/habits/store"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapConstraint(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case foreignKeyViolation:
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

const dayLayout = "2006-01-02"

func formatDay(t time.Time) string { return t.Format(dayLayout) }

// DATE columns come back at midnight in whatever zone the driver picked.
func normalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}
