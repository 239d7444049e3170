package sqlite

import (
	"context"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, created_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *usersRepo) getOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var (
		u       domain.User
		created string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
