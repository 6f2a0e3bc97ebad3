package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/model"
)

// UserRepo reads and writes the `users` table. It is bound to either the
// store or a transaction.
type UserRepo struct{ q database.Querier }

func NewUserRepo(q database.Querier) *UserRepo { return &UserRepo{q: q} }

// Create inserts a user. A duplicate username yields ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)",
		u.ID, u.Username, u.PasswordHash, u.CreatedAt)
	return translate(err)
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.q.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// UsernameExists reports whether the exact username is taken.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&n)
	return n > 0, err
}
