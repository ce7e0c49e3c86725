package postgres

import "context"

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Ensure upserts the user row; repeated calls are no-ops.
func (r *UserRepo) Ensure(ctx context.Context, id string) error {
	const q = `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}
