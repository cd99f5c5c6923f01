package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
)

// UserRepo provides data access for users table using sqlx.
// Queries are written with '?' bindvars and rebound for the active driver.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, password_hash, created_at`

// Create inserts a new user row and returns its generated id.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	q := r.db.Rebind(`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := r.db.QueryRowxContext(ctx, q, u.Username, u.Email, u.PasswordHash, u.CreatedAt.UTC()).Scan(&id); err != nil {
		return 0, errors.Wrap(database.Translate(err), "failed to create user")
	}
	u.ID = id
	return id, nil
}

// GetByID fetches a user row or returns sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to get user %d", id)
	}
	return &u, nil
}

// List returns every user, newest first.
func (r *UserRepo) List(ctx context.Context) ([]entity.User, error) {
	users := []entity.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

// Exists reports whether a user with the id exists.
func (r *UserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE id = ?`, id)
}

// UsernameTaken reports whether the username is already registered.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, username)
}

// EmailTaken reports whether the (normalized) email is already registered.
func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, email)
}

func (r *UserRepo) exists(ctx context.Context, q string, arg any) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, r.db.Rebind(q+` LIMIT 1`), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to check user existence")
	}
	return true, nil
}
