package repository

import (
	"context"
	"database/sql"
	"strings"

	"promptforge.app/server/internal/model"
)

// UserRepo provides persistence for user identities. Uniqueness of username
// and email is enforced by the NOCASE unique indexes in the schema, so two
// racing registrations cannot both succeed; the error mapping here just
// translates the constraint violation into a sentinel.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The password must already be
// hashed; this layer never sees plaintext credentials.
func (r *UserRepo) Create(ctx context.Context, username, email, displayName, passwordHash string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, display_name, password_hash) VALUES (?,?,?,?)",
		username, email, displayName, passwordHash)
	if err != nil {
		return 0, mapUserConstraint(err)
	}
	return res.LastInsertId()
}

// GetByLogin fetches a user whose username OR email matches the identifier,
// case-insensitively. Returns ErrNotFound when no row matches.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, email, display_name, password_hash, created_at, updated_at
		 FROM users WHERE username = ? OR email = ? LIMIT 1`,
		login, login).
		Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, email, display_name, password_hash, created_at, updated_at
		 FROM users WHERE id = ? LIMIT 1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// FirstUserID returns the lowest user id, used by the legacy import to pick
// an owner for unowned records. ErrNotFound when no user exists yet.
func (r *UserRepo) FirstUserID(ctx context.Context) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, "SELECT id FROM users ORDER BY id LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return id, err
}

// UpdateProfile changes display name and email, bumping updated_at. Email
// uniqueness excluding the user themselves maps to ErrEmailInUse.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, displayName, email string) error {
	var existing int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email = ? AND id != ? LIMIT 1", email, id).Scan(&existing)
	if err == nil {
		return ErrEmailInUse
	}
	if err != sql.ErrNoRows {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET display_name = ?, email = ?, updated_at = datetime('now') WHERE id = ?",
		displayName, email, id)
	if err != nil {
		// The constraint remains the authority if another request won the race.
		if mapped := mapUserConstraint(err); mapped == ErrEmailTaken {
			return ErrEmailInUse
		}
	}
	return err
}

// UpdatePassword replaces the stored hash, bumping updated_at.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = datetime('now') WHERE id = ?",
		passwordHash, id)
	return err
}

// mapUserConstraint turns SQLite unique-constraint failures on the users
// table into sentinel errors.
func mapUserConstraint(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	}
	return err
}
