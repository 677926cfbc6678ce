package repository

import (
	"context"
	"database/sql"
	"time"
)

// SessionRepo persists login sessions. The sessions table is the authority
// on "who is logged in": the cookie only carries the raw token, and a row
// must exist (and not be expired) for a request to be authenticated.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// sqliteTime is the layout SQLite's datetime('now') produces; storing
// expirations in the same format lets SQL compare them directly.
const sqliteTime = "2006-01-02 15:04:05"

// Create stores a session row for the hashed token.
func (r *SessionRepo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt.UTC().Format(sqliteTime))
	return err
}

// Lookup resolves a token hash to a user id. Expired or unknown tokens both
// yield ErrNotFound.
func (r *SessionRepo) Lookup(ctx context.Context, tokenHash string) (int64, error) {
	var userID int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM sessions WHERE token_hash = ? AND expires_at > datetime('now') LIMIT 1",
		tokenHash).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return userID, err
}

// Delete removes a session. Removing a token that never existed succeeds;
// logout is idempotent.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = ?", tokenHash)
	return err
}

// DeleteExpired purges rows whose expiry has passed. Run at startup; expired
// sessions are already unusable, this just keeps the table small.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= datetime('now')")
	return err
}
