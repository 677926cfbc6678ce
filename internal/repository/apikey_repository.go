package repository

import (
	"context"
	"database/sql"

	"promptforge.app/server/internal/model"
)

// APIKeyRepo persists encrypted API keys. One row per (user, key name),
// enforced by the unique index; saves are upserts so re-entering a key
// replaces the old ciphertext atomically. The cipher fields are only ever
// written as a triple coming straight from one Encrypt call.
type APIKeyRepo struct{ DB *sql.DB }

func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo { return &APIKeyRepo{DB: db} }

// Upsert inserts or replaces the encrypted key for (userID, keyName).
func (r *APIKeyRepo) Upsert(ctx context.Context, userID int64, keyName, encryptedKey, iv, authTag string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_api_keys (user_id, key_name, encrypted_key, iv, auth_tag)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, key_name) DO UPDATE SET
			encrypted_key = excluded.encrypted_key,
			iv            = excluded.iv,
			auth_tag      = excluded.auth_tag,
			updated_at    = datetime('now')`,
		userID, keyName, encryptedKey, iv, authTag)
	return err
}

// Get fetches one encrypted key. ErrNotFound when the user has no key under
// that name.
func (r *APIKeyRepo) Get(ctx context.Context, userID int64, keyName string) (model.APIKey, error) {
	var k model.APIKey
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, key_name, encrypted_key, iv, auth_tag, created_at, updated_at
		 FROM user_api_keys WHERE user_id = ? AND key_name = ? LIMIT 1`,
		userID, keyName).
		Scan(&k.ID, &k.UserID, &k.KeyName, &k.EncryptedKey, &k.IV, &k.AuthTag, &k.CreatedAt, &k.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.APIKey{}, ErrNotFound
	}
	return k, err
}

// ListByUser returns all of a user's encrypted keys, oldest first.
func (r *APIKeyRepo) ListByUser(ctx context.Context, userID int64) ([]model.APIKey, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, key_name, encrypted_key, iv, auth_tag, created_at, updated_at
		 FROM user_api_keys WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.KeyName, &k.EncryptedKey, &k.IV, &k.AuthTag, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes a key. Deleting a name that does not exist is not an error.
func (r *APIKeyRepo) Delete(ctx context.Context, userID int64, keyName string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_api_keys WHERE user_id = ? AND key_name = ?", userID, keyName)
	return err
}
