package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"promptforge.app/server/internal/database"
)

// newTestDB opens a throwaway database with the full schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser registers a user directly through the repo and returns its id.
func seedUser(t *testing.T, db *sql.DB, username, email string) int64 {
	t.Helper()
	id, err := NewUserRepo(db).Create(context.Background(), username, email, "Test User", "$2a$04$fakehash")
	require.NoError(t, err)
	return id
}
