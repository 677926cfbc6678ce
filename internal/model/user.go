package model

// User mirrors the 'users' table. Timestamps are kept as the TEXT values
// SQLite produces (datetime('now')); nothing in the API does arithmetic on
// them, they are only echoed back to clients.
type User struct {
	ID           int64  // users.id
	Username     string // users.username (unique, case-insensitive)
	Email        string // users.email (unique, case-insensitive)
	DisplayName  string // users.display_name
	PasswordHash string // users.password_hash (bcrypt)
	CreatedAt    string // users.created_at
	UpdatedAt    string // users.updated_at
}
