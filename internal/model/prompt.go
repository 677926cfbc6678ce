package model

// Prompt mirrors the 'prompts' table. FormData is the raw JSON blob the form
// UI produced; the server stores and returns it without interpreting it.
type Prompt struct {
	ID          int64
	UserID      int64
	Description string
	FormData    string // JSON as stored
	CreatedAt   string
	IsPublic    bool

	// Author fields are populated only by the community listing join.
	AuthorName     string
	AuthorUsername string
}
