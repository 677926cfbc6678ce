package repository

import (
	"context"
	"database/sql"

	"promptforge.app/server/internal/model"
)

// PromptRepo persists saved prompts and serves the community listing.
type PromptRepo struct{ DB *sql.DB }

func NewPromptRepo(db *sql.DB) *PromptRepo { return &PromptRepo{DB: db} }

// Create inserts a prompt and returns it with id and created_at filled in.
func (r *PromptRepo) Create(ctx context.Context, userID int64, description, formData string, isPublic bool) (model.Prompt, error) {
	p := model.Prompt{UserID: userID, Description: description, FormData: formData, IsPublic: isPublic}
	pub := 0
	if isPublic {
		pub = 1
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO prompts (user_id, description, form_data, is_public)
		 VALUES (?, ?, ?, ?) RETURNING id, created_at`,
		userID, description, formData, pub).
		Scan(&p.ID, &p.CreatedAt)
	return p, err
}

// ListByUser returns a user's prompts, newest first.
func (r *PromptRepo) ListByUser(ctx context.Context, userID int64) ([]model.Prompt, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, description, form_data, created_at, is_public
		 FROM prompts WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrompts(rows, false)
}

// ListPublic returns all shared prompts joined with their authors, newest
// first. This is the only unauthenticated read path.
func (r *PromptRepo) ListPublic(ctx context.Context) ([]model.Prompt, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.description, p.form_data, p.created_at, p.is_public,
		        u.display_name, u.username
		 FROM prompts p JOIN users u ON p.user_id = u.id
		 WHERE p.is_public = 1
		 ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrompts(rows, true)
}

// SetVisibility flips the is_public flag on a prompt owned by userID.
// ErrNotFound when the prompt does not exist or belongs to someone else.
func (r *PromptRepo) SetVisibility(ctx context.Context, userID, promptID int64, isPublic bool) error {
	pub := 0
	if isPublic {
		pub = 1
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE prompts SET is_public = ? WHERE id = ? AND user_id = ?", pub, promptID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a prompt owned by userID. Missing rows are not an error.
func (r *PromptRepo) Delete(ctx context.Context, userID, promptID int64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM prompts WHERE id = ? AND user_id = ?", promptID, userID)
	return err
}

// Count returns the total number of prompt rows; the legacy import uses it
// as its "already migrated" marker.
func (r *PromptRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM prompts").Scan(&n)
	return n, err
}

func scanPrompts(rows *sql.Rows, withAuthor bool) ([]model.Prompt, error) {
	var out []model.Prompt
	for rows.Next() {
		var p model.Prompt
		var pub int
		var err error
		if withAuthor {
			err = rows.Scan(&p.ID, &p.UserID, &p.Description, &p.FormData, &p.CreatedAt, &pub,
				&p.AuthorName, &p.AuthorUsername)
		} else {
			err = rows.Scan(&p.ID, &p.UserID, &p.Description, &p.FormData, &p.CreatedAt, &pub)
		}
		if err != nil {
			return nil, err
		}
		p.IsPublic = pub != 0
		out = append(out, p)
	}
	return out, rows.Err()
}
