// Package migrate performs the one-time import of the legacy prompts.json
// flat file into the prompts table. It runs on every startup and must be
// safe to run forever: each guard below turns the call into a no-op rather
// than an error, and the source file is only consumed after a successful
// commit.
package migrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"promptforge.app/server/internal/repository"
)

// legacyPrompt is one record of the old flat-file store. The format was
// loose: some files held full records, others bare form-data objects, so
// every field is optional.
type legacyPrompt struct {
	Description string          `json:"description"`
	FormData    json.RawMessage `json:"formData"`
	CreatedAt   string          `json:"createdAt"`
}

// MigrateLegacyPrompts imports dataDir/prompts.json, assigning every record
// to the first-registered user. Guards, in order:
//
//  1. no source file               -> nothing to do
//  2. prompts table already filled -> migration presumed done, even if the
//     file reappeared from a backup
//  3. unparseable or empty file    -> leave the file for a fix-and-retry
//  4. no user registered yet       -> leave the file; retried next startup
//
// All inserts happen in one transaction; on success the file is renamed to
// prompts.json.migrated so guard 1 skips it from then on.
func MigrateLegacyPrompts(db *sql.DB, dataDir string) error {
	src := filepath.Join(dataDir, "prompts.json")
	if _, err := os.Stat(src); err != nil {
		return nil
	}
	ctx := context.Background()

	count, err := repository.NewPromptRepo(db).Count(ctx)
	if err != nil {
		return fmt.Errorf("count prompts: %w", err)
	}
	if count > 0 {
		return nil
	}

	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	records, ok := parseLegacyPrompts(raw)
	if !ok {
		log.Printf("migrate: %s is not a prompt list, leaving it untouched", src)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	ownerID, err := repository.NewUserRepo(db).FirstUserID(ctx)
	if err == repository.ErrNotFound {
		log.Printf("migrate: no users registered yet, will retry on next startup")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find first user: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range records {
		if _, err := tx.Exec(
			"INSERT INTO prompts (user_id, description, form_data, created_at) VALUES (?, ?, ?, ?)",
			ownerID, p.Description, string(p.FormData), p.CreatedAt); err != nil {
			return fmt.Errorf("insert prompt: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if err := os.Rename(src, src+".migrated"); err != nil {
		// The import itself succeeded and guard 2 prevents a re-import, so
		// a failed rename is only worth a warning.
		log.Printf("migrate: could not mark %s as consumed: %v", src, err)
	}
	log.Printf("migrate: imported %d legacy prompts (assigned to user #%d)", len(records), ownerID)
	return nil
}

// parseLegacyPrompts decodes the file as a JSON array and normalizes each
// record: missing descriptions get a default, records without a formData
// field are treated as bare form data, missing timestamps become now.
func parseLegacyPrompts(raw []byte) ([]legacyPrompt, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	out := make([]legacyPrompt, 0, len(items))
	for _, item := range items {
		var p legacyPrompt
		if err := json.Unmarshal(item, &p); err != nil {
			p = legacyPrompt{}
		}
		if p.Description == "" {
			p.Description = "Imported prompt"
		}
		if len(p.FormData) == 0 {
			p.FormData = item
		}
		if p.CreatedAt == "" {
			p.CreatedAt = now
		}
		out = append(out, p)
	}
	return out, true
}
