// Package history remembers the last confirmed selection per compose
// project so a later run can pre-seed the checklist (--resume).
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a small sqlite-backed map: project key -> last selection.
// Failures here must never break a run; callers treat errors as soft.
type Store struct {
	path string
}

// New returns a store at path. The file and its parent directory are
// created lazily on first write.
func New(path string) Store {
	return Store{path: path}
}

// DefaultPath places the history db under the user's cache dir.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dstart", "history.sqlite"), nil
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage: WAL enables one writer + many
	// readers; busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS selections (
		project    TEXT PRIMARY KEY,
		services   TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Load returns the last saved selection for project, or nil when none is
// recorded.
func (s Store) Load(ctx context.Context, project string) ([]string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var raw string
	err = db.QueryRowContext(ctx, `SELECT services FROM selections WHERE project = ?`, project).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var services []string
	if err := json.Unmarshal([]byte(raw), &services); err != nil {
		return nil, err
	}
	return services, nil
}

// Save records services as the last selection for project, replacing any
// earlier entry.
func (s Store) Save(ctx context.Context, project string, services []string) error {
	raw, err := json.Marshal(services)
	if err != nil {
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO selections(project, services, updated_at) VALUES(?, ?, ?)`,
		project, string(raw), time.Now().UTC().Format(time.RFC3339))
	return err
}

// ProjectKey derives the history key for a run: the absolute path of the
// first compose file.
func ProjectKey(files []string) string {
	if len(files) == 0 {
		return ""
	}
	abs, err := filepath.Abs(files[0])
	if err != nil {
		return files[0]
	}
	return abs
}
