// Package localstate persists small device-scoped values, such as the
// preference prompt dismissal flag. It deliberately swallows storage
// errors: losing a flag only means one extra prompt.
package localstate

import (
	"database/sql"
	"path/filepath"

	"github.com/pkg/errors"

	// SQLite driver.
	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed key/value store under the app data dir.
type Store struct {
	db *sql.DB
}

// Open opens (and bootstraps) the local state database in dataDir.
func Open(dataDir string) (*Store, error) {
	dsn := filepath.Join(dataDir, "nightbloom_local.db")
	db, err := sql.Open("sqlite", dsn+"?_pragma=busy_timeout(10000)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open local state db with dsn %s", dsn)
	}
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create kv table")
	}
	return &Store{db: db}, nil
}

// Get returns the stored value. Absent keys and read errors both report
// false.
func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores the value, best-effort.
func (s *Store) Set(key, value string) {
	_, _ = s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
}

// Remove deletes the key, best-effort.
func (s *Store) Remove(key string) {
	_, _ = s.db.Exec("DELETE FROM kv WHERE key = ?", key)
}

func (s *Store) Close() error {
	return s.db.Close()
}
