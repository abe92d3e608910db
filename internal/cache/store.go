// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	dbFile = "search-cache.db"

	// schemaVersion tags every persisted payload. Rows with an unknown
	// version are skipped on load rather than misread.
	schemaVersion = 1
)

// SQLiteStore persists cache entries as versioned JSON payloads in a SQLite
// database, one row per cache key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the cache database under dir.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		schema_version INTEGER NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

// Put writes or replaces the entry under key.
func (s *SQLiteStore) Put(key string, e *Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO entries (key, schema_version, payload, created_at)
		 VALUES (?, ?, ?, ?)`,
		key, schemaVersion, string(payload), e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// ListAll returns every stored entry keyed by cache key. Rows with an
// unknown schema version or an unreadable payload are skipped.
func (s *SQLiteStore) ListAll() (map[string]*Entry, error) {
	rows, err := s.db.Query(`SELECT key, schema_version, payload FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]*Entry)
	for rows.Next() {
		var key, payload string
		var version int
		if err := rows.Scan(&key, &version, &payload); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		if version != schemaVersion {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			continue
		}
		entries[key] = &e
	}
	return entries, rows.Err()
}

// Delete removes the entry under key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}
