// Package sqlite implements the jugglevault store on SQLite via the
// modernc.org driver. It provides the typed CRUD surface used by the CLI
// and the table-level access port consumed by the backup and restore
// engines: ReadAllRows, ClearTable, InsertRows, and a consistent
// cross-table snapshot read.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// Store is the live relational store. One instance is created at process
// start, passed explicitly to whoever needs it, and closed at shutdown.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	config types.Config
	open   bool
}

// Compile-time port checks.
var (
	_ types.Store       = (*Store)(nil)
	_ types.Snapshotter = (*Store)(nil)
)

// Open creates the data directory if needed, opens (or creates) the
// database file, applies the schema, and returns a ready Store.
func Open(config types.Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(config.DataDir, "jugglevault.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, config: config, open: true}, nil
}

// Close releases the database connection. Close is idempotent; after it
// returns, all operations fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// SchemaVersion returns the store's current schema version (PRAGMA
// user_version). Backup metadata records it; restore gates on it.
func (s *Store) SchemaVersion() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return 0, types.ErrStoreClosed
	}
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// timeString formats a timestamp for storage. All timestamps are stored as
// RFC 3339 UTC strings.
func timeString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a stored RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// nullString converts an optional text field for storage.
func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// nullInt64 converts an optional integer field for storage.
func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// strPtr converts a nullable column back to an optional field.
func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// int64Ptr converts a nullable column back to an optional field.
func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// timePtr converts a nullable timestamp column back to an optional field.
func timePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
