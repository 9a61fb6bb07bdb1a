// Package storage opens the SQLite database shared by the cache, the node
// registry and the analysis history.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// DBFileName is the database file created under the storage root.
const DBFileName = "edaitorial.db"

var pragmas = []string{
	"PRAGMA journal_mode=WAL",   // concurrent readers with one writer
	"PRAGMA synchronous=NORMAL", // durable enough with WAL
	"PRAGMA foreign_keys=ON",    // enforce constraints
	"PRAGMA busy_timeout=5000",  // wait up to 5 seconds on locked database
	"PRAGMA temp_store=MEMORY",  // temp tables in memory
	"PRAGMA cache_size=-16000",  // 16MB page cache (negative means KB)
}

// Open opens (creating if needed) the database at root/DBFileName and sets
// pragmas. root ":memory:" opens a private in-memory database limited to a
// single connection so every query sees the same data.
func Open(root string) (*sql.DB, error) {
	dsn := ":memory:"
	if root != ":memory:" {
		if root == "" {
			return nil, fmt.Errorf("storage root is required")
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("ensure storage root %s: %w", root, err)
		}
		dsn = filepath.Join(root, DBFileName)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}

// ApplySchema executes a package's embedded schema. Schemas must be
// idempotent (CREATE ... IF NOT EXISTS).
func ApplySchema(db *sql.DB, schema string) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
