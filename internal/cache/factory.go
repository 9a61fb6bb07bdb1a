package cache

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/escuriola/edaitorial/internal/logging"
)

// New builds the named backend. db is required for sqlite only.
func New(backend string, db *sql.DB, logger logging.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("cache: sqlite backend requires a database")
		}
		return NewSQLiteStore(db, logger)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", backend)
	}
}
