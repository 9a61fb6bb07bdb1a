package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists entries so results survive restarts and are shared by
// every process using the same database.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewSQLiteStore applies the cache schema to db. The caller owns db.
func NewSQLiteStore(db *sql.DB, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if err := storage.ApplySchema(db, schemaSQL); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &SQLiteStore{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "cache"}),
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source. Intended for tests.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*model.AnalysisResult, bool, error) {
	var data string
	var expires int64
	err := s.db.QueryRowContext(ctx,
		`SELECT result, expires_at FROM analysis_cache WHERE fingerprint = ?`, key).Scan(&data, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if s.now().UnixNano() >= expires {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM analysis_cache WHERE fingerprint = ? AND expires_at = ?`, key, expires); err != nil {
			s.logger.Warn("failed to drop expired cache entry", logging.Field{Key: "error", Value: err})
		}
		return nil, false, nil
	}
	res, err := decode([]byte(data))
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, res *model.AnalysisResult, ttl time.Duration) error {
	if ttl <= 0 || res == nil {
		return nil
	}
	b, err := encode(res)
	if err != nil {
		return err
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analysis_cache (fingerprint, result, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		key, string(b), now.UnixNano(), now.Add(ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE fingerprint = ?`, key); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Purge(ctx context.Context) (int, error) {
	r, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	n, _ := r.RowsAffected()
	return int(n), nil
}

// Close is a no-op: the database belongs to the caller.
func (s *SQLiteStore) Close() error { return nil }
