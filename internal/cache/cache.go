// Package cache is the determinism layer: results keyed by a content
// fingerprint so unchanged content gets the same answer within the TTL even
// though the AI backend is not deterministic.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/escuriola/edaitorial/internal/model"
)

// fingerprintSeparator cannot appear in ordinary text, so ("ab","c") and
// ("a","bc") hash differently.
const fingerprintSeparator = "\x1e"

// Fingerprint is the hex SHA-256 of title, separator, body.
func Fingerprint(title, body string) string {
	sum := sha256.Sum256([]byte(title + fingerprintSeparator + body))
	return hex.EncodeToString(sum[:])
}

// Store is a TTL-bounded keyed store of analysis results. Implementations are
// safe for concurrent use; concurrent writers of one key resolve as last write
// wins.
type Store interface {
	// Get returns the stored result for key when it has not expired.
	Get(ctx context.Context, key string) (*model.AnalysisResult, bool, error)

	// Set stores res under key for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, res *model.AnalysisResult, ttl time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Purge drops expired entries and reports how many were removed.
	Purge(ctx context.Context) (int, error)

	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Entries are stored encoded so a stored result is immutable: callers
// mutating what Get returned cannot alter the cache.
func encode(res *model.AnalysisResult) ([]byte, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode cached result: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*model.AnalysisResult, error) {
	var res model.AnalysisResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &res, nil
}
