package tracker

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/escuriola/edaitorial/internal/assessor"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

var (
	ErrNodeIDEmpty    = errors.New("node id is empty")
	ErrEntryNotFound  = errors.New("analysis entry not found")
	ErrNoHistory      = errors.New("not enough history to compare")
	ErrNodeIDMismatch = errors.New("entries belong to different nodes")
)

// SQLiteTracker implements Tracker on the shared SQLite database.
type SQLiteTracker struct {
	db     *sql.DB
	logger logging.Logger
	config *Config
	now    func() time.Time
}

// NewSQLiteTracker applies the history schema to db. The caller owns db.
// If config is nil, default configuration is used.
func NewSQLiteTracker(db *sql.DB, logger logging.Logger, config *Config) (*SQLiteTracker, error) {
	if logger == nil {
		return nil, errors.New("tracker: nil logger provided")
	}
	if config == nil {
		config = &Config{}
	}
	if err := storage.ApplySchema(db, schemaSQL); err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}
	return &SQLiteTracker{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "tracker"}),
		config: config,
		now:    time.Now,
	}, nil
}

func (t *SQLiteTracker) Record(ctx context.Context, nodeID string, content model.Content, res *model.AnalysisResult) (*Entry, error) {
	if nodeID == "" {
		return nil, ErrNodeIDEmpty
	}
	if res == nil {
		return nil, errors.New("tracker: nil result")
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	e := &Entry{
		ID:          uuid.NewString(),
		NodeID:      nodeID,
		Fingerprint: res.Fingerprint,
		Title:       content.Title,
		Body:        content.Body,
		Result:      res,
		CreatedAt:   t.now().UTC(),
	}
	_, err = t.db.ExecContext(ctx, `
INSERT INTO analyses (id, node_id, fingerprint, overall_score, score_class, source, title, body, result, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nodeID, res.Fingerprint, res.OverallScore, string(res.ScoreClass), string(res.Source),
		content.Title, content.Body, string(data), e.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("record analysis: %w", err)
	}

	if t.config.MaxHistory > 0 {
		if err := t.prune(ctx, nodeID); err != nil {
			t.logger.Warn("failed to prune history",
				logging.Field{Key: "node_id", Value: nodeID},
				logging.Field{Key: "error", Value: err})
		}
	}

	t.logger.Debug("analysis recorded",
		logging.Field{Key: "node_id", Value: nodeID},
		logging.Field{Key: "entry_id", Value: e.ID},
		logging.Field{Key: "score", Value: res.OverallScore})
	return e, nil
}

func (t *SQLiteTracker) prune(ctx context.Context, nodeID string) error {
	_, err := t.db.ExecContext(ctx, `
DELETE FROM analyses
WHERE node_id = ? AND id NOT IN (
  SELECT id FROM analyses WHERE node_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
)`, nodeID, nodeID, t.config.MaxHistory)
	return err
}

const entryColumns = `id, node_id, fingerprint, title, body, result, created_at`

func scanEntry(sc interface{ Scan(...any) error }) (*Entry, error) {
	var e Entry
	var data string
	var created int64
	if err := sc.Scan(&e.ID, &e.NodeID, &e.Fingerprint, &e.Title, &e.Body, &data, &created); err != nil {
		return nil, err
	}
	var res model.AnalysisResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", e.ID, err)
	}
	e.Result = &res
	e.CreatedAt = time.Unix(0, created).UTC()
	return &e, nil
}

func (t *SQLiteTracker) List(ctx context.Context, nodeID string, limit int) ([]*Entry, error) {
	if nodeID == "" {
		return nil, ErrNodeIDEmpty
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := t.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM analyses WHERE node_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		nodeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t *SQLiteTracker) Get(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(t.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM analyses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return e, nil
}

func (t *SQLiteTracker) Compare(ctx context.Context, nodeID string) (*Comparison, error) {
	entries, err := t.List(ctx, nodeID, 2)
	if err != nil {
		return nil, err
	}
	if len(entries) < 2 {
		return nil, fmt.Errorf("%w: node %s has %d analyses", ErrNoHistory, nodeID, len(entries))
	}
	return compare(entries[1], entries[0]), nil
}

func (t *SQLiteTracker) CompareEntries(ctx context.Context, baseID, headID string) (*Comparison, error) {
	base, err := t.Get(ctx, baseID)
	if err != nil {
		return nil, err
	}
	head, err := t.Get(ctx, headID)
	if err != nil {
		return nil, err
	}
	if base.NodeID != head.NodeID {
		return nil, fmt.Errorf("%w: %s vs %s", ErrNodeIDMismatch, base.NodeID, head.NodeID)
	}
	return compare(base, head), nil
}

func compare(base, head *Entry) *Comparison {
	chunks := textChunks("title", base.Title, head.Title)
	chunks = append(chunks, textChunks("body", base.Body, head.Body)...)
	if chunks == nil {
		chunks = []Chunk{}
	}
	return &Comparison{
		NodeID:         head.NodeID,
		BaseID:         base.ID,
		HeadID:         head.ID,
		Scores:         assessor.DiffScores(base.Result, head.Result),
		Chunks:         chunks,
		ContentChanged: base.Fingerprint != head.Fingerprint,
	}
}

// Close is a no-op: the database belongs to the caller.
func (t *SQLiteTracker) Close() error { return nil }
