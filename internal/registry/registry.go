package registry

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/storage"
	"github.com/escuriola/edaitorial/internal/utils"
)

//go:embed schema.sql
var schemaSQL string

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrTitleEmpty   = errors.New("node title is empty")
)

// Registry stores the content nodes known to the system. Its recent entries
// are the "other known content" sample sent to the backend and used by the
// link checker.
type Registry struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewRegistry returns a Registry and runs migrations from schema.sql.
func NewRegistry(db *sql.DB, logger logging.Logger) (*Registry, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if err := storage.ApplySchema(db, schemaSQL); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return &Registry{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "registry"}),
		now:    time.Now,
	}, nil
}

// UpsertNode inserts n or updates the existing node with the same ID. An
// empty ID gets a fresh UUID. Absolute URLs are normalized.
func (r *Registry) UpsertNode(ctx context.Context, n model.Node) (*model.Node, error) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return nil, ErrTitleEmpty
	}
	n.ID = strings.TrimSpace(n.ID)
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.URL = strings.TrimSpace(n.URL)
	if utils.IsHTTP(n.URL) {
		if norm, err := utils.NormalizeURL(n.URL, ""); err == nil {
			n.URL = norm
		}
	}

	now := r.now().UnixNano()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO nodes (id, title, url, content_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title = excluded.title,
  url = excluded.url,
  content_type = excluded.content_type,
  updated_at = excluded.updated_at`,
		n.ID, n.Title, n.URL, n.ContentType, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert node %s: %w", n.ID, err)
	}

	r.logger.Debug("node upserted", logging.Field{Key: "node_id", Value: n.ID})
	return r.GetNode(ctx, n.ID)
}

// GetNode returns the node with id or ErrNodeNotFound.
func (r *Registry) GetNode(ctx context.Context, id string) (*model.Node, error) {
	var n model.Node
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, url, content_type, created_at, updated_at FROM nodes WHERE id = ?`, id).
		Scan(&n.ID, &n.Title, &n.URL, &n.ContentType, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	return &n, nil
}

// ListRecent returns up to limit nodes, most recently updated first.
// A non-positive limit returns every node.
func (r *Registry) ListRecent(ctx context.Context, limit int) ([]model.Node, error) {
	return r.listRecent(ctx, limit, "")
}

// RecentNodes returns the bounded known-node sample, excluding excludeID.
func (r *Registry) RecentNodes(ctx context.Context, limit int, excludeID string) ([]model.NodeRef, error) {
	nodes, err := r.listRecent(ctx, limit, excludeID)
	if err != nil {
		return nil, err
	}
	refs := make([]model.NodeRef, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, n.Ref())
	}
	return refs, nil
}

func (r *Registry) listRecent(ctx context.Context, limit int, excludeID string) ([]model.Node, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, url, content_type, created_at, updated_at
FROM nodes
WHERE id <> ?
ORDER BY updated_at DESC, rowid DESC
LIMIT ?`, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var out []model.Node
	for rows.Next() {
		var n model.Node
		if err := rows.Scan(&n.ID, &n.Title, &n.URL, &n.ContentType, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNode removes a node. Deleting an unknown node returns ErrNodeNotFound.
func (r *Registry) DeleteNode(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return nil
}
