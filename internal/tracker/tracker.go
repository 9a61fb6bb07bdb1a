package tracker

import (
	"context"

	"github.com/escuriola/edaitorial/internal/model"
)

// Tracker is the minimal cross-package contract for recording analysis
// history per content node. Implementations should be safe for concurrent use.
type Tracker interface {
	// Record stores one analysis of content under nodeID.
	Record(ctx context.Context, nodeID string, content model.Content, res *model.AnalysisResult) (*Entry, error)

	// List returns up to limit entries for nodeID, newest first.
	List(ctx context.Context, nodeID string, limit int) ([]*Entry, error)

	// Get returns one entry by id.
	Get(ctx context.Context, id string) (*Entry, error)

	// Compare diffs the two most recent analyses of nodeID.
	Compare(ctx context.Context, nodeID string) (*Comparison, error)

	// CompareEntries diffs two specific entries of the same node.
	CompareEntries(ctx context.Context, baseID, headID string) (*Comparison, error)

	Close() error
}
