// Package analyzer drives one content item through the checking backend,
// normalization and scoring, with the determinism cache and the fallback
// chain batch -> per-checker -> rules in front of it.
package analyzer

import (
	"context"

	"github.com/escuriola/edaitorial/internal/model"
)

// Analyzer produces a well-formed result for every input. It never returns
// an error: anything that goes wrong becomes the fail-safe result.
type Analyzer interface {
	Analyze(ctx context.Context, c model.Content) *model.AnalysisResult
}

// NodeSource supplies the bounded sample of other known content used for
// broken-reference detection.
type NodeSource interface {
	RecentNodes(ctx context.Context, limit int, excludeID string) ([]model.NodeRef, error)
}
