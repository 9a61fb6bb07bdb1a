package tracker

import (
	"time"

	"github.com/escuriola/edaitorial/internal/assessor"
	"github.com/escuriola/edaitorial/internal/model"
)

// Entry is one recorded analysis.
type Entry struct {
	ID          string                `json:"id"`
	NodeID      string                `json:"node_id"`
	Fingerprint string                `json:"fingerprint"`
	Title       string                `json:"title"`
	Body        string                `json:"body,omitempty"`
	Result      *model.AnalysisResult `json:"result"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Chunk is a single change in a text diff.
type Chunk struct {
	Type    string `json:"type"`              // "added" or "removed"
	Field   string `json:"field"`             // "title" or "body"
	Content string `json:"content,omitempty"` // changed text
}

// Comparison describes how a node changed between two analyses.
type Comparison struct {
	NodeID string              `json:"node_id"`
	BaseID string              `json:"base_id"`
	HeadID string              `json:"head_id"`
	Scores *assessor.ScoreDiff `json:"scores"`
	Chunks []Chunk             `json:"chunks"`

	// ContentChanged is false when both analyses saw the same fingerprint.
	ContentChanged bool `json:"content_changed"`
}
