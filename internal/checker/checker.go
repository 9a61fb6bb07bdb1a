// Package checker holds the sources of issue findings: AI-backed checkers,
// the link checker and the rule-based fallback.
package checker

import (
	"context"
	"errors"

	"github.com/escuriola/edaitorial/internal/model"
)

// Status classifies how a check ended.
type Status int

const (
	// StatusOK means the source answered and its issues are valid.
	StatusOK Status = iota
	// StatusMalformed means the source answered with something unusable.
	// The outcome carries zero issues.
	StatusMalformed
	// StatusUnavailable means the source could not be reached, timed out or
	// is not configured.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMalformed:
		return "malformed"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the result of one check. Callers never need to inspect Err to
// tell "no issues" from "could not analyze": Status does that.
type Outcome struct {
	Issues []model.IssueRecord
	Status Status
	Err    error
}

// OK wraps issues in a successful outcome.
func OK(issues []model.IssueRecord) Outcome {
	if issues == nil {
		issues = []model.IssueRecord{}
	}
	return Outcome{Issues: issues, Status: StatusOK}
}

// Malformed returns an outcome with zero issues.
func Malformed(err error) Outcome {
	return Outcome{Issues: []model.IssueRecord{}, Status: StatusMalformed, Err: err}
}

// Unavailable returns an outcome with zero issues.
func Unavailable(err error) Outcome {
	return Outcome{Issues: []model.IssueRecord{}, Status: StatusUnavailable, Err: err}
}

var (
	// ErrNoPrompt marks a checker without a prompt template.
	ErrNoPrompt = errors.New("checker: no prompt template configured")
	// ErrNoBackend marks an AI checker without a backend.
	ErrNoBackend = errors.New("checker: no AI backend configured")
)

// Input is everything a checker may look at for one content item.
type Input struct {
	Content model.Content

	// Text is the body with markup stripped and whitespace collapsed.
	Text string

	WordCount int

	// KnownNodes is the bounded sample of other content used for
	// broken-reference detection.
	KnownNodes []model.NodeRef
}

// NewInput derives the plain text and word count from c.
func NewInput(c model.Content, known []model.NodeRef) *Input {
	text := PlainText(c.Body)
	return &Input{
		Content:    c,
		Text:       text,
		WordCount:  WordCount(text),
		KnownNodes: known,
	}
}

// Checker is one named source of findings.
type Checker interface {
	Name() string

	// Priority orders checkers in the per-checker fallback; lower runs first.
	Priority() int

	// UsesAI reports whether Check calls the AI backend. Only AI checkers
	// count towards "every AI path failed".
	UsesAI() bool

	Check(ctx context.Context, in *Input) Outcome
}
