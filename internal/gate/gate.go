// Package gate decides whether content may move to the published state.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/escuriola/edaitorial/internal/analyzer"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
)

// DefaultMinScore is the publish threshold used when none is configured.
const DefaultMinScore = 80

// summaryIssues caps how many issues are surfaced to the operator.
const summaryIssues = 5

// ErrInvalidMinScore is returned for thresholds outside [0,100].
var ErrInvalidMinScore = errors.New("gate: min score must be between 0 and 100")

// Decision is the gate's answer for one content item.
type Decision struct {
	Allowed    bool                  `json:"allowed" yaml:"allowed"`
	Score      int                   `json:"score" yaml:"score"`
	MinScore   int                   `json:"min_score" yaml:"min_score"`
	ScoreClass model.ScoreClass      `json:"score_class" yaml:"score_class"`
	Summary    []string              `json:"summary" yaml:"summary"`
	Result     *model.AnalysisResult `json:"result" yaml:"result"`
}

// Gate compares an analysis against the publish threshold.
type Gate struct {
	analyzer analyzer.Analyzer
	minScore int
	logger   logging.Logger
}

func New(a analyzer.Analyzer, minScore int, logger logging.Logger) (*Gate, error) {
	if a == nil {
		return nil, errors.New("gate: nil analyzer")
	}
	if minScore < 0 || minScore > 100 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMinScore, minScore)
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Gate{
		analyzer: a,
		minScore: minScore,
		logger:   logger.With(logging.Field{Key: "component", Value: "gate"}),
	}, nil
}

func (g *Gate) MinScore() int { return g.minScore }

// Check analyzes c and decides. A fail-safe result is always blocked, even
// with a zero threshold.
func (g *Gate) Check(ctx context.Context, c model.Content) *Decision {
	return g.Decide(g.analyzer.Analyze(ctx, c))
}

// Decide applies the threshold to an existing result.
func (g *Gate) Decide(res *model.AnalysisResult) *Decision {
	d := &Decision{
		Allowed:    res.Source != model.SourceFailsafe && res.OverallScore >= g.minScore,
		Score:      res.OverallScore,
		MinScore:   g.minScore,
		ScoreClass: res.ScoreClass,
		Summary:    Summarize(res),
		Result:     res,
	}
	if !d.Allowed {
		g.logger.Info("publish blocked",
			logging.Field{Key: "score", Value: d.Score},
			logging.Field{Key: "min_score", Value: g.minScore},
			logging.Field{Key: "source", Value: string(res.Source)})
	}
	return d
}

var severityRank = map[model.Severity]int{
	model.SeverityCritical: 0,
	model.SeverityHigh:     1,
	model.SeverityMedium:   2,
	model.SeverityLow:      3,
}

// Summarize returns the most severe issues as short lines, keeping backend
// order within a severity.
func Summarize(res *model.AnalysisResult) []string {
	if res.Source == model.SourceFailsafe {
		return []string{"Analysis could not be completed; content is not ready to publish."}
	}
	issues := make([]model.IssueRecord, len(res.Issues))
	copy(issues, res.Issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return severityRank[issues[i].Severity] < severityRank[issues[j].Severity]
	})
	if len(issues) > summaryIssues {
		issues = issues[:summaryIssues]
	}
	out := make([]string, 0, len(issues)+1)
	for _, is := range issues {
		out = append(out, fmt.Sprintf("[%s] %s: %s", is.Severity, is.Type, is.Description))
	}
	if extra := len(res.Issues) - len(issues); extra > 0 {
		out = append(out, fmt.Sprintf("...and %d more", extra))
	}
	return out
}
