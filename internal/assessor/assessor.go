package assessor

import (
	"errors"
	"time"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
)

// Assessor turns validated issues into scored results. It performs no I/O.
type Assessor struct {
	cfg    *Config
	logger logging.Logger
}

// New constructs an Assessor. A nil cfg uses DefaultConfig.
func New(cfg *Config, logger logging.Logger) (*Assessor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("assessor: nil logger")
	}
	return &Assessor{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "assessor"}),
	}, nil
}

// ScoringVersion reports the version stamped on results.
func (a *Assessor) ScoringVersion() string {
	return a.cfg.ScoringVersion
}

// Assess scores issues and fills every scoring field of a new result. The
// caller owns ID, fingerprint and source.
func (a *Assessor) Assess(issues []model.IssueRecord) *model.AnalysisResult {
	if issues == nil {
		issues = []model.IssueRecord{}
	}
	cats := ScoreCategories(issues)
	overall := OverallScore(cats)
	res := &model.AnalysisResult{
		OverallScore:   overall,
		ScoreClass:     ClassFor(overall),
		CategoryScores: cats,
		Issues:         issues,
		Suggestions:    Suggestions(overall, issues),
		ScoringVersion: a.cfg.ScoringVersion,
		AnalyzedAt:     time.Now().UTC(),
	}
	a.logger.Debug("assessed issues",
		logging.Field{Key: "issues", Value: len(issues)},
		logging.Field{Key: "overall", Value: overall},
		logging.Field{Key: "class", Value: string(res.ScoreClass)},
	)
	return res
}
