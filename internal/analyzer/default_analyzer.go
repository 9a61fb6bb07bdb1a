package analyzer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/escuriola/edaitorial/internal/assessor"
	"github.com/escuriola/edaitorial/internal/cache"
	"github.com/escuriola/edaitorial/internal/checker"
	"github.com/escuriola/edaitorial/internal/llm"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
)

// rulesReserveShare is the fraction (1/n) of the remaining deadline kept back
// from the AI tiers for the rule-based checks.
const rulesReserveShare = 10

// ErrPanic wraps a recovered panic from inside the pipeline.
var ErrPanic = errors.New("analyzer: panic during analysis")

// DefaultAnalyzer is the Analyzer used by the application.
type DefaultAnalyzer struct {
	cfg      *Config
	assessor *assessor.Assessor
	cache    cache.Store
	backend  llm.Backend
	checkers *checker.Registry
	nodes    NodeSource
	logger   logging.Logger
}

// Option configures optional collaborators.
type Option func(*DefaultAnalyzer)

// WithCache sets the determinism cache.
func WithCache(s cache.Store) Option {
	return func(a *DefaultAnalyzer) { a.cache = s }
}

// WithBackend sets the backend used for the batch call.
func WithBackend(b llm.Backend) Option {
	return func(a *DefaultAnalyzer) { a.backend = b }
}

// WithCheckers sets the registry used by the per-checker tier.
func WithCheckers(r *checker.Registry) Option {
	return func(a *DefaultAnalyzer) { a.checkers = r }
}

// WithNodeSource sets where known nodes come from when the content carries none.
func WithNodeSource(s NodeSource) Option {
	return func(a *DefaultAnalyzer) { a.nodes = s }
}

// NewDefaultAnalyzer creates an analyzer. A nil cfg uses DefaultConfig; a nil
// assessor is built with default scoring.
func NewDefaultAnalyzer(cfg *Config, as *assessor.Assessor, logger logging.Logger, opts ...Option) (*DefaultAnalyzer, error) {
	if logger == nil {
		return nil, errors.New("analyzer: nil logger")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if as == nil {
		var err error
		if as, err = assessor.New(nil, logger); err != nil {
			return nil, fmt.Errorf("analyzer: %w", err)
		}
	}
	a := &DefaultAnalyzer{
		cfg:      cfg,
		assessor: as,
		checkers: checker.NewRegistry(),
		logger:   logger.With(logging.Field{Key: "component", Value: "analyzer"}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze runs the full pipeline for c.
func (a *DefaultAnalyzer) Analyze(ctx context.Context, c model.Content) *model.AnalysisResult {
	fp := cache.Fingerprint(c.Title, c.Body)

	if hit := a.cached(ctx, fp); hit != nil {
		return hit
	}

	runCtx := ctx
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	type outcome struct {
		res *model.AnalysisResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := a.safeRun(runCtx, c, fp)
		done <- outcome{res, err}
	}()

	var (
		res *model.AnalysisResult
		err error
	)
	select {
	case o := <-done:
		res, err = o.res, o.err
		if err == nil && runCtx.Err() != nil {
			err = runCtx.Err()
		}
	case <-runCtx.Done():
		err = runCtx.Err()
	}
	if err != nil {
		a.logger.Error("analysis failed, returning fail-safe result",
			logging.Field{Key: "fingerprint", Value: fp},
			logging.Field{Key: "node_id", Value: c.NodeID},
			logging.Field{Key: "error", Value: err})
		return a.failsafe(fp)
	}

	a.store(ctx, fp, res)
	a.logger.Info("analysis finished",
		logging.Field{Key: "node_id", Value: c.NodeID},
		logging.Field{Key: "source", Value: string(res.Source)},
		logging.Field{Key: "score", Value: res.OverallScore},
		logging.Field{Key: "issues", Value: len(res.Issues)})
	return res
}

func (a *DefaultAnalyzer) cached(ctx context.Context, fp string) *model.AnalysisResult {
	if !a.cfg.CacheEnabled || a.cache == nil {
		return nil
	}
	res, ok, err := a.cache.Get(ctx, fp)
	if err != nil {
		a.logger.Warn("cache lookup failed", logging.Field{Key: "error", Value: err})
		return nil
	}
	if !ok {
		return nil
	}
	a.logger.Debug("cache hit", logging.Field{Key: "fingerprint", Value: fp})
	return res
}

func (a *DefaultAnalyzer) store(ctx context.Context, fp string, res *model.AnalysisResult) {
	if !a.cfg.CacheEnabled || a.cache == nil || res.Source == model.SourceFailsafe {
		return
	}
	if err := a.cache.Set(ctx, fp, res, a.cfg.CacheTTL); err != nil {
		a.logger.Warn("cache store failed", logging.Field{Key: "error", Value: err})
	}
}

func (a *DefaultAnalyzer) failsafe(fp string) *model.AnalysisResult {
	res := model.FailsafeResult(fp, a.assessor.ScoringVersion())
	res.ID = uuid.NewString()
	return res
}

// safeRun turns a panic anywhere below into an error.
func (a *DefaultAnalyzer) safeRun(ctx context.Context, c model.Content, fp string) (res *model.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("recovered panic", logging.Field{Key: "stack", Value: string(debug.Stack())})
			res, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	var known []model.NodeRef
	if a.cfg.UseAI {
		known = a.knownNodes(ctx, c)
	}
	in := checker.NewInput(c, known)

	issues, source := a.collect(ctx, in)

	res = a.assessor.Assess(issues)
	res.ID = uuid.NewString()
	res.Fingerprint = fp
	res.Source = source
	return res, nil
}

func (a *DefaultAnalyzer) knownNodes(ctx context.Context, c model.Content) []model.NodeRef {
	limit := a.cfg.KnownNodesLimit
	if len(c.KnownNodes) > 0 {
		if limit > 0 && len(c.KnownNodes) > limit {
			return c.KnownNodes[:limit]
		}
		return c.KnownNodes
	}
	if a.nodes == nil {
		return nil
	}
	refs, err := a.nodes.RecentNodes(ctx, limit, c.NodeID)
	if err != nil {
		a.logger.Warn("could not load known nodes", logging.Field{Key: "error", Value: err})
		return nil
	}
	return refs
}

// collect walks the fallback chain and reports which tier produced the issues.
func (a *DefaultAnalyzer) collect(ctx context.Context, in *checker.Input) ([]model.IssueRecord, model.ResultSource) {
	if !a.cfg.UseAI {
		return checker.RuleIssues(in), model.SourceRules
	}

	aiCtx, cancel := a.aiContext(ctx)
	defer cancel()

	// reached is set once any AI path got an answer, usable or not.
	reached := false

	if a.cfg.BatchPrompt != "" && a.backend != nil {
		out := checker.RunPrompt(aiCtx, a.backend, a.cfg.BatchPrompt, in, "", a.logger)
		if out.Status == checker.StatusOK {
			return out.Issues, model.SourceBatch
		}
		reached = out.Status == checker.StatusMalformed
		a.logger.Info("batch call failed, falling back to individual checkers",
			logging.Field{Key: "status", Value: out.Status.String()})
	}

	issues := []model.IssueRecord{}
	for _, ch := range a.checkers.Enabled() {
		chCtx := ctx
		if ch.UsesAI() {
			chCtx = aiCtx
		}
		out := a.runChecker(chCtx, ch, in)
		if ch.UsesAI() && out.Status != checker.StatusUnavailable {
			reached = true
		}
		if out.Status != checker.StatusOK {
			a.logger.Warn("checker failed",
				logging.Field{Key: "checker", Value: ch.Name()},
				logging.Field{Key: "status", Value: out.Status.String()},
				logging.Field{Key: "error", Value: out.Err})
			continue
		}
		issues = append(issues, out.Issues...)
	}

	if !reached {
		a.logger.Info("no AI path answered, applying rule-based checks")
		return append(issues, checker.RuleIssues(in)...), model.SourceRules
	}
	return issues, model.SourceCheckers
}

// aiContext bounds the backend calls so a stalled provider still leaves time
// for the rules before ctx expires.
func (a *DefaultAnalyzer) aiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	dl, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	reserve := time.Until(dl) / rulesReserveShare
	return context.WithDeadline(ctx, dl.Add(-reserve))
}

// runChecker isolates one checker so a panic only loses its own issues.
func (a *DefaultAnalyzer) runChecker(ctx context.Context, ch checker.Checker, in *checker.Input) (out checker.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = checker.Unavailable(fmt.Errorf("%w: checker %s: %v", ErrPanic, ch.Name(), r))
		}
	}()
	return ch.Check(ctx, in)
}
