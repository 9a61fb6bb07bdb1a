package checker

import (
	"context"
	"fmt"

	"github.com/escuriola/edaitorial/internal/assessor"
	"github.com/escuriola/edaitorial/internal/llm"
	"github.com/escuriola/edaitorial/internal/logging"
)

// RunPrompt renders template for in, sends it to backend and normalizes the
// answer. source is stamped on every issue. It never panics on bad backend
// output: unusable text yields a Malformed outcome, a failed call an
// Unavailable one.
func RunPrompt(ctx context.Context, backend llm.Backend, template string, in *Input, source string, logger logging.Logger) Outcome {
	if backend == nil {
		return Unavailable(ErrNoBackend)
	}
	if template == "" {
		return Unavailable(ErrNoPrompt)
	}

	text, err := backend.Complete(ctx, BuildPrompt(template, in))
	if err != nil {
		logger.Warn("backend call failed",
			logging.Field{Key: "source", Value: source},
			logging.Field{Key: "error", Value: err})
		return Unavailable(err)
	}

	raw, err := ParseIssues(text)
	if err != nil {
		logger.Warn("malformed backend response",
			logging.Field{Key: "source", Value: source},
			logging.Field{Key: "error", Value: err},
			logging.Field{Key: "sample", Value: llm.Preview(text)})
		return Malformed(fmt.Errorf("%s: %w", source, err))
	}

	issues := assessor.NormalizeIssues(raw, source)
	if dropped := len(raw) - len(issues); dropped > 0 {
		logger.Debug("discarded non-object issue entries",
			logging.Field{Key: "source", Value: source},
			logging.Field{Key: "dropped", Value: dropped})
	}
	return OK(issues)
}

// AIChecker asks the backend about one category using its own prompt.
type AIChecker struct {
	name     string
	priority int
	template string
	backend  llm.Backend
	logger   logging.Logger
}

// NewAIChecker builds an AI checker. An empty template falls back to
// DefaultPrompts[name]; a checker with no template at all reports itself
// unavailable on every call.
func NewAIChecker(name string, priority int, template string, backend llm.Backend, logger logging.Logger) *AIChecker {
	if template == "" {
		template = DefaultPrompts[name]
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &AIChecker{
		name:     name,
		priority: priority,
		template: template,
		backend:  backend,
		logger:   logger.With(logging.Field{Key: "checker", Value: name}),
	}
}

func (c *AIChecker) Name() string  { return c.name }
func (c *AIChecker) Priority() int { return c.priority }
func (c *AIChecker) UsesAI() bool  { return true }

func (c *AIChecker) Check(ctx context.Context, in *Input) Outcome {
	return RunPrompt(ctx, c.backend, c.template, in, c.name, c.logger)
}
