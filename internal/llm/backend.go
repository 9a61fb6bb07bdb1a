// Package llm talks to the AI checking backend: any OpenAI-compatible chat
// completions endpoint or the Anthropic messages API.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Backend turns a prompt into free text. The text is expected, but not
// guaranteed, to contain a JSON array of issue objects.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned when no provider credentials are available.
var ErrNotConfigured = errors.New("llm: backend not configured")

// errNoRetry wraps errors that should not be retried (e.g., 4xx client errors).
type errNoRetry struct {
	err error
}

func (e *errNoRetry) Error() string { return e.err.Error() }
func (e *errNoRetry) Unwrap() error { return e.err }

// StatusError reports a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}
