// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns how many warnings were recorded.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Backend ───────────────────────────────────────────────────────────

// ErrBackendDown is what DummyBackend returns when Err is not set but
// Unavailable is.
var ErrBackendDown = errors.New("dummy backend unavailable")

// DummyBackend implements llm.Backend with canned replies.
// Replies are consumed in order; once exhausted the last reply repeats.
// When Respond is set it takes precedence over Replies.
type DummyBackend struct {
	Replies     []string
	Respond     func(prompt string) (string, error)
	Err         error
	Unavailable bool
	Delay       time.Duration

	mu      sync.Mutex
	Prompts []string
}

func (b *DummyBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if b.Delay > 0 {
		select {
		case <-time.After(b.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	b.mu.Lock()
	b.Prompts = append(b.Prompts, prompt)
	n := len(b.Prompts)
	b.mu.Unlock()

	if b.Err != nil {
		return "", b.Err
	}
	if b.Unavailable {
		return "", ErrBackendDown
	}
	if b.Respond != nil {
		return b.Respond(prompt)
	}
	if len(b.Replies) == 0 {
		return "[]", nil
	}
	if n > len(b.Replies) {
		n = len(b.Replies)
	}
	return b.Replies[n-1], nil
}

// Calls returns how many prompts were received.
func (b *DummyBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Prompts)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200.
// Set FailURLs[url] = true to force an error for a specific URL,
// Status[url] to answer with another status code, or Bodies[url] to serve
// a fixed body.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Status        map[string]int
	Bodies        map[string]string
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}
	status := 200
	if s, ok := d.Status[req.URL]; ok {
		status = s
	}

	body := "ok:" + req.URL
	if b, ok := d.Bodies[req.URL]; ok {
		body = b
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte(body),
		StatusCode: status,
		FinalURL:   req.URL,
		Elapsed:    d.ResponseDelay,
	}, nil
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests were made.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── NodeSource ────────────────────────────────────────────────────────

// DummyNodeSource returns a fixed list of node references.
type DummyNodeSource struct {
	Nodes []model.NodeRef
	Err   error

	mu    sync.Mutex
	Calls int
}

func (s *DummyNodeSource) RecentNodes(_ context.Context, limit int, excludeID string) ([]model.NodeRef, error) {
	s.mu.Lock()
	s.Calls++
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.NodeRef, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == excludeID {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, n)
	}
	return out, nil
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
