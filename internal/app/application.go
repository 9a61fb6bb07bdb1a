package app

import (
	"context"
	"errors"
	"time"

	"github.com/escuriola/edaitorial/internal/logging"
)

// Application is the runtime state container shared by the CLI commands.
// Pass Application into modules that need access to the global state rather
// than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger
	Orch   *Orchestrator
}

// NewApplication builds the orchestrator for cfg.
func NewApplication(cfg *Config, logger logging.Logger, opts ...ComponentOption) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("application: nil config")
	}
	orch, err := NewOrchestrator(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, Logger: logger, Orch: orch}, nil
}

// Shutdown closes the orchestrator, giving running jobs a bounded time to
// stop.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil || a.Orch == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Orch.Close() }()

	select {
	case err := <-done:
		if err != nil {
			a.Logger.Warn("orchestrator close returned error", logging.Field{Key: "error", Value: err})
		}
		return err
	case <-shutdownCtx.Done():
		return shutdownCtx.Err()
	}
}
