package llm

import (
	"fmt"
	"time"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/webclient"
)

// Config selects and tunes the provider.
type Config struct {
	Provider  string        `mapstructure:"provider"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	APIFormat string        `mapstructure:"api_format"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
}

// Factory builds Backends from configuration.
type Factory struct {
	logger logging.Logger
}

func NewFactory(logger logging.Logger) *Factory {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Factory{logger: logger}
}

// FromConfig builds a Client from cfg. The returned error wraps
// ErrNotConfigured when credentials are missing, which callers treat as
// "AI unavailable" rather than a fatal error.
func (f *Factory) FromConfig(cfg Config) (*Client, error) {
	wc, err := webclient.NewWebClient(webclient.Config{
		Client:    webclient.ClientNetHTTP,
		Timeout:   cfg.Timeout,
		UserAgent: "edaitorial",
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("llm transport: %w", err)
	}
	opts := []Option{
		WithWebClient(wc),
		WithModel(cfg.Model),
		WithBaseURL(cfg.BaseURL),
		WithAPIFormat(cfg.APIFormat),
		WithLogger(f.logger),
	}
	if cfg.Retries > 0 {
		opts = append(opts, WithRetries(cfg.Retries, defaultRetryDelay))
	}
	c, err := NewClient(cfg.Provider, cfg.APIKey, opts...)
	if err != nil {
		_ = wc.Close()
		return nil, err
	}
	return c, nil
}
