package webclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/escuriola/edaitorial/internal/logging"
)

// ErrUnknownClient is returned when Config.Client names no implementation.
var ErrUnknownClient = errors.New("unknown webclient")

// NewWebClient builds the client named by cfg.Client; empty selects nethttp.
func NewWebClient(cfg Config, logger logging.Logger) (WebClient, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	switch Client(strings.ToLower(strings.TrimSpace(string(cfg.Client)))) {
	case "", ClientNetHTTP:
		return NewNetHTTPClient(cfg, logger, nil)
	default:
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownClient, cfg.Client, ClientNetHTTP)
	}
}

// httpClientFor returns an *http.Client with cfg's timeout and redirect cap.
func httpClientFor(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout, CheckRedirect: redirectPolicy(cfg.MaxRedirects)}
}

func redirectPolicy(limit int) func(*http.Request, []*http.Request) error {
	if limit == 0 {
		limit = defaultMaxRedirects
	}
	return func(_ *http.Request, via []*http.Request) error {
		if limit < 0 || len(via) > limit {
			return http.ErrUseLastResponse
		}
		return nil
	}
}
