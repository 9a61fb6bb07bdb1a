package app

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/escuriola/edaitorial/internal/analyzer"
	"github.com/escuriola/edaitorial/internal/assessor"
	"github.com/escuriola/edaitorial/internal/cache"
	"github.com/escuriola/edaitorial/internal/checker"
	"github.com/escuriola/edaitorial/internal/enumerator"
	"github.com/escuriola/edaitorial/internal/fetcher"
	"github.com/escuriola/edaitorial/internal/gate"
	"github.com/escuriola/edaitorial/internal/llm"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/registry"
	"github.com/escuriola/edaitorial/internal/storage"
	"github.com/escuriola/edaitorial/internal/tracker"
	"github.com/escuriola/edaitorial/internal/webclient"
)

// Components are the long-lived services built from a Config.
type Components struct {
	DB        *sql.DB
	Cache     cache.Store
	Registry  *registry.Registry
	Tracker   tracker.Tracker
	Backend   llm.Backend
	Checkers  *checker.Registry
	Analyzer  analyzer.Analyzer
	Gate      *gate.Gate
	WebClient webclient.WebClient
	Fetcher   *fetcher.Fetcher
	Spider    *enumerator.Spider

	closers []func() error
}

// ComponentOption overrides a collaborator, mostly for tests.
type ComponentOption func(*componentOverrides)

type componentOverrides struct {
	backend   llm.Backend
	webClient webclient.WebClient
}

// WithBackend replaces the backend built from cfg.LLM.
func WithBackend(b llm.Backend) ComponentOption {
	return func(o *componentOverrides) { o.backend = b }
}

// WithWebClient replaces the web client used for link probing, page
// fetching and crawling.
func WithWebClient(wc webclient.WebClient) ComponentOption {
	return func(o *componentOverrides) { o.webClient = wc }
}

// NewComponents opens storage and wires every service. A backend that cannot
// be configured (no API key) is not an error: AI checks then report
// themselves unavailable and the rule-based checks take over.
func NewComponents(cfg *Config, logger logging.Logger, opts ...ComponentOption) (_ *Components, err error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var ov componentOverrides
	for _, opt := range opts {
		opt(&ov)
	}

	c := &Components{}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	c.DB, err = storage.Open(cfg.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	c.closers = append(c.closers, c.DB.Close)

	if c.Cache, err = cache.New(cfg.CacheBackend, c.DB, logger); err != nil {
		return nil, fmt.Errorf("new cache: %w", err)
	}
	c.closers = append(c.closers, c.Cache.Close)

	if c.Registry, err = registry.NewRegistry(c.DB, logger); err != nil {
		return nil, fmt.Errorf("new registry: %w", err)
	}

	tr, err := tracker.NewSQLiteTracker(c.DB, logger, &cfg.History)
	if err != nil {
		return nil, fmt.Errorf("new tracker: %w", err)
	}
	c.Tracker = tr
	c.closers = append(c.closers, tr.Close)

	c.Backend = ov.backend
	if c.Backend == nil && cfg.UseAI {
		client, err := llm.NewFactory(logger).FromConfig(cfg.LLM)
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			logger.Warn("AI backend not configured, falling back to rule-based checks",
				logging.Field{Key: "provider", Value: cfg.LLM.Provider})
		case err != nil:
			return nil, fmt.Errorf("new llm client: %w", err)
		default:
			c.Backend = client
			c.closers = append(c.closers, client.Close)
		}
	}

	c.WebClient = ov.webClient
	if c.WebClient == nil {
		if c.WebClient, err = webclient.NewWebClient(cfg.WebClientSettings(), logger); err != nil {
			return nil, fmt.Errorf("new webclient: %w", err)
		}
		c.closers = append(c.closers, c.WebClient.Close)
	}
	if c.Fetcher, err = fetcher.New(cfg.Fetch, c.WebClient, logger); err != nil {
		return nil, fmt.Errorf("new fetcher: %w", err)
	}
	c.Spider = enumerator.NewSpider(cfg.Crawl.MaxDepth, cfg.Crawl.MaxPages, c.Fetcher, logger)

	if c.Checkers, err = buildCheckers(cfg, c.Backend, c.WebClient, logger); err != nil {
		return nil, err
	}

	as, err := assessor.New(assessor.DefaultConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("new assessor: %w", err)
	}

	aopts := []analyzer.Option{
		analyzer.WithCache(c.Cache),
		analyzer.WithCheckers(c.Checkers),
		analyzer.WithNodeSource(c.Registry),
	}
	if c.Backend != nil {
		aopts = append(aopts, analyzer.WithBackend(c.Backend))
	}
	if c.Analyzer, err = analyzer.NewDefaultAnalyzer(cfg.AnalyzerConfig(), as, logger, aopts...); err != nil {
		return nil, fmt.Errorf("new analyzer: %w", err)
	}

	if c.Gate, err = gate.New(c.Analyzer, cfg.MinScore, logger); err != nil {
		return nil, fmt.Errorf("new gate: %w", err)
	}
	return c, nil
}

// buildCheckers registers the built-in checkers, honouring per-checker
// enable flags, priorities and prompts.
func buildCheckers(cfg *Config, backend llm.Backend, wc webclient.WebClient, logger logging.Logger) (*checker.Registry, error) {
	reg := checker.NewRegistry()
	for _, name := range []string{CheckerSEO, CheckerAccessibility, CheckerTypos, CheckerReferences} {
		cc := cfg.Checker(name)
		if err := reg.Register(checker.NewAIChecker(name, cc.Priority, cc.Prompt, backend, logger)); err != nil {
			return nil, err
		}
		reg.SetEnabled(name, cc.IsEnabled())
	}

	lc := cfg.Links
	links := cfg.Checkers[checker.LinksName]
	if links.Priority != 0 {
		lc.Priority = links.Priority
	}
	if lc.Priority == 0 {
		lc.Priority = defaultPriorities[checker.LinksName]
	}
	if err := reg.Register(checker.NewLinkChecker(lc, wc, logger)); err != nil {
		return nil, err
	}
	reg.SetEnabled(checker.LinksName, links.IsEnabled())

	for name := range cfg.Checkers {
		if _, ok := reg.Get(name); !ok {
			logger.Warn("unknown checker in configuration, ignored", logging.Field{Key: "checker", Value: name})
		}
	}
	logger.Debug("checkers registered", logging.Field{Key: "checkers", Value: reg.Names()})
	return reg, nil
}

// Close releases resources in reverse order of creation.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
