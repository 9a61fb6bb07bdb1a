package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/escuriola/edaitorial/internal/analyzer"
	"github.com/escuriola/edaitorial/internal/cache"
	"github.com/escuriola/edaitorial/internal/checker"
	"github.com/escuriola/edaitorial/internal/fetcher"
	"github.com/escuriola/edaitorial/internal/llm"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/tracker"
	"github.com/escuriola/edaitorial/internal/webclient"
)

// EnvPrefix prefixes every environment override, e.g. EDAITORIAL_USE_AI.
const EnvPrefix = "EDAITORIAL"

// CheckerConfig tunes one registered checker.
type CheckerConfig struct {
	// Enabled defaults to true when unset.
	Enabled  *bool  `mapstructure:"enabled" json:"enabled,omitempty"`
	Priority int    `mapstructure:"priority" json:"priority,omitempty"`
	Prompt   string `mapstructure:"prompt" json:"prompt,omitempty"`
}

// IsEnabled reports whether the checker should run.
func (c CheckerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" json:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins,omitempty"`
}

// WebClientConfig configures outbound HTTP for link probing.
type WebClientConfig struct {
	Client       string        `mapstructure:"client" json:"client"`
	Timeout      time.Duration `mapstructure:"timeout" json:"timeout"`
	UserAgent    string        `mapstructure:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" json:"max_body_bytes"`
	MaxRedirects int           `mapstructure:"max_redirects" json:"max_redirects"`
}

// CrawlConfig bounds site crawls that populate the node registry.
type CrawlConfig struct {
	MaxDepth int `mapstructure:"max_depth" json:"max_depth"`
	MaxPages int `mapstructure:"max_pages" json:"max_pages"`
}

// Config is the full runtime configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	// StorageRoot holds the SQLite database. ":memory:" keeps everything in
	// process.
	StorageRoot string `mapstructure:"storage_root" json:"storage_root"`

	UseAI    bool `mapstructure:"use_ai" json:"use_ai"`
	MinScore int  `mapstructure:"min_score" json:"min_score"`

	CacheEnabled bool   `mapstructure:"cache_analysis_results" json:"cache_analysis_results"`
	CacheTTL     int    `mapstructure:"cache_ttl" json:"cache_ttl"` // seconds
	CacheBackend string `mapstructure:"cache_backend" json:"cache_backend"`

	BatchPrompt     string `mapstructure:"batch_prompt" json:"batch_prompt,omitempty"`
	KnownNodesLimit int    `mapstructure:"known_nodes_limit" json:"known_nodes_limit"`
	AnalysisTimeout int    `mapstructure:"analysis_timeout" json:"analysis_timeout"` // seconds

	Checkers map[string]CheckerConfig `mapstructure:"checkers" json:"checkers,omitempty"`
	Links    checker.LinkConfig       `mapstructure:"links" json:"links"`

	LLM       llm.Config      `mapstructure:"llm" json:"llm"`
	WebClient WebClientConfig `mapstructure:"webclient" json:"webclient"`
	Fetch     fetcher.Config  `mapstructure:"fetch" json:"fetch"`
	Crawl     CrawlConfig     `mapstructure:"crawl" json:"crawl"`
	History   tracker.Config  `mapstructure:"history" json:"history"`
	Server    ServerConfig    `mapstructure:"server" json:"server"`
}

// Built-in checker names and their default priorities.
const (
	CheckerSEO           = "seo"
	CheckerAccessibility = "accessibility"
	CheckerTypos         = "typos"
	CheckerReferences    = "references"
)

var defaultPriorities = map[string]int{
	CheckerSEO:           10,
	CheckerAccessibility: 20,
	CheckerTypos:         30,
	CheckerReferences:    35,
	checker.LinksName:    40,
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() *Config {
	root := ".edaitorial"
	if home, err := os.UserHomeDir(); err == nil {
		root = filepath.Join(home, ".config", "edaitorial")
	}
	return &Config{
		LogLevel:        "info",
		StorageRoot:     root,
		UseAI:           true,
		MinScore:        80,
		CacheEnabled:    true,
		CacheTTL:        3600,
		CacheBackend:    cache.BackendSQLite,
		BatchPrompt:     checker.DefaultBatchPrompt,
		KnownNodesLimit: 50,
		AnalysisTimeout: 120,
		Checkers:        map[string]CheckerConfig{},
		Links:           checker.DefaultLinkConfig(),
		LLM: llm.Config{
			Provider: "openai",
			Timeout:  30 * time.Second,
			Retries:  3,
		},
		WebClient: WebClientConfig{
			Client:    string(webclient.ClientNetHTTP),
			Timeout:   10 * time.Second,
			UserAgent: "edaitorial",
		},
		Fetch:   fetcher.DefaultConfig(),
		Crawl:   CrawlConfig{MaxDepth: 2, MaxPages: 200},
		History: tracker.Config{MaxHistory: 50},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("storage_root", d.StorageRoot)
	v.SetDefault("use_ai", d.UseAI)
	v.SetDefault("min_score", d.MinScore)
	v.SetDefault("cache_analysis_results", d.CacheEnabled)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("cache_backend", d.CacheBackend)
	v.SetDefault("batch_prompt", d.BatchPrompt)
	v.SetDefault("known_nodes_limit", d.KnownNodesLimit)
	v.SetDefault("analysis_timeout", d.AnalysisTimeout)
	v.SetDefault("links.priority", d.Links.Priority)
	v.SetDefault("links.site_url", d.Links.SiteURL)
	v.SetDefault("links.probe_external", d.Links.ProbeExternal)
	v.SetDefault("links.probe_timeout", d.Links.ProbeTimeout)
	v.SetDefault("links.max_probes", d.Links.MaxProbes)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_format", "")
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.retries", d.LLM.Retries)
	v.SetDefault("webclient.client", d.WebClient.Client)
	v.SetDefault("webclient.timeout", d.WebClient.Timeout)
	v.SetDefault("webclient.user_agent", d.WebClient.UserAgent)
	v.SetDefault("webclient.max_body_bytes", d.WebClient.MaxBodyBytes)
	v.SetDefault("webclient.max_redirects", d.WebClient.MaxRedirects)
	v.SetDefault("fetch.max_concurrency", d.Fetch.MaxConcurrency)
	v.SetDefault("fetch.content_selector", d.Fetch.ContentSelector)
	v.SetDefault("crawl.max_depth", d.Crawl.MaxDepth)
	v.SetDefault("crawl.max_pages", d.Crawl.MaxPages)
	v.SetDefault("history.max_history", d.History.MaxHistory)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", []string{})
}

// configNames are looked up in the working directory when no path is given.
var configNames = []string{"edaitorial.yaml", "edaitorial.yml", "edaitorial.json"}

// LoadConfig reads defaults, then the config file, then the environment.
// An explicit path that cannot be read is an error; the implicit lookup in
// the working directory is optional.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		for _, name := range configNames {
			if _, err := os.Stat(name); err != nil {
				continue
			}
			v.SetConfigFile(name)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", name, err)
			}
			break
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider credentials keep their conventional unprefixed names.
	for key, env := range map[string]string{
		"llm.api_key":  "LLM_API_KEY",
		"llm.provider": "LLM_PROVIDER",
		"llm.base_url": "LLM_BASE_URL",
		"llm.model":    "LLM_MODEL",
	} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Checkers == nil {
		cfg.Checkers = map[string]CheckerConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.MinScore < 0 || c.MinScore > 100 {
		errs = append(errs, fmt.Errorf("min_score must be between 0 and 100, got %d", c.MinScore))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must not be negative, got %d", c.CacheTTL))
	}
	if c.AnalysisTimeout < 0 {
		errs = append(errs, fmt.Errorf("analysis_timeout must not be negative, got %d", c.AnalysisTimeout))
	}
	if c.KnownNodesLimit < 0 {
		errs = append(errs, fmt.Errorf("known_nodes_limit must not be negative, got %d", c.KnownNodesLimit))
	}
	if c.Fetch.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_concurrency must not be negative, got %d", c.Fetch.MaxConcurrency))
	}
	if c.Crawl.MaxDepth < 0 || c.Crawl.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("crawl limits must not be negative, got depth %d pages %d", c.Crawl.MaxDepth, c.Crawl.MaxPages))
	}
	switch strings.ToLower(c.CacheBackend) {
	case "", cache.BackendMemory, cache.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown cache_backend %q", c.CacheBackend))
	}
	if c.StorageRoot == "" {
		errs = append(errs, errors.New("storage_root is required"))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// AnalyzerConfig maps the flat keys onto the analyzer's settings.
func (c *Config) AnalyzerConfig() *analyzer.Config {
	return &analyzer.Config{
		UseAI:           c.UseAI,
		CacheEnabled:    c.CacheEnabled,
		CacheTTL:        time.Duration(c.CacheTTL) * time.Second,
		BatchPrompt:     c.BatchPrompt,
		KnownNodesLimit: c.KnownNodesLimit,
		Timeout:         time.Duration(c.AnalysisTimeout) * time.Second,
	}
}

// Checker returns the settings for name with its default priority filled in.
func (c *Config) Checker(name string) CheckerConfig {
	cc := c.Checkers[name]
	if cc.Priority == 0 {
		cc.Priority = defaultPriorities[name]
	}
	return cc
}

// WebClientSettings converts to the webclient package's config.
func (c *Config) WebClientSettings() webclient.Config {
	return webclient.Config{
		Client:       webclient.Client(c.WebClient.Client),
		Timeout:      c.WebClient.Timeout,
		UserAgent:    c.WebClient.UserAgent,
		MaxBodyBytes: c.WebClient.MaxBodyBytes,
		MaxRedirects: c.WebClient.MaxRedirects,
	}
}
