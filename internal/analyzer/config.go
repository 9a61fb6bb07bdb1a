package analyzer

import (
	"time"

	"github.com/escuriola/edaitorial/internal/checker"
)

// Config controls the pipeline.
type Config struct {
	// UseAI disables every backend call when false; only the rules run.
	UseAI bool `json:"use_ai" mapstructure:"use_ai"`

	CacheEnabled bool `json:"cache_analysis_results" mapstructure:"cache_analysis_results"`

	// CacheTTL <= 0 disables storing even when CacheEnabled is set.
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl"`

	// BatchPrompt is the single-call template. Empty skips straight to the
	// per-checker tier.
	BatchPrompt string `json:"batch_prompt" mapstructure:"batch_prompt"`

	// KnownNodesLimit bounds the sample of other content sent to checkers.
	KnownNodesLimit int `json:"known_nodes_limit" mapstructure:"known_nodes_limit"`

	// Timeout bounds a whole Analyze call. Zero means no deadline beyond the
	// caller's context. Backend calls get nine tenths of it; the rule-based
	// checks run in the rest.
	Timeout time.Duration `json:"analysis_timeout" mapstructure:"analysis_timeout"`
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		UseAI:           true,
		CacheEnabled:    true,
		CacheTTL:        time.Hour,
		BatchPrompt:     checker.DefaultBatchPrompt,
		KnownNodesLimit: 50,
		Timeout:         2 * time.Minute,
	}
}
