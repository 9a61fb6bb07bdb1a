package assessor

// Config holds runtime settings for the assessor.
type Config struct {
	// ScoringVersion allows safe evolution of scoring logic. It is stamped on
	// every result so cached and recorded results can be told apart when the
	// deduction table or thresholds change.
	ScoringVersion string `json:"scoring_version" mapstructure:"scoring_version"`
}

// DefaultConfig returns the settings used when none are supplied.
func DefaultConfig() *Config {
	return &Config{ScoringVersion: "v1"}
}
