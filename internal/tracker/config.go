package tracker

// Config controls runtime settings for the analysis history.
type Config struct {
	// MaxHistory limits how many analyses are kept per node. Zero keeps all.
	MaxHistory int `json:"max_history,omitempty" mapstructure:"max_history"`
}
