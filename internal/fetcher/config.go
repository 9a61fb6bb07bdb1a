package fetcher

type Config struct {
	// MaxConcurrency bounds the number of pages fetched at once.
	MaxConcurrency int `mapstructure:"max_concurrency" json:"max_concurrency"`

	// ContentSelector picks the element holding the article body; the first
	// selector in the list that matches wins. Falls back to <body>.
	ContentSelector string `mapstructure:"content_selector" json:"content_selector"`
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrency:  4,
		ContentSelector: "article, main, [role=main]",
	}
}
