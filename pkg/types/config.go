package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-horizon/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivConfig holds settings for the arXiv search client.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the query endpoint (default https://export.arxiv.org/api/query).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries bounds the 429/503 backoff loop (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Prune drops derived fields from normalized records (default true).
	Prune bool `json:"prune" yaml:"prune" mapstructure:"prune"`
}

// BoundaryConfig holds settings for the boundary search.
type BoundaryConfig struct {
	// Delay is the minimum interval between two API calls (default 3s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// MinWindow is the step below which bisection stops and the remaining
	// span is read in one window (default 100).
	MinWindow int `json:"min_window" yaml:"min_window" mapstructure:"min_window"`

	// MaxEmptyRetries bounds retries of an empty or failed probe (default 10).
	MaxEmptyRetries int `json:"max_empty_retries" yaml:"max_empty_retries" mapstructure:"max_empty_retries"`

	// MaxElapsed bounds the total time spent retrying one probe (default 2m).
	MaxElapsed time.Duration `json:"max_elapsed" yaml:"max_elapsed" mapstructure:"max_elapsed"`
}

// HistoryConfig holds settings for the run history ledger.
type HistoryConfig struct {
	// Dir holds the history database (default ".arxiv-horizon").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Disabled skips recording runs.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// LogConfig selects logrus level and formatter.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	Arxiv    ArxivConfig    `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Boundary BoundaryConfig `json:"boundary" yaml:"boundary" mapstructure:"boundary"`
	History  HistoryConfig  `json:"history" yaml:"history" mapstructure:"history"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
