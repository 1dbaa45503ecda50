package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "mecfs-explorer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the OpenAlex fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the OpenAlex API credential. Required.
	APIKey string `json:"-" yaml:"-"`

	// MaxPages bounds the number of pages requested per query (default 5).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// PerPage is the page size sent to OpenAlex (default 100, max 200).
	PerPage int `json:"per_page" yaml:"per_page"`

	// PageDelay is the minimum spacing between successive page requests
	// (default 250ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`
}

// StoreConfig holds settings for the relational store.
type StoreConfig struct {
	// DatabaseURL selects both the dialect and the target: postgres:// or
	// postgresql:// for Postgres, sqlite://, file: or a bare path for SQLite.
	DatabaseURL string `json:"-" yaml:"-"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`
}

// QuerySpec pairs an OpenAlex search string with the condition label stamped
// on every work it returns.
type QuerySpec struct {
	Query     string    `json:"query" yaml:"query"`
	Condition Condition `json:"condition" yaml:"condition"`
}

// IngestConfig groups everything an ingestion run needs.
type IngestConfig struct {
	Fetch FetchConfig `json:"fetch" yaml:"fetch"`
	Store StoreConfig `json:"store" yaml:"store"`
	Log   LogConfig   `json:"log" yaml:"log"`

	// MetricsFile, when set, receives a Prometheus text-format dump of the
	// run's counters.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}
