// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves run settings. Each value comes from the first
// source that sets it: command-line flag, environment, .env file, config
// file, .secrets/ key file, built-in default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/mecfs-explorer/internal/openalex"
	"github.com/pdiddy/mecfs-explorer/internal/secrets"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// Name is the config file base name and the environment prefix.
const Name = "mecfs-explorer"

// Viper keys. Nested keys map to MECFS_<SECTION>_<FIELD> in the environment.
const (
	KeyDatabaseURL = "database_url"
	KeyAPIKey      = "openalex_api_key"
	KeyMaxPages    = "fetch.max_pages"
	KeyPerPage     = "fetch.per_page"
	KeyPageDelay   = "fetch.page_delay"
	KeyTimeout     = "fetch.timeout"
	KeyUserAgent   = "fetch.user_agent"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
	KeyMetricsFile = "metrics_file"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrMissingAPIKey      = errors.New("OPENALEX_API_KEY is not set")
)

// LoadDotEnv copies the variables in path into the process environment
// without overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment bindings.
// cfgFile, when set, must exist; otherwise mecfs-explorer.yaml is looked up
// in the working directory and ~/.config/mecfs-explorer and may be absent.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(KeyMaxPages, openalex.DefaultMaxPages)
	v.SetDefault(KeyPerPage, openalex.DefaultPerPage)
	v.SetDefault(KeyPageDelay, openalex.DefaultPageDelay)
	v.SetDefault(KeyTimeout, openalex.DefaultTimeout)
	v.SetDefault(KeyUserAgent, openalex.DefaultUserAgent)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetEnvPrefix("MECFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The credentials keep their conventional unprefixed names.
	if err := v.BindEnv(KeyDatabaseURL, "DATABASE_URL", "MECFS_DATABASE_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(KeyAPIKey, "OPENALEX_API_KEY", "MECFS_OPENALEX_API_KEY"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", Name))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// Load assembles the run configuration from v, falling back to sec for the
// two credentials. It does not check that required values are present.
func Load(v *viper.Viper, sec secrets.Secrets) types.IngestConfig {
	return types.IngestConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration(KeyTimeout),
				UserAgent: v.GetString(KeyUserAgent),
			},
			APIKey:    firstNonEmpty(v.GetString(KeyAPIKey), sec.Get(secrets.KeyOpenAlexAPIKey)),
			MaxPages:  v.GetInt(KeyMaxPages),
			PerPage:   v.GetInt(KeyPerPage),
			PageDelay: v.GetDuration(KeyPageDelay),
		},
		Store: types.StoreConfig{
			DatabaseURL: firstNonEmpty(v.GetString(KeyDatabaseURL), sec.Get(secrets.KeyDatabaseURL)),
		},
		Log: types.LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		MetricsFile: v.GetString(KeyMetricsFile),
	}
}

// RequireStore reports a missing database URL.
func RequireStore(cfg types.IngestConfig) error {
	if strings.TrimSpace(cfg.Store.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// RequireIngest reports a missing database URL or API key, and rejects
// nonsensical fetch bounds.
func RequireIngest(cfg types.IngestConfig) error {
	if err := RequireStore(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Fetch.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if cfg.Fetch.MaxPages < 0 {
		return fmt.Errorf("max pages must not be negative, got %d", cfg.Fetch.MaxPages)
	}
	if cfg.Fetch.PerPage < 0 || cfg.Fetch.PerPage > openalex.MaxPerPage {
		return fmt.Errorf("per page must be between 0 and %d, got %d", openalex.MaxPerPage, cfg.Fetch.PerPage)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
