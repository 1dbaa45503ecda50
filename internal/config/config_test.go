// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mecfs-explorer/internal/openalex"
	"github.com/pdiddy/mecfs-explorer/internal/secrets"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "MECFS_DATABASE_URL",
		"OPENALEX_API_KEY", "MECFS_OPENALEX_API_KEY",
		"MECFS_FETCH_MAX_PAGES", "MECFS_FETCH_PER_PAGE", "MECFS_FETCH_PAGE_DELAY",
		"MECFS_LOG_LEVEL", "MECFS_METRICS_FILE",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mecfs-explorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	v, err := NewViper(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	cfg := Load(v, secrets.Secrets{})
	assert.Equal(t, openalex.DefaultMaxPages, cfg.Fetch.MaxPages)
	assert.Equal(t, openalex.DefaultPerPage, cfg.Fetch.PerPage)
	assert.Equal(t, openalex.DefaultPageDelay, cfg.Fetch.PageDelay)
	assert.Equal(t, openalex.DefaultTimeout, cfg.Fetch.Timeout)
	assert.Equal(t, openalex.DefaultUserAgent, cfg.Fetch.UserAgent)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.Store.DatabaseURL)
	assert.Empty(t, cfg.Fetch.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `database_url: sqlite://papers.db
fetch:
  max_pages: 2
  per_page: 50
  page_delay: 1s
log:
  level: debug
  format: json
metrics_file: /tmp/mecfs.prom
`)
	v, err := NewViper(path)
	require.NoError(t, err)

	cfg := Load(v, secrets.Secrets{})
	assert.Equal(t, "sqlite://papers.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 2, cfg.Fetch.MaxPages)
	assert.Equal(t, 50, cfg.Fetch.PerPage)
	assert.Equal(t, time.Second, cfg.Fetch.PageDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/mecfs.prom", cfg.MetricsFile)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://app@db/papers")
	t.Setenv("OPENALEX_API_KEY", "env-key")
	t.Setenv("MECFS_FETCH_MAX_PAGES", "9")
	path := writeConfig(t, "database_url: sqlite://papers.db\nfetch:\n  max_pages: 2\n")

	v, err := NewViper(path)
	require.NoError(t, err)

	cfg := Load(v, secrets.Secrets{secrets.KeyOpenAlexAPIKey: "file-key"})
	assert.Equal(t, "postgres://app@db/papers", cfg.Store.DatabaseURL)
	assert.Equal(t, "env-key", cfg.Fetch.APIKey)
	assert.Equal(t, 9, cfg.Fetch.MaxPages)
}

func TestLoadSecretsFallback(t *testing.T) {
	clearEnv(t)
	v, err := NewViper(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	cfg := Load(v, secrets.Secrets{
		secrets.KeyDatabaseURL:    "sqlite://from-secrets.db",
		secrets.KeyOpenAlexAPIKey: "secret-key",
	})
	assert.Equal(t, "sqlite://from-secrets.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "secret-key", cfg.Fetch.APIKey)
	assert.NoError(t, RequireIngest(cfg))
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("OPENALEX_API_KEY")
	t.Setenv("DATABASE_URL", "sqlite://already-set.db")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path,
		[]byte("DATABASE_URL=sqlite://dotenv.db\nOPENALEX_API_KEY=dotenv-key\n"), 0o644))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("OPENALEX_API_KEY") })

	v, err := NewViper(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	cfg := Load(v, secrets.Secrets{})
	assert.Equal(t, "sqlite://already-set.db", cfg.Store.DatabaseURL, "environment wins over .env")
	assert.Equal(t, "dotenv-key", cfg.Fetch.APIKey)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestNewViperMissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	valid := types.IngestConfig{
		Fetch: types.FetchConfig{APIKey: "k", MaxPages: 5, PerPage: 100},
		Store: types.StoreConfig{DatabaseURL: "sqlite://papers.db"},
	}
	assert.NoError(t, RequireStore(valid))
	assert.NoError(t, RequireIngest(valid))

	noDB := valid
	noDB.Store.DatabaseURL = " "
	assert.ErrorIs(t, RequireStore(noDB), ErrMissingDatabaseURL)
	assert.ErrorIs(t, RequireIngest(noDB), ErrMissingDatabaseURL)

	noKey := valid
	noKey.Fetch.APIKey = ""
	assert.NoError(t, RequireStore(noKey), "stats and export need no API key")
	assert.ErrorIs(t, RequireIngest(noKey), ErrMissingAPIKey)

	tooBig := valid
	tooBig.Fetch.PerPage = openalex.MaxPerPage + 1
	assert.Error(t, RequireIngest(tooBig))

	negative := valid
	negative.Fetch.MaxPages = -1
	assert.Error(t, RequireIngest(negative))
}
