// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mecfs-explorer CLI.
// Implements: ingestion pipeline driver, schema bootstrap, and the read-side
// stats and export commands.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/mecfs-explorer/internal/config"
	"github.com/pdiddy/mecfs-explorer/internal/logging"
	"github.com/pdiddy/mecfs-explorer/internal/secrets"
	"github.com/pdiddy/mecfs-explorer/internal/store"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Populated by the root PersistentPreRunE before any subcommand runs.
var (
	settings      *viper.Viper
	logger        = zap.NewNop()
	loadedSecrets = secrets.Secrets{}
)

// rootCmd is the base command for the mecfs-explorer CLI.
var rootCmd = &cobra.Command{
	Use:   "mecfs-explorer",
	Short: "Ingest and tag ME/CFS and Long COVID literature from OpenAlex",
	Long: `mecfs-explorer pulls works matching the ME/CFS and Long COVID queries from
the OpenAlex works API, rebuilds their abstracts, tags them against a fixed
taxonomy of biomedical mechanisms, and upserts them into a relational store.

DATABASE_URL selects the store: postgres:// or postgresql:// for Postgres,
sqlite://path or a bare path for SQLite. OPENALEX_API_KEY is required for
ingest. Both may also come from .env, the config file, or .secrets/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		for key, flag := range map[string]string{
			config.KeyDatabaseURL: "database-url",
			config.KeyLogLevel:    "log-level",
			config.KeyLogFormat:   "log-format",
		} {
			if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
				return err
			}
		}
		settings = v

		logger, err = logging.New(v.GetString(config.KeyLogLevel), v.GetString(config.KeyLogFormat), os.Stderr)
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}

		loadedSecrets, err = secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		if len(loadedSecrets) > 0 {
			logger.Debug("loaded secrets", zap.Strings("keys", loadedSecrets.Keys()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mecfs-explorer.yaml or ~/.config/mecfs-explorer/mecfs-explorer.yaml)")
	rootCmd.PersistentFlags().String("database-url", "", "database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")
}

// loadConfig resolves the run configuration after command flags are bound.
func loadConfig() types.IngestConfig {
	return config.Load(settings, loadedSecrets)
}

// openStore connects to the configured database and makes sure the schema
// exists.
func openStore(ctx context.Context, cfg types.IngestConfig) (*store.Store, error) {
	if err := config.RequireStore(cfg); err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	logger.Debug("store ready", zap.String("dialect", string(st.Dialect())))
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
