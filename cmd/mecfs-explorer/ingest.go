// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/mecfs-explorer/internal/config"
	"github.com/pdiddy/mecfs-explorer/internal/ingest"
	"github.com/pdiddy/mecfs-explorer/internal/metrics"
	"github.com/pdiddy/mecfs-explorer/internal/openalex"
	"github.com/pdiddy/mecfs-explorer/internal/tagging"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch, tag, and store works for every query in the plan",
	Long: `Ingest runs each query of the plan in order: it pages through OpenAlex
search results, rebuilds abstracts, tags each work, and upserts the batch in
one transaction. Each committed query prints a line to stdout; the first
error aborts the run and rolls back the query in progress.

Without --plan the built-in ME/CFS and Long COVID queries are used.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		config.KeyMaxPages:    "max-pages",
		config.KeyPerPage:     "per-page",
		config.KeyPageDelay:   "page-delay",
		config.KeyMetricsFile: "metrics-file",
	} {
		if err := settings.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}
	cfg := loadConfig()
	if err := config.RequireIngest(cfg); err != nil {
		return err
	}

	plan := ingest.DefaultPlan()
	if path, _ := flags.GetString("plan"); path != "" {
		var err error
		if plan, err = ingest.ReadPlan(path); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := metrics.New()
	client := newOpenAlexClient(cfg.Fetch, rec)
	p := &ingest.Pipeline{
		Fetcher:  client,
		Store:    st,
		Taxonomy: tagging.DefaultTaxonomy(),
		Out:      os.Stdout,
		Logger:   logger,
		Metrics:  rec,
		MaxPages: cfg.Fetch.MaxPages,
		PerPage:  cfg.Fetch.PerPage,
	}
	_, runErr := p.Run(ctx, plan)

	// Partial runs are still worth recording.
	if cfg.MetricsFile != "" {
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			logger.Warn("writing metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	return runErr
}

func newOpenAlexClient(cfg types.FetchConfig, rec *metrics.Recorder) *openalex.Client {
	opts := []openalex.ClientOption{
		openalex.WithPageDelay(cfg.PageDelay),
		openalex.WithLogger(logger),
		openalex.WithMetrics(rec),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, openalex.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openalex.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	return openalex.NewClient(cfg.APIKey, opts...)
}

func init() {
	ingestCmd.Flags().String("plan", "", "YAML query plan file (default: built-in ME/CFS and Long COVID queries)")
	ingestCmd.Flags().Int("max-pages", 0, "pages to request per query (default 5)")
	ingestCmd.Flags().Int("per-page", 0, "results per page, at most 200 (default 100)")
	ingestCmd.Flags().Duration("page-delay", 0, "minimum spacing between page requests (default 250ms)")
	ingestCmd.Flags().String("metrics-file", "", "write Prometheus text-format metrics to this path")

	rootCmd.AddCommand(ingestCmd)
}
