// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest drives an ingestion run: for each query in a plan it fetches
// every page from the source, writes the works in one transaction, and
// reports the count.
package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/mecfs-explorer/internal/metrics"
	"github.com/pdiddy/mecfs-explorer/internal/store"
	"github.com/pdiddy/mecfs-explorer/internal/tagging"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// Fetcher returns every work matching a query, stamped with condition.
// *openalex.Client satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context, query string, condition types.Condition, maxPages, perPage int) ([]types.Work, error)
}

// Pipeline holds the collaborators of a run. Fetcher, Store and Out are
// required; a nil Logger or Metrics disables that output.
type Pipeline struct {
	Fetcher  Fetcher
	Store    *store.Store
	Taxonomy tagging.Taxonomy
	Out      io.Writer
	Logger   *zap.Logger
	Metrics  *metrics.Recorder

	// MaxPages and PerPage are passed to the fetcher; zero picks its defaults.
	MaxPages int
	PerPage  int
}

// QueryResult is the outcome of one committed query.
type QueryResult struct {
	Query     string          `json:"query" yaml:"query"`
	Condition types.Condition `json:"condition" yaml:"condition"`
	Works     int             `json:"works" yaml:"works"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
}

// Summary reports a completed run.
type Summary struct {
	RunID    string         `json:"run_id" yaml:"run_id"`
	PerQuery []QueryResult  `json:"per_query" yaml:"per_query"`
	Total    int            `json:"total" yaml:"total"`
	Tags     map[string]int `json:"tags" yaml:"tags"`
}

// Run executes plan in order. Each query is committed before the next one is
// fetched, so a failure leaves earlier queries durable and discards only the
// query in progress. The first error aborts the run.
func (p *Pipeline) Run(ctx context.Context, plan []types.QuerySpec) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), Tags: map[string]int{}}
	if err := ValidatePlan(plan); err != nil {
		return sum, err
	}

	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", sum.RunID))
	tax := p.Taxonomy
	if tax == nil {
		tax = tagging.DefaultTaxonomy()
	}

	log.Info("ingest started", zap.Int("queries", len(plan)))
	for _, q := range plan {
		res, err := p.runQuery(ctx, log, tax, q, sum.Tags)
		if err != nil {
			log.Error("ingest aborted",
				zap.String("condition", string(q.Condition)),
				zap.Error(err),
			)
			return sum, err
		}
		sum.PerQuery = append(sum.PerQuery, res)
		sum.Total += res.Works
		fmt.Fprintf(p.Out, "Ingested %d works for %s\n", res.Works, q.Condition)
	}

	fmt.Fprintf(p.Out, "Done. Total works processed: %d\n", sum.Total)
	p.Metrics.RunSucceeded(time.Now())
	log.Info("ingest finished", zap.Int("total", sum.Total))
	return sum, nil
}

func (p *Pipeline) runQuery(ctx context.Context, log *zap.Logger, tax tagging.Taxonomy, q types.QuerySpec, tagCounts map[string]int) (QueryResult, error) {
	start := time.Now()
	res := QueryResult{Query: q.Query, Condition: q.Condition}

	works, err := p.Fetcher.FetchAll(ctx, q.Query, q.Condition, p.MaxPages, p.PerPage)
	if err != nil {
		return res, fmt.Errorf("fetching %s: %w", q.Condition, err)
	}
	log.Debug("fetched works",
		zap.String("condition", string(q.Condition)),
		zap.Int("works", len(works)),
	)

	tx, err := p.Store.Begin(ctx)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	written := map[string]int{}
	for _, w := range works {
		tags, err := tx.UpsertWork(ctx, w, tax)
		if err != nil {
			return res, fmt.Errorf("writing %s batch: %w", q.Condition, err)
		}
		for _, tag := range tags {
			written[tag]++
		}
		p.Metrics.PaperUpserted(string(q.Condition), tags)
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("writing %s batch: %w", q.Condition, err)
	}

	// Tag totals only count committed batches.
	for tag, n := range written {
		tagCounts[tag] += n
	}
	res.Works = len(works)
	res.Duration = time.Since(start)
	p.Metrics.QueryDone(string(q.Condition), res.Duration)
	log.Info("query committed",
		zap.String("condition", string(q.Condition)),
		zap.Int("works", res.Works),
		zap.Duration("elapsed", res.Duration),
	)
	return res, nil
}
