// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts pipeline activity with Prometheus collectors. An
// ingestion run is a batch job, so the registry is dumped to a node-exporter
// textfile at the end instead of being scraped.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns a private registry and the pipeline's collectors. All
// methods are safe to call on a nil *Recorder, which records nothing.
type Recorder struct {
	Registry *prometheus.Registry

	PagesFetched   *prometheus.CounterVec
	WorksFetched   *prometheus.CounterVec
	PapersUpserted *prometheus.CounterVec
	TagsWritten    *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	LastSuccess    prometheus.Gauge
}

// New builds a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mecfs_openalex_pages_fetched_total",
				Help: "OpenAlex result pages fetched",
			},
			[]string{"condition"},
		),
		WorksFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mecfs_openalex_works_fetched_total",
				Help: "Works returned by OpenAlex",
			},
			[]string{"condition"},
		),
		PapersUpserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mecfs_papers_upserted_total",
				Help: "Paper rows inserted or replaced",
			},
			[]string{"condition"},
		),
		TagsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mecfs_paper_tags_written_total",
				Help: "Mechanism tag rows written",
			},
			[]string{"tag"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mecfs_query_duration_seconds",
				Help:    "Wall time to fetch and commit one query",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"condition"},
		),
		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mecfs_ingest_last_success_timestamp_seconds",
				Help: "Unix time of the last fully committed ingestion run",
			},
		),
	}
	r.Registry.MustRegister(
		r.PagesFetched,
		r.WorksFetched,
		r.PapersUpserted,
		r.TagsWritten,
		r.QueryDuration,
		r.LastSuccess,
	)
	return r
}

// PageFetched records one result page holding n works.
func (r *Recorder) PageFetched(condition string, n int) {
	if r == nil {
		return
	}
	r.PagesFetched.WithLabelValues(condition).Inc()
	r.WorksFetched.WithLabelValues(condition).Add(float64(n))
}

// PaperUpserted records one upsert and the tags it wrote.
func (r *Recorder) PaperUpserted(condition string, tags []string) {
	if r == nil {
		return
	}
	r.PapersUpserted.WithLabelValues(condition).Inc()
	for _, tag := range tags {
		r.TagsWritten.WithLabelValues(tag).Inc()
	}
}

// QueryDone records how long a query took from first fetch to commit.
func (r *Recorder) QueryDone(condition string, d time.Duration) {
	if r == nil {
		return
	}
	r.QueryDuration.WithLabelValues(condition).Observe(d.Seconds())
}

// RunSucceeded stamps the completion time of a run.
func (r *Recorder) RunSucceeded(at time.Time) {
	if r == nil {
		return
	}
	r.LastSuccess.Set(float64(at.Unix()))
}

// WriteFile dumps the registry in Prometheus text format to path.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}
