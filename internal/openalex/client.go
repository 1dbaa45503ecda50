// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex pages through the OpenAlex works search endpoint.
package openalex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/mecfs-explorer/internal/httputil"
	"github.com/pdiddy/mecfs-explorer/internal/metrics"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

const (
	// WorksURL is the OpenAlex works endpoint.
	WorksURL = "https://api.openalex.org/works"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultPageDelay spaces successive page requests.
	DefaultPageDelay = 250 * time.Millisecond

	DefaultUserAgent = "mecfs-explorer/0.1"

	DefaultMaxPages = 5
	DefaultPerPage  = 100

	// MaxPerPage is the largest page size OpenAlex accepts.
	MaxPerPage = 200
)

var (
	// ErrMissingAPIKey is returned before any request when no credential is set.
	ErrMissingAPIKey = errors.New("OpenAlex API key missing")

	// ErrMissingBaseURL is returned before any request when the endpoint is empty.
	ErrMissingBaseURL = errors.New("OpenAlex base URL missing")
)

// Client fetches works from OpenAlex one page at a time.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	userAgent  string
	logger     *zap.Logger
	metrics    *metrics.Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom works endpoint (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithPageDelay sets the minimum spacing between page requests. Zero or
// negative disables pacing.
func WithPageDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger attaches a logger for per-page diagnostics.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *metrics.Recorder) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates an OpenAlex client authenticated with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultPageDelay), 1),
		apiKey:     apiKey,
		baseURL:    WorksURL,
		userAgent:  DefaultUserAgent,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAll requests pages 1..maxPages of the works search for query and
// returns every work in page order, each stamped with condition. It stops
// early at the first page with no results. Any failed page aborts the whole
// fetch; nothing is retried.
func (c *Client) FetchAll(ctx context.Context, query string, condition types.Condition, maxPages, perPage int) ([]types.Work, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if c.baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	var all []types.Work
	for page := 1; page <= maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for page %d: %w", page, err)
		}

		works, err := c.fetchPage(ctx, query, page, perPage)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d of %q: %w", page, query, err)
		}
		c.logger.Debug("fetched page",
			zap.String("condition", string(condition)),
			zap.Int("page", page),
			zap.Int("results", len(works)),
		)
		if len(works) == 0 {
			break
		}
		c.metrics.PageFetched(string(condition), len(works))

		for i := range works {
			works[i].Condition = condition
		}
		all = append(all, works...)
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, query string, page, perPage int) ([]types.Work, error) {
	params := url.Values{
		"search":   {query},
		"page":     {strconv.Itoa(page)},
		"per-page": {strconv.Itoa(perPage)},
		"api_key":  {c.apiKey},
	}
	reqURL := c.baseURL + "?" + params.Encode()

	var resp worksResponse
	if err := httputil.GetJSON(ctx, c.httpClient, reqURL, c.userAgent, c.apiKey, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// OpenAlex API JSON structures.
type worksResponse struct {
	Meta    worksMeta    `json:"meta"`
	Results []types.Work `json:"results"`
}

type worksMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}
