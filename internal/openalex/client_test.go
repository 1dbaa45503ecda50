// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mecfs-explorer/internal/httputil"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// pagedServer serves fullPages pages of perPage synthetic works, then empty
// pages. It records every page number requested.
type pagedServer struct {
	*httptest.Server
	mu        sync.Mutex
	requested []int
	lastQuery map[string]string
}

func newPagedServer(t *testing.T, fullPages int) *pagedServer {
	t.Helper()
	ps := &pagedServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per-page"))

		ps.mu.Lock()
		ps.requested = append(ps.requested, page)
		ps.lastQuery = map[string]string{
			"search":     q.Get("search"),
			"api_key":    q.Get("api_key"),
			"per-page":   q.Get("per-page"),
			"user-agent": r.Header.Get("User-Agent"),
		}
		ps.mu.Unlock()

		resp := worksResponse{Results: []types.Work{}}
		if page >= 1 && page <= fullPages {
			for i := 0; i < perPage; i++ {
				title := fmt.Sprintf("Work %d-%d", page, i)
				resp.Results = append(resp.Results, types.Work{
					ID:    fmt.Sprintf("https://openalex.org/W%d%03d", page, i),
					Title: &title,
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pagedServer) pages() []int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]int(nil), ps.requested...)
}

func testClient(ts *httptest.Server, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithHTTPClient(ts.Client()),
		WithBaseURL(ts.URL),
		WithPageDelay(0),
	}
	return NewClient("test-key", append(base, opts...)...)
}

func TestFetchAll_StopsAtEmptyPage(t *testing.T) {
	const fullPages, perPage = 3, 4
	ts := newPagedServer(t, fullPages)

	works, err := testClient(ts.Server).FetchAll(context.Background(), "long covid", types.ConditionLongCOVID, 10, perPage)
	require.NoError(t, err)

	assert.Len(t, works, fullPages*perPage)
	assert.Equal(t, []int{1, 2, 3, 4}, ts.pages(), "must stop at the first empty page")
	for _, w := range works {
		assert.Equal(t, types.ConditionLongCOVID, w.Condition)
	}
	// Page order and in-page order are preserved.
	assert.Equal(t, "https://openalex.org/W1000", works[0].ID)
	assert.Equal(t, "https://openalex.org/W3003", works[len(works)-1].ID)
}

func TestFetchAll_StopsAtMaxPages(t *testing.T) {
	ts := newPagedServer(t, 100)

	works, err := testClient(ts.Server).FetchAll(context.Background(), "me/cfs", types.ConditionMECFS, 2, 5)
	require.NoError(t, err)
	assert.Len(t, works, 10)
	assert.Equal(t, []int{1, 2}, ts.pages())
}

func TestFetchAll_RequestParameters(t *testing.T) {
	ts := newPagedServer(t, 1)

	_, err := testClient(ts.Server, WithUserAgent("mecfs-explorer/test")).
		FetchAll(context.Background(), "myalgic encephalomyelitis", types.ConditionMECFS, 1, 500)
	require.NoError(t, err)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	assert.Equal(t, "myalgic encephalomyelitis", ts.lastQuery["search"])
	assert.Equal(t, "test-key", ts.lastQuery["api_key"])
	assert.Equal(t, strconv.Itoa(MaxPerPage), ts.lastQuery["per-page"], "page size is capped")
	assert.Equal(t, "mecfs-explorer/test", ts.lastQuery["user-agent"])
}

func TestFetchAll_Defaults(t *testing.T) {
	ts := newPagedServer(t, 100)

	works, err := testClient(ts.Server).FetchAll(context.Background(), "q", types.ConditionMECFS, 0, 0)
	require.NoError(t, err)
	assert.Len(t, works, DefaultMaxPages*DefaultPerPage)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ts.pages())
}

func TestFetchAll_ConfigErrorsBeforeNetwork(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer ts.Close()

	c := NewClient("", WithHTTPClient(ts.Client()), WithBaseURL(ts.URL))
	_, err := c.FetchAll(context.Background(), "q", types.ConditionMECFS, 1, 1)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c = NewClient("key", WithHTTPClient(ts.Client()), WithBaseURL(""))
	_, err = c.FetchAll(context.Background(), "q", types.ConditionMECFS, 1, 1)
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	assert.Equal(t, 0, calls)
}

func TestFetchAll_NonSuccessAborts(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		title := "ok"
		json.NewEncoder(w).Encode(worksResponse{Results: []types.Work{{ID: "https://openalex.org/W1", Title: &title}}})
	}))
	defer ts.Close()

	works, err := testClient(ts).FetchAll(context.Background(), "q", types.ConditionMECFS, 5, 1)
	require.Error(t, err)
	assert.Nil(t, works, "no partial results on failure")

	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.NotContains(t, err.Error(), "test-key")
	assert.Equal(t, 2, calls, "no retry after a failed page")
}

func TestFetchAll_PageDelay(t *testing.T) {
	ts := newPagedServer(t, 3)

	c := testClient(ts.Server, WithPageDelay(40*time.Millisecond))
	start := time.Now()
	_, err := c.FetchAll(context.Background(), "q", types.ConditionMECFS, 3, 1)
	require.NoError(t, err)

	// Three requests need at least two gaps.
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestFetchAll_ContextCancelled(t *testing.T) {
	ts := newPagedServer(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(ts.Server, WithPageDelay(time.Hour))
	_, err := c.FetchAll(ctx, "q", types.ConditionMECFS, 3, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchAll_DecodesWorkFields(t *testing.T) {
	body := `{
	  "meta": {"count": 1, "per_page": 25, "page": 1},
	  "results": [{
	    "id": "https://openalex.org/W2741809807",
	    "title": "Mitochondrial dysfunction in ME/CFS",
	    "publication_year": 2021,
	    "doi": "https://doi.org/10.1000/xyz",
	    "type": "article",
	    "cited_by_count": 42,
	    "primary_location": {"source": {"display_name": "Journal of Fatigue"}},
	    "abstract_inverted_index": {"We": [0], "study": [1], "mitochondria": [2]}
	  }]
	}`
	served := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if served {
			fmt.Fprint(w, `{"results": []}`)
			return
		}
		served = true
		fmt.Fprint(w, body)
	}))
	defer ts.Close()

	works, err := testClient(ts).FetchAll(context.Background(), "q", types.ConditionMECFS, 5, 25)
	require.NoError(t, err)
	require.Len(t, works, 1)

	w := works[0]
	assert.Equal(t, "Mitochondrial dysfunction in ME/CFS", w.TitleText())
	require.NotNil(t, w.PublicationYear)
	assert.Equal(t, 2021, *w.PublicationYear)
	require.NotNil(t, w.CitedByCount)
	assert.Equal(t, 42, *w.CitedByCount)
	require.NotNil(t, w.JournalName())
	assert.Equal(t, "Journal of Fatigue", *w.JournalName())
	assert.Equal(t, []int{2}, w.AbstractInvertedIndex["mitochondria"])
	assert.Equal(t, types.ConditionMECFS, w.Condition)
}
