// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestGetJSON_Success(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"openalex"}`)
	}))
	defer ts.Close()

	var p payload
	err := GetJSON(context.Background(), ts.Client(), ts.URL, "mecfs-explorer/test", "", &p)
	require.NoError(t, err)
	assert.Equal(t, "openalex", p.Name)
	assert.Equal(t, "mecfs-explorer/test", gotUA)
}

func TestGetJSON_NonSuccessIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	defer ts.Close()

	var p payload
	err := GetJSON(context.Background(), ts.Client(), ts.URL+"?api_key=s3cret", "", "s3cret", &p)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "slow down", se.Body)
	assert.NotContains(t, err.Error(), "s3cret")
	assert.Contains(t, err.Error(), "REDACTED")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSON_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer ts.Close()

	var p payload
	err := GetJSON(context.Background(), ts.Client(), ts.URL, "", "", &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestGetJSON_TransportErrorRedacted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	base := ts.URL
	ts.Close()

	var p payload
	err := GetJSON(context.Background(), http.DefaultClient, base+"?api_key=s3cret", "", "s3cret", &p)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cret")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "https://x/works?api_key=REDACTED&page=1",
		Redact("https://x/works?api_key=k%2By&page=1", "k+y"))
	assert.Equal(t, "https://x/works?page=1", Redact("https://x/works?page=1", ""))
}
