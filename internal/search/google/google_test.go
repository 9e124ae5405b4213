package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekoetch/investorscout/internal/search"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.Equal(t, "engine", r.URL.Query().Get("cx"))
		assert.Equal(t, "family office UAE", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"Jane Doe - Family Office","link":"https://example.com/jane","snippet":"Principal at a\nfamily office in Dubai"}
		]}`))
	}))
	defer srv.Close()

	p, err := New(context.Background(), "key", "engine", WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	hits, err := p.Search(context.Background(), "family office UAE", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, search.Hit{
		Title:   "Jane Doe - Family Office",
		Snippet: "Principal at a family office in Dubai",
		URL:     "https://example.com/jane",
		Source:  "google",
	}, hits[0])
}

func TestSearch_SharedClient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	fetcher := search.NewFetcher(search.WithDelay(50 * time.Millisecond))
	p, err := New(context.Background(), "key", "engine",
		WithEndpoint(srv.URL+"/"), WithHTTPClient(fetcher.Client()))
	require.NoError(t, err)

	start := time.Now()
	for range 2 {
		_, err := p.Search(context.Background(), "angel investor UAE", 5)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "requests were not spaced by the limiter")
	assert.Equal(t, int32(2), calls.Load())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), "", "engine")
	assert.ErrorIs(t, err, search.ErrMissingKey)

	_, err = New(context.Background(), "key", "")
	assert.Error(t, err)
}
