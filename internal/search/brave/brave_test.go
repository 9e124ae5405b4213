package brave

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekoetch/investorscout/internal/search"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, `"angel investor" Dubai`, r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Jane Doe - Angel Investor","url":"https://ae.linkedin.com/in/janedoe","description":"Based in Dubai"},
			{"title":"John Roe - Partner","url":"https://example.com/john","description":"Family office"},
			{"title":"Extra","url":"https://example.com/extra","description":"ignored"}
		]}}`))
	}))
	defer srv.Close()

	p, err := New("secret", WithEndpoint(srv.URL), WithFetcher(search.NewFetcher(search.WithDelay(0))))
	require.NoError(t, err)

	hits, err := p.Search(context.Background(), `"angel investor" Dubai`, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, search.Hit{
		Title:   "Jane Doe - Angel Investor",
		Snippet: "Based in Dubai",
		URL:     "https://ae.linkedin.com/in/janedoe",
		Source:  "brave",
	}, hits[0])
}

func TestSearch_HTTPError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := New("bad", WithEndpoint(srv.URL), WithFetcher(search.NewFetcher(search.WithDelay(0))))
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "investor", 5)
	require.Error(t, err)

	var httpErr *search.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, search.ErrMissingKey)
}

func TestSearch_EmptyQuery(t *testing.T) {
	p, err := New("secret")
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, search.ErrEmptyQuery)
}
