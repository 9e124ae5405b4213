// Package search defines the web search provider interface and the
// plumbing shared by every provider: response caching, retries,
// per-host politeness and priority fallback.
package search

import (
	"context"
	"errors"
	"fmt"
)

// UserAgent is sent by the HTML and RSS providers
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrNoProvider = errors.New("no search provider configured")
	ErrMissingKey = errors.New("missing API key")
)

// Hit is one raw search result
type Hit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// Provider runs a web search and returns at most limit hits
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// HTTPError represents a non-200 provider response
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Truncate caps hits at limit. A non-positive limit keeps everything.
func Truncate(hits []Hit, limit int) []Hit {
	if limit > 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
