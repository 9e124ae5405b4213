// Package brave searches the web through the Brave Search API.
// Free tier: 2,000 queries/month, 1 query/second.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tekoetch/investorscout/internal/search"
)

// Endpoint is the Brave web search API
const Endpoint = "https://api.search.brave.com/res/v1/web/search"

// maxCount is the largest page Brave returns
const maxCount = 20

// Provider implements search.Provider against Brave
type Provider struct {
	apiKey   string
	endpoint string
	fetcher  *search.Fetcher
	logger   *slog.Logger
}

type response struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Option configures a Provider
type Option func(*Provider)

// WithEndpoint overrides the API endpoint
func WithEndpoint(u string) Option {
	return func(p *Provider) { p.endpoint = u }
}

// WithFetcher sets the HTTP fetcher
func WithFetcher(f *search.Fetcher) Option {
	return func(p *Provider) { p.fetcher = f }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// New creates a Brave provider. apiKey is the subscription token.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("brave: %w", search.ErrMissingKey)
	}
	p := &Provider{
		apiKey:   apiKey,
		endpoint: Endpoint,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fetcher == nil {
		p.fetcher = search.NewFetcher(search.WithFetchLogger(p.logger))
	}
	return p, nil
}

// LoadAPIKey returns the key from BRAVE_API_KEY or the first line of
// ~/.brave, or empty string
func LoadAPIKey() string {
	if key := os.Getenv("BRAVE_API_KEY"); key != "" {
		return key
	}
	if home, err := os.UserHomeDir(); err == nil {
		if data, err := os.ReadFile(filepath.Join(home, ".brave")); err == nil {
			line, _, _ := strings.Cut(string(data), "\n")
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// Name returns "brave"
func (*Provider) Name() string {
	return "brave"
}

// Search runs a web search
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]search.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, search.ErrEmptyQuery
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	if limit > 0 {
		q.Set("count", strconv.Itoa(min(limit, maxCount)))
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-Subscription-Token", p.apiKey)

	p.logger.DebugContext(ctx, "brave search", "query", query)

	data, err := p.fetcher.Get(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("brave search failed: %w", err)
	}

	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode brave response: %w", err)
	}

	hits := make([]search.Hit, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		hits = append(hits, search.Hit{
			Title:   r.Title,
			Snippet: r.Description,
			URL:     r.URL,
			Source:  p.Name(),
		})
	}
	return search.Truncate(hits, limit), nil
}
