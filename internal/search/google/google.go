// Package google searches through the Google Programmable Search
// (Custom Search JSON) API.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"

	"github.com/tekoetch/investorscout/internal/search"
)

// maxNum is the largest page the API returns
const maxNum = 10

// Provider implements search.Provider against Custom Search
type Provider struct {
	svc      *customsearch.Service
	engineID string
	logger   *slog.Logger
	attempts uint
}

type settings struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// Option configures a Provider
type Option func(*settings)

// WithEndpoint overrides the API base URL
func WithEndpoint(u string) Option {
	return func(s *settings) { s.endpoint = u }
}

// WithHTTPClient sends requests through c. The API key is added by
// wrapping c's transport.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.client = c }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New creates a Custom Search provider for the engine identified by cx
func New(ctx context.Context, apiKey, cx string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google: %w", search.ErrMissingKey)
	}
	if cx == "" {
		return nil, errors.New("google: search engine id (cx) is required")
	}

	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if s.client != nil {
		// option.WithHTTPClient overrides every auth option
		base := s.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		clientOpts = []option.ClientOption{option.WithHTTPClient(&http.Client{
			Timeout:   s.client.Timeout,
			Transport: &transport.APIKey{Key: apiKey, Transport: base},
		})}
	}
	if s.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(s.endpoint))
	}

	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}

	return &Provider{svc: svc, engineID: cx, logger: s.logger, attempts: 2}, nil
}

// Name returns "google"
func (*Provider) Name() string {
	return "google"
}

// Search runs a web search
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]search.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, search.ErrEmptyQuery
	}

	call := p.svc.Cse.List().Q(query).Cx(p.engineID)
	if limit > 0 {
		call = call.Num(int64(min(limit, maxNum)))
	}

	p.logger.DebugContext(ctx, "google search", "query", query)

	res, err := search.Retry(ctx, p.logger, p.attempts, func() (*customsearch.Search, error) {
		res, err := call.Context(ctx).Do()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, &search.HTTPError{URL: "customsearch/v1", StatusCode: apiErr.Code}
		}
		return res, err
	})
	if err != nil {
		return nil, fmt.Errorf("google search failed: %w", err)
	}

	hits := make([]search.Hit, 0, len(res.Items))
	for _, item := range res.Items {
		hits = append(hits, search.Hit{
			Title:   item.Title,
			Snippet: strings.ReplaceAll(item.Snippet, "\n", " "),
			URL:     item.Link,
			Source:  p.Name(),
		})
	}
	return search.Truncate(hits, limit), nil
}
