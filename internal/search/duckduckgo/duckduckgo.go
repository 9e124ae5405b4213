// Package duckduckgo scrapes the DuckDuckGo HTML endpoint. It needs no
// API key and serves as the last provider in the chain.
package duckduckgo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tekoetch/investorscout/internal/search"
)

// Endpoint is the JavaScript-free results page
const Endpoint = "https://html.duckduckgo.com/html/"

// Provider implements search.Provider by parsing result HTML
type Provider struct {
	endpoint string
	fetcher  *search.Fetcher
	logger   *slog.Logger
}

// Option configures a Provider
type Option func(*Provider)

// WithEndpoint overrides the results page URL
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

// New creates a DuckDuckGo provider
func New(opts ...Option) *Provider {
	p := &Provider{endpoint: Endpoint, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.fetcher == nil {
		p.fetcher = search.NewFetcher(search.WithFetchLogger(p.logger))
	}
	return p
}

// Name returns "duckduckgo"
func (*Provider) Name() string {
	return "duckduckgo"
}

// Search fetches one results page and parses it
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
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml")

	p.logger.DebugContext(ctx, "duckduckgo search", "query", query)

	body, err := p.fetcher.Get(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search failed: %w", err)
	}

	hits, err := Parse(body)
	if err != nil {
		return nil, err
	}
	return search.Truncate(hits, limit), nil
}

// Parse extracts hits from a results page. Sponsored results are skipped.
func Parse(body []byte) ([]search.Hit, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var hits []search.Hit
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := resolve(href)
		title := strings.TrimSpace(link.Text())
		if target == "" || title == "" {
			return
		}
		hits = append(hits, search.Hit{
			Title:   title,
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").Text()), " "),
			URL:     target,
			Source:  "duckduckgo",
		})
	})
	return hits, nil
}

// resolve unwraps DuckDuckGo's /l/?uddg= redirect links
func resolve(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		return u.Query().Get("uddg")
	}
	return href
}
