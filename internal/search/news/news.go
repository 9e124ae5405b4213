// Package news searches Google News through its RSS endpoint. Press
// coverage is used to corroborate candidates during verification.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/tekoetch/investorscout/internal/search"
)

// Endpoint is the Google News RSS search URL
const Endpoint = "https://news.google.com/rss/search"

// Edition selects the Google News locale
type Edition struct {
	HL   string // e.g. "en-AE"
	GL   string // e.g. "AE"
	CEID string // e.g. "AE:en"
}

// DefaultEdition is the English UAE edition
var DefaultEdition = Edition{HL: "en-AE", GL: "AE", CEID: "AE:en"}

// Provider implements search.Provider over the news feed
type Provider struct {
	endpoint string
	edition  Edition
	fetcher  *search.Fetcher
	logger   *slog.Logger
}

// Option configures a Provider
type Option func(*Provider)

// WithEndpoint overrides the RSS search URL
func WithEndpoint(u string) Option {
	return func(p *Provider) { p.endpoint = u }
}

// WithEdition sets the locale
func WithEdition(e Edition) Option {
	return func(p *Provider) { p.edition = e }
}

// WithFetcher sets the HTTP fetcher
func WithFetcher(f *search.Fetcher) Option {
	return func(p *Provider) { p.fetcher = f }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// New creates a news provider
func New(opts ...Option) *Provider {
	p := &Provider{
		endpoint: Endpoint,
		edition:  DefaultEdition,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fetcher == nil {
		p.fetcher = search.NewFetcher(search.WithFetchLogger(p.logger))
	}
	return p
}

// Name returns "news"
func (*Provider) Name() string {
	return "news"
}

// Search returns feed items for the query, newest first as served
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
	q.Set("hl", p.edition.HL)
	q.Set("gl", p.edition.GL)
	q.Set("ceid", p.edition.CEID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")

	p.logger.DebugContext(ctx, "news search", "query", query)

	body, err := p.fetcher.Get(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("news search failed: %w", err)
	}

	// Parsers keep per-document state, so each search gets its own
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	hits := make([]search.Hit, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := strings.TrimSpace(it.Link)
		title := strings.TrimSpace(it.Title)
		if link == "" || title == "" {
			continue
		}
		hits = append(hits, search.Hit{
			Title:   title,
			Snippet: plainText(it.Description),
			URL:     link,
			Source:  p.Name(),
		})
	}
	return search.Truncate(hits, limit), nil
}

// plainText strips the HTML Google News wraps descriptions in
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
