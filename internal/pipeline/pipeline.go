// Package pipeline runs discovery, verification, consolidation and
// enrichment over a search provider.
package pipeline

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/search"
	"github.com/tekoetch/investorscout/internal/verify"
)

// NothingToVerify is reported when no candidate qualifies for the second pass
const NothingToVerify = "Nothing to verify"

var (
	ErrProviderRequired = errors.New("search provider is required")
	ErrScorerRequired   = errors.New("first and second pass scorers are required")
)

// Settings bound how much work each stage does
type Settings struct {
	MaxResults      int
	MinVerifyScore  float64
	ResultsPerQuery int
	CommonNames     []string
	BlockedURLs     []string
	EnrichQueries   []string // %s is replaced with the quoted name
	EnrichResults   int
}

// DefaultSettings returns the production limits
func DefaultSettings() Settings {
	return Settings{
		MaxResults:      10,
		MinVerifyScore:  4.0,
		ResultsPerQuery: 3,
		CommonNames:     slices.Clone(leads.DefaultCommonNames),
		BlockedURLs:     slices.Clone(leads.DefaultBlockedURLs),
		EnrichQueries: []string{
			"site:instagram.com %s",
			"site:x.com %s",
			"site:facebook.com %s",
			"%s email",
			"%s phone",
		},
		EnrichResults: 2,
	}
}

// Enrichment is one third-pass presence or contact hit
type Enrichment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Channel   string    `json:"channel"`
	Query     string    `json:"query_used"`
	Snippet   string    `json:"snippet"`
	SourceURL string    `json:"source_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Pipeline wires the scorers to a search provider. Scorers and the
// consolidator are stateless and shared; verification state is created
// per candidate.
type Pipeline struct {
	provider     search.Provider
	news         search.Provider
	first        *firstpass.Scorer
	second       *verify.Scorer
	consolidator *consolidate.Consolidator
	settings     Settings
	pool         *ants.Pool
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets the verification worker pool size. Default is 4.
func WithWorkers(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithNews adds a news provider. Its query takes a second-pass slot the
// web queries leave free.
func WithNews(provider search.Provider) Option {
	return func(p *Pipeline) error {
		p.news = provider
		return nil
	}
}

// WithSettings overrides the default stage limits
func WithSettings(s Settings) Option {
	return func(p *Pipeline) error {
		p.settings = s
		return nil
	}
}

// WithConsolidator overrides the default consolidator
func WithConsolidator(c *consolidate.Consolidator) Option {
	return func(p *Pipeline) error {
		if c != nil {
			p.consolidator = c
		}
		return nil
	}
}

// WithClock replaces time.Now for first/last-seen stamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		p.now = now
		return nil
	}
}

// New creates a Pipeline. Call Release when done with it.
func New(provider search.Provider, first *firstpass.Scorer, second *verify.Scorer, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if first == nil || second == nil {
		return nil, ErrScorerRequired
	}

	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		provider:     provider,
		first:        first,
		second:       second,
		consolidator: consolidate.NewDefault(),
		settings:     DefaultSettings(),
		pool:         pool,
		logger:       slog.Default(),
		now:          time.Now,
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Settings returns the active stage limits
func (p *Pipeline) Settings() Settings {
	return p.settings
}
