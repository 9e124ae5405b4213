package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/tekoetch/investorscout/internal/config"
	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/pipeline"
	"github.com/tekoetch/investorscout/internal/search"
	"github.com/tekoetch/investorscout/internal/search/brave"
	"github.com/tekoetch/investorscout/internal/search/duckduckgo"
	"github.com/tekoetch/investorscout/internal/search/google"
	"github.com/tekoetch/investorscout/internal/search/mock"
	"github.com/tekoetch/investorscout/internal/search/news"
	"github.com/tekoetch/investorscout/internal/verify"
)

// loadConfig loads the config file and installs the logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, setupLogger(cfg), nil
}

// openDatabase creates the data directories and opens the store
func openDatabase(cfg *config.Config) (*database.DB, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newScorers builds both scorers from the configured taxonomy
func newScorers(cfg *config.Config) (*firstpass.Scorer, *verify.Scorer) {
	tax := cfg.Taxonomy()
	return firstpass.New(cfg.Scoring, tax, cfg.Geo()), verify.New(cfg.VerifyConfig(), tax)
}

// newConsolidator builds the consolidator from the [verdict] section
func newConsolidator(cfg *config.Config) *consolidate.Consolidator {
	return consolidate.New(cfg.Verdict, cfg.Taxonomy())
}

// newCache returns the on-disk response cache, or a null cache when
// caching is disabled
func newCache(cfg *config.Config) (*search.Cache, error) {
	if cfg.Search.CacheDir == "" || cfg.Search.CacheTTLHours <= 0 {
		return search.NewNullCache(), nil
	}
	return search.NewCache(cfg.Search.CacheTTL(), cfg.Search.CacheDir)
}

// buildProviders assembles the web search chain in configured priority
// order and, when enabled, the news provider. Providers without
// credentials are skipped with a warning.
func buildProviders(ctx context.Context, cfg *config.Config, logger *slog.Logger) (search.Provider, search.Provider, error) {
	cache, err := newCache(cfg)
	if err != nil {
		return nil, nil, err
	}

	fetcher := search.NewFetcher(
		search.WithHTTPClient(&http.Client{Timeout: cfg.Search.Timeout()}),
		search.WithDelay(cfg.Search.Delay()),
		search.WithFetchLogger(logger),
		search.WithAttempts(uint(cfg.Search.Attempts)),
	)

	var providers []search.Provider
	for _, name := range cfg.Search.Providers {
		switch name {
		case "brave":
			key := cfg.Search.Brave.APIKey
			if key == "" {
				key = brave.LoadAPIKey()
			}
			p, err := brave.New(key, brave.WithFetcher(fetcher), brave.WithLogger(logger))
			if err != nil {
				logger.Warn("skipping search provider", "provider", name, "error", err)
				continue
			}
			providers = append(providers, search.Cached(p, cache, logger))

		case "google":
			key := cfg.Search.Google.APIKey
			if key == "" {
				key = os.Getenv("GOOGLE_API_KEY")
			}
			p, err := google.New(ctx, key, cfg.Search.Google.EngineID,
				google.WithHTTPClient(fetcher.Client()), google.WithLogger(logger))
			if err != nil {
				logger.Warn("skipping search provider", "provider", name, "error", err)
				continue
			}
			providers = append(providers, search.Cached(p, cache, logger))

		case "duckduckgo":
			p := duckduckgo.New(duckduckgo.WithFetcher(fetcher), duckduckgo.WithLogger(logger))
			providers = append(providers, search.Cached(p, cache, logger))

		case "mock":
			p, err := mock.New()
			if err != nil {
				return nil, nil, err
			}
			// The mock rotates batches per call, so it is never cached.
			providers = append(providers, p)
		}
	}

	if len(providers) == 0 {
		return nil, nil, fmt.Errorf("%w: set BRAVE_API_KEY or GOOGLE_API_KEY, or add duckduckgo or mock to search.providers", search.ErrNoProvider)
	}

	var newsProvider search.Provider
	if cfg.Search.News.Enabled && !offlineOnly(cfg) {
		np := news.New(
			news.WithEdition(news.Edition{HL: cfg.Search.News.HL, GL: cfg.Search.News.GL, CEID: cfg.Search.News.CEID}),
			news.WithFetcher(fetcher),
			news.WithLogger(logger),
		)
		newsProvider = search.Cached(np, cache, logger)
	}

	return search.NewChain(logger, providers...), newsProvider, nil
}

// offlineOnly reports whether the mock provider is the only one configured
func offlineOnly(cfg *config.Config) bool {
	return len(cfg.Search.Providers) > 0 && !slices.ContainsFunc(cfg.Search.Providers, func(p string) bool {
		return p != "mock"
	})
}

// pipelineSettings maps the config sections onto the stage limits
func pipelineSettings(cfg *config.Config) pipeline.Settings {
	s := pipeline.DefaultSettings()
	s.MaxResults = cfg.Discovery.MaxResults
	s.MinVerifyScore = cfg.Verification.MinScore
	s.ResultsPerQuery = cfg.Verification.ResultsPerQuery
	s.CommonNames = cfg.Verification.CommonNames
	s.BlockedURLs = slices.Clone(leads.DefaultBlockedURLs)
	if len(cfg.Enrichment.Queries) > 0 {
		s.EnrichQueries = cfg.Enrichment.Queries
	}
	if cfg.Enrichment.ResultsPerQuery > 0 {
		s.EnrichResults = cfg.Enrichment.ResultsPerQuery
	}
	return s
}

// newPipeline wires providers, scorers and settings from the config.
// Call Release on the result.
func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	provider, newsProvider, err := buildProviders(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	first, second := newScorers(cfg)

	opts := []pipeline.Option{
		pipeline.WithWorkers(cfg.Verification.Workers),
		pipeline.WithLogger(logger),
		pipeline.WithSettings(pipelineSettings(cfg)),
		pipeline.WithConsolidator(newConsolidator(cfg)),
	}
	if newsProvider != nil {
		opts = append(opts, pipeline.WithNews(newsProvider))
	}

	p, err := pipeline.New(provider, first, second, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	logger.Debug("pipeline ready", "providers", provider.Name(), "news", newsProvider != nil)
	return p, nil
}

// startRun records the start of a run
func startRun(ctx context.Context, db *database.DB, kind database.RunKind) (*database.Run, error) {
	run := &database.Run{Kind: kind}
	if err := db.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// finishRun stores the run counters. A fatal error is kept as text.
func finishRun(ctx context.Context, db *database.DB, run *database.Run, runErr error) {
	if runErr != nil {
		text := runErr.Error()
		run.ErrorText = &text
	}
	// The command context may already be cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := db.FinishRun(ctx, run); err != nil {
		slog.Warn("failed to finish run record", "run", run.ID, "error", err)
	}
}

// newProgressPrinter returns a progress callback that redraws one status
// line on a terminal. Off a TTY it prints phase changes and every tenth
// verified or enriched candidate.
func newProgressPrinter(terminal *Terminal) pipeline.ProgressCallback {
	var lastPhase pipeline.ProgressPhase

	return func(p pipeline.Progress) {
		var eta string
		if d := p.ETA(); d > 0 {
			eta = fmt.Sprintf(" (ETA: %s)", FormatETA(d))
		}

		var msg string
		switch p.Phase {
		case pipeline.PhaseDiscovering:
			msg = fmt.Sprintf("%s Searching: query %d/%d", terminal.Spinner(), p.Current, p.Total)
		case pipeline.PhaseScoring:
			msg = fmt.Sprintf("Scoring hits: %d/%d (%d%%)", p.Current, p.Total, p.Percentage())
		case pipeline.PhaseVerifying:
			msg = fmt.Sprintf("Verifying: %d/%d candidates (%d%%)%s", p.Current, p.Total, p.Percentage(), eta)
		case pipeline.PhaseConsolidating:
			msg = fmt.Sprintf("%s Consolidating %d leads...", terminal.Spinner(), p.Total)
		case pipeline.PhaseEnriching:
			msg = fmt.Sprintf("Enriching: %d/%d candidates (%d%%)%s", p.Current, p.Total, p.Percentage(), eta)
		case pipeline.PhaseComplete:
			msg = "Done: " + p.Description
		}
		if p.Description != "" && p.Phase != pipeline.PhaseComplete && p.Phase != pipeline.PhaseConsolidating {
			msg += " " + terminal.Color(ColorGray, truncateLine(p.Description, 40))
		}
		msg = terminal.Color(PhaseColor(p.Phase), msg)

		show := terminal.IsTerminal || p.Phase != lastPhase
		if p.Phase == pipeline.PhaseVerifying || p.Phase == pipeline.PhaseEnriching {
			show = show || p.Current%10 == 0 || p.Current == p.Total
		}
		if show {
			terminal.Status(msg)
		}
		lastPhase = p.Phase
	}
}

// printWarnings lists the non-fatal errors of a run
func printWarnings(errs []error) {
	if len(errs) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("Warnings: %d\n", len(errs))
	for _, e := range errs {
		fmt.Printf("  - %v\n", e)
	}
}

// quiet reports whether progress and summaries should be suppressed so
// machine-readable output stays clean
func quiet() bool {
	return outputFmt == "json" || outputFmt == "csv"
}

func truncateLine(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// elapsed formats a wall-clock duration for summaries
func elapsed(start time.Time) string {
	return time.Since(start).Round(100 * time.Millisecond).String()
}
