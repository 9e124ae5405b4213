package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tekoetch/investorscout/internal/leads"
)

// DiscoveryResult contains the results of a discovery run
type DiscoveryResult struct {
	Queries int
	Hits    int
	Added   int
	Merged  int
	Skipped int // near-duplicate sightings
	Blocked int // tracking redirects
	Invalid int // missing URL or title, or no usable name
	Leads   []leads.Lead
	Touched []leads.Lead
	Errors  []error
}

// Discover runs each query in order and folds the hits into the known
// leads. A failing query is recorded and skipped.
func (p *Pipeline) Discover(ctx context.Context, queries []string, existing []leads.Lead, progress ProgressCallback) (*DiscoveryResult, error) {
	return p.discover(ctx, queries, existing, newReporter(progress))
}

func (p *Pipeline) discover(ctx context.Context, queries []string, existing []leads.Lead, r *reporter) (*DiscoveryResult, error) {
	result := &DiscoveryResult{}
	book := leads.NewBook(existing)

	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r.report(PhaseDiscovering, i+1, len(queries), q)

		hits, err := p.provider.Search(ctx, q, p.settings.MaxResults)
		result.Queries++
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			p.logger.WarnContext(ctx, "discovery query failed", "query", q, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("query %q: %w", q, err))
			continue
		}
		result.Hits += len(hits)

		for j, h := range hits {
			r.report(PhaseScoring, j+1, len(hits), h.Title)

			if h.URL == "" || strings.TrimSpace(h.Title) == "" {
				result.Invalid++
				continue
			}
			if leads.Blocked(h.URL, p.settings.BlockedURLs) {
				result.Blocked++
				continue
			}

			name := leads.ExtractName(h.Title)
			if !leads.ValidName(name) {
				result.Invalid++
				continue
			}

			title := leads.CleanTitle(h.Title)
			snippet := leads.SoftTruncate(h.Snippet)
			scored := p.first.Score(title+" "+snippet, q, h.URL)
			ambiguous, reason := leads.Ambiguous(name, p.settings.CommonNames)
			now := p.now()

			outcome, stored := book.Add(leads.Lead{
				Name:         name,
				Title:        title,
				Snippet:      snippet,
				URL:          h.URL,
				Score:        scored.Score,
				Confidence:   scored.Confidence,
				Signals:      scored.Signals,
				Organization: scored.Organization,
				Query:        q,
				Unverified:   ambiguous,
				FirstSeen:    now,
				LastSeen:     now,
			})

			switch outcome {
			case leads.OutcomeAdded:
				result.Added++
				if ambiguous {
					p.logger.DebugContext(ctx, "lead marked unverified", "name", name, "reason", reason)
				}
			case leads.OutcomeMerged:
				result.Merged++
			case leads.OutcomeSkipped:
				result.Skipped++
			}
			p.logger.DebugContext(ctx, "lead scored",
				"name", stored.Name, "score", scored.Score, "outcome", outcome)
		}
	}

	result.Leads = book.All()
	result.Touched = book.Touched()
	return result, nil
}
