package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tekoetch/investorscout/internal/consolidate"
)

// EnrichResult contains the results of a third-pass run
type EnrichResult struct {
	Candidates []string
	Queries    int
	Rows       []Enrichment
	Errors     []error
}

// Channel names the presence or contact channel a query template targets:
// the site for "site:" templates, otherwise the last plain word.
func Channel(template string) string {
	fields := strings.Fields(strings.ReplaceAll(template, "%s", ""))
	for _, f := range fields {
		if site, ok := strings.CutPrefix(f, "site:"); ok {
			host := strings.TrimPrefix(site, "www.")
			label, _, _ := strings.Cut(host, ".")
			return label
		}
	}
	if len(fields) == 0 {
		return "web"
	}
	return strings.Trim(strings.ToLower(fields[len(fields)-1]), `"`)
}

// Enrich looks for social presence and contact details of every
// candidate not rejected by consolidation
func (p *Pipeline) Enrich(ctx context.Context, verdicts []consolidate.Verdict, progress ProgressCallback) (*EnrichResult, error) {
	return p.enrich(ctx, verdicts, newReporter(progress))
}

func (p *Pipeline) enrich(ctx context.Context, verdicts []consolidate.Verdict, r *reporter) (*EnrichResult, error) {
	result := &EnrichResult{}
	for _, v := range verdicts {
		if v.Grade != consolidate.GradeReject {
			result.Candidates = append(result.Candidates, v.Name)
		}
	}

	for i, name := range result.Candidates {
		r.report(PhaseEnriching, i+1, len(result.Candidates), name)
		quoted := `"` + name + `"`

		for _, tmpl := range p.settings.EnrichQueries {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			q := fmt.Sprintf(tmpl, quoted)
			hits, err := p.provider.Search(ctx, q, p.settings.EnrichResults)
			result.Queries++
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				p.logger.WarnContext(ctx, "enrichment query failed", "query", q, "error", err)
				result.Errors = append(result.Errors, fmt.Errorf("enrich %q: %w", q, err))
				continue
			}

			channel := Channel(tmpl)
			for _, h := range hits {
				if h.URL == "" {
					continue
				}
				result.Rows = append(result.Rows, Enrichment{
					Name:      name,
					Channel:   channel,
					Query:     q,
					Snippet:   strings.TrimSpace(h.Title + " " + h.Snippet),
					SourceURL: h.URL,
					CreatedAt: p.now(),
				})
			}
		}
	}

	return result, nil
}
