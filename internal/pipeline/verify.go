package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/search"
	"github.com/tekoetch/investorscout/internal/verify"
)

// VerifyResult contains the results of a verification run
type VerifyResult struct {
	Candidates int
	Queries    int
	Verified   []string // candidate names, in merge order
	Evidence   []verify.Evidence
	Message    string
	Errors     []error
}

// candidateResult is what one worker produces for one candidate
type candidateResult struct {
	name     string
	queries  int
	evidence []verify.Evidence
	errs     []error
}

// Eligible returns one lead per candidate name that qualifies for the
// second pass, keeping the highest-scoring sighting
func (p *Pipeline) Eligible(all []leads.Lead) []leads.Lead {
	var out []leads.Lead
	index := make(map[string]int)
	for _, l := range all {
		if l.Unverified || l.Score < p.settings.MinVerifyScore {
			continue
		}
		key := strings.ToLower(l.Name)
		if i, ok := index[key]; ok {
			if l.Score > out[i].Score {
				out[i] = l
			}
			continue
		}
		index[key] = len(out)
		out = append(out, l)
	}
	return out
}

// Verify re-searches each eligible candidate across the worker pool.
// Every task owns its verification state; evidence is merged at the end
// sorted by candidate name.
func (p *Pipeline) Verify(ctx context.Context, all []leads.Lead, progress ProgressCallback) (*VerifyResult, error) {
	return p.verify(ctx, all, newReporter(progress))
}

func (p *Pipeline) verify(ctx context.Context, all []leads.Lead, r *reporter) (*VerifyResult, error) {
	result := &VerifyResult{}
	candidates := p.Eligible(all)
	result.Candidates = len(candidates)

	if len(candidates) == 0 {
		result.Message = NothingToVerify
		return result, nil
	}

	results := make([]*candidateResult, len(candidates))
	var mu sync.Mutex
	var wg sync.WaitGroup
	done := 0

	for i, lead := range candidates {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			res := p.verifyCandidate(ctx, lead)

			mu.Lock()
			defer mu.Unlock()
			results[i] = res
			done++
			r.report(PhaseVerifying, done, len(candidates), lead.Name)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			results[i] = &candidateResult{
				name: lead.Name,
				errs: []error{fmt.Errorf("failed to schedule verification for %q: %w", lead.Name, err)},
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	slices.SortStableFunc(results, func(a, b *candidateResult) int {
		return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
	})
	for _, res := range results {
		result.Queries += res.queries
		result.Verified = append(result.Verified, res.name)
		result.Evidence = append(result.Evidence, res.evidence...)
		result.Errors = append(result.Errors, res.errs...)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// plannedQuery pairs a second-pass query with the provider that runs it
type plannedQuery struct {
	provider search.Provider
	query    string
}

// queryPlan lists the queries a candidate may issue, never more than
// verify.MaxQueries. Web queries come first; the news query takes a slot
// the web queries leave free.
func (p *Pipeline) queryPlan(lead leads.Lead) []plannedQuery {
	anchors := p.second.ExtractAnchors(lead.Text())
	var plan []plannedQuery
	for _, q := range p.second.BuildQueries(lead.Name, anchors, lead.Organization) {
		plan = append(plan, plannedQuery{provider: p.provider, query: q})
	}
	if p.news != nil && len(plan) < verify.MaxQueries {
		q := fmt.Sprintf("%q investor", lead.Name)
		if qualifier := p.second.Config().RegionQualifier; qualifier != "" {
			q += " " + qualifier
		}
		plan = append(plan, plannedQuery{provider: p.news, query: q})
	}
	if len(plan) > verify.MaxQueries {
		plan = plan[:verify.MaxQueries]
	}
	return plan
}

// verifyCandidate works through the query plan. A later query only runs
// when the earlier ones produced no scoring evidence, and searching stops
// once identity and geography are both confirmed.
func (p *Pipeline) verifyCandidate(ctx context.Context, lead leads.Lead) *candidateResult {
	res := &candidateResult{name: lead.Name}

	tax := p.first.Taxonomy()
	known := tax.Hits(strings.ToLower(lead.Text()), tax.All())
	st := verify.NewState(lead.Name, known)

	for _, pq := range p.queryPlan(lead) {
		if st.Sufficient() || ctx.Err() != nil {
			break
		}
		if p.searchEvidence(ctx, pq.provider, pq.query, lead.Name, st, res) {
			break
		}
	}

	p.logger.DebugContext(ctx, "candidate verified",
		"name", lead.Name, "queries", res.queries, "evidence", len(res.evidence),
		"sufficient", st.Sufficient())
	return res
}

// searchEvidence runs one query and keeps every hit that scored. It
// reports whether any did.
func (p *Pipeline) searchEvidence(ctx context.Context, provider search.Provider, q, name string, st *verify.State, res *candidateResult) bool {
	hits, err := provider.Search(ctx, q, p.settings.ResultsPerQuery)
	res.queries++
	if err != nil {
		if ctx.Err() == nil {
			p.logger.WarnContext(ctx, "verification query failed", "query", q, "error", err)
			res.errs = append(res.errs, fmt.Errorf("verify %q: %w", q, err))
		}
		return false
	}

	scored := false
	for _, h := range hits {
		if h.URL == "" {
			continue
		}
		text := strings.TrimSpace(h.Title + " " + h.Snippet)
		out := p.second.Score(text, h.URL, st)
		if out.Score <= 0 {
			continue
		}
		scored = true
		res.evidence = append(res.evidence, verify.Evidence{
			Name:      name,
			Query:     q,
			Snippet:   text,
			Score:     out.Score,
			Breakdown: out.Breakdown,
			SourceURL: h.URL,
			CreatedAt: p.now(),
		})
		if st.Sufficient() {
			break
		}
	}
	return scored
}
