package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/verify"
)

// RunOptions configures a full run
type RunOptions struct {
	Queries    []string
	Existing   []leads.Lead      // leads from earlier runs
	Evidence   []verify.Evidence // evidence from earlier runs
	VerifyAll  bool              // re-verify every stored lead, not only new or merged ones
	SkipVerify bool              // consolidate with earlier evidence only
	Enrich     bool
	Progress   ProgressCallback
}

// RunResult contains the results of a full run
type RunResult struct {
	Discovery    *DiscoveryResult
	Verification *VerifyResult
	Evidence     []verify.Evidence // previous evidence with re-verified candidates replaced
	Verdicts     []consolidate.Verdict
	Enrichment   *EnrichResult
	Errors       []error
}

// Run discovers, verifies and consolidates, then optionally enriches
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	r := newReporter(opts.Progress)
	result := &RunResult{}

	disc, err := p.discover(ctx, opts.Queries, opts.Existing, r)
	result.Discovery = disc
	if err != nil {
		return result, fmt.Errorf("failed to discover: %w", err)
	}
	result.Errors = append(result.Errors, disc.Errors...)

	candidates := disc.Touched
	switch {
	case opts.SkipVerify:
		candidates = nil
	case opts.VerifyAll:
		candidates = disc.Leads
	}

	ver, err := p.verify(ctx, candidates, r)
	result.Verification = ver
	if err != nil {
		return result, fmt.Errorf("failed to verify: %w", err)
	}
	result.Errors = append(result.Errors, ver.Errors...)

	result.Evidence = MergeEvidence(opts.Evidence, ver.Verified, ver.Evidence)
	result.Verdicts = p.consolidate(disc.Leads, result.Evidence, r)

	if opts.Enrich {
		enr, err := p.enrich(ctx, result.Verdicts, r)
		result.Enrichment = enr
		if err != nil {
			return result, fmt.Errorf("failed to enrich: %w", err)
		}
		result.Errors = append(result.Errors, enr.Errors...)
	}

	r.report(PhaseComplete, 1, 1, fmt.Sprintf("%d verdicts", len(result.Verdicts)))
	return result, nil
}

// Consolidate builds verdicts from every lead and evidence row
func (p *Pipeline) Consolidate(all []leads.Lead, evidence []verify.Evidence, progress ProgressCallback) []consolidate.Verdict {
	return p.consolidate(all, evidence, newReporter(progress))
}

func (p *Pipeline) consolidate(all []leads.Lead, evidence []verify.Evidence, r *reporter) []consolidate.Verdict {
	r.report(PhaseConsolidating, 0, len(all), "")
	verdicts := p.consolidator.Consolidate(all, evidence)
	r.report(PhaseConsolidating, len(all), len(all), fmt.Sprintf("%d candidates", len(verdicts)))
	return verdicts
}

// MergeEvidence drops earlier rows of re-verified candidates and appends
// the fresh rows
func MergeEvidence(previous []verify.Evidence, verified []string, fresh []verify.Evidence) []verify.Evidence {
	replaced := make(map[string]bool, len(verified))
	for _, name := range verified {
		replaced[strings.ToLower(name)] = true
	}

	merged := make([]verify.Evidence, 0, len(previous)+len(fresh))
	for _, e := range previous {
		if !replaced[strings.ToLower(e.Name)] {
			merged = append(merged, e)
		}
	}
	return append(merged, fresh...)
}
