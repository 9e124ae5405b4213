package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/pipeline"
	"github.com/tekoetch/investorscout/internal/taxonomy"
	"github.com/tekoetch/investorscout/internal/verify"
)

// Candidate is everything stored about one person
type Candidate struct {
	Verdict     *consolidate.Verdict  `json:"verdict,omitempty"`
	Leads       []leads.Lead          `json:"leads"`
	Evidence    []verify.Evidence     `json:"evidence"`
	Enrichments []pipeline.Enrichment `json:"enrichments,omitempty"`
	Contexts    []string              `json:"keyword_contexts,omitempty"`
}

// Name returns the candidate's display name
func (c *Candidate) Name() string {
	if c.Verdict != nil {
		return c.Verdict.Name
	}
	if len(c.Leads) > 0 {
		return c.Leads[0].Name
	}
	return ""
}

// LoadCandidate resolves identifier to a verdict name, falling back to
// leads that were never consolidated and then to a verdict search
func LoadCandidate(ctx context.Context, db *database.DB, identifier string, tax taxonomy.Taxonomy) (*Candidate, error) {
	verdict, err := db.GetVerdict(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	name := identifier
	if verdict != nil {
		name = verdict.Name
	}

	found, err := db.ListLeads(ctx, database.LeadListOptions{Name: &name})
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}

	if verdict == nil && len(found) == 0 {
		results, err := db.SearchVerdicts(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("search error: %w", err)
		}
		if len(results) == 0 {
			return nil, nil
		}
		verdict = &results[0]
		name = verdict.Name
		if found, err = db.ListLeads(ctx, database.LeadListOptions{Name: &name}); err != nil {
			return nil, fmt.Errorf("failed to load leads: %w", err)
		}
	}

	c := &Candidate{Verdict: verdict, Leads: found}

	if c.Evidence, err = db.ListEvidence(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to load evidence: %w", err)
	}
	if c.Enrichments, err = db.ListEnrichments(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to load enrichments: %w", err)
	}

	for _, l := range found {
		c.Contexts = append(c.Contexts, taxonomy.KeywordContext(l.Text(), tax.All(), 40)...)
	}

	return c, nil
}

// candidateDetail formats a candidate with its first-pass sightings and
// second-pass evidence
func candidateDetail(w io.Writer, c *Candidate) error {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Candidate: %s\n", c.Name())
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if c.Verdict != nil {
		if err := verdictDetail(w, c.Verdict); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, "Verdict:     not consolidated yet")
	}
	fmt.Fprintln(w)

	for i, l := range c.Leads {
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintf(w, "[sighting %d/%d] score %.2f (%s) - %s\n",
			i+1, len(c.Leads), l.Score, l.Confidence, l.FirstSeen.Format("Jan 02, 2006"))
		fmt.Fprintf(w, "Title: %s\n", l.Title)
		fmt.Fprintf(w, "URL:   %s\n", l.URL)
		if l.Query != "" {
			fmt.Fprintf(w, "Query: %s\n", l.Query)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, wordWrap(l.Snippet, 78))
		if len(l.Signals) > 0 {
			fmt.Fprintln(w)
			for _, sig := range l.Signals {
				fmt.Fprintf(w, "  + %s\n", sig)
			}
		}
		fmt.Fprintln(w)
	}

	if len(c.Contexts) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintln(w, "Keyword context:")
		for _, ctx := range c.Contexts {
			fmt.Fprintf(w, "  %s\n", ctx)
		}
		fmt.Fprintln(w)
	}

	if len(c.Evidence) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintf(w, "Verification evidence (%d rows):\n", len(c.Evidence))
		for _, e := range c.Evidence {
			fmt.Fprintf(w, "  %.2f  %s\n", e.Score, strings.Join(e.Breakdown, " | "))
			fmt.Fprintf(w, "        %s\n", e.SourceURL)
		}
		fmt.Fprintln(w)
	}

	if len(c.Enrichments) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintln(w, "Presence and contact:")
		for _, e := range c.Enrichments {
			fmt.Fprintf(w, "  %-10s %s\n", e.Channel, e.SourceURL)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	return nil
}

// wordWrap wraps text at the specified width
func wordWrap(text string, width int) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		if len(line) <= width {
			result.WriteString(line)
			result.WriteString("\n")
			continue
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)
		result.WriteString("\n")
	}

	return strings.TrimSuffix(result.String(), "\n")
}
