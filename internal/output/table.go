package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/model"
	"github.com/tekoetch/investorscout/internal/pipeline"
	"github.com/tekoetch/investorscout/internal/verify"
)

// Column headers shared by tables and CSV export
var (
	FirstPassHeader = []string{
		"Name", "Title", "Snippet", "URL", "Score", "Confidence", "Signals", "Affiliated Organization",
	}
	SecondPassHeader = []string{
		"Name", "Query Used", "Snippet", "Second-Pass Score", "Score Breakdown", "Source URL",
	}
	ConsolidatedHeader = []string{
		"Name", "Company", "First-Pass Score", "Second-Pass Score", "Final Score",
		"Investor Confirmed", "Geography Confirmed", "Final Verdict", "URL",
	}
	EnrichmentHeader = []string{"Name", "Channel", "Query Used", "Snippet", "Source URL"}
	PredictionHeader = []string{"Name", "Identity", "Behavior", "Geo", "Contact", "Mean"}
)

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []leads.Lead:
		return leadsTable(w, v)
	case []verify.Evidence:
		return evidenceTable(w, v)
	case []consolidate.Verdict:
		return verdictsTable(w, v)
	case *consolidate.Verdict:
		return verdictDetail(w, v)
	case *Candidate:
		return candidateDetail(w, v)
	case []pipeline.Enrichment:
		return enrichmentTable(w, v)
	case []model.Prediction:
		return predictionsTable(w, v)
	case []database.Run:
		return runsTable(w, v)
	case *database.Stats:
		return statsTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func render(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	return table.Render()
}

func leadsTable(w io.Writer, list []leads.Lead) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No leads found.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, l := range list {
		name := l.Name
		if l.Unverified {
			name += " (unverified)"
		}
		rows = append(rows, []string{
			truncate(name, 30),
			truncate(l.Title, 40),
			truncate(oneLine(l.Snippet), 60),
			truncate(l.URL, 45),
			FormatScore(l.Score),
			string(l.Confidence),
			fmt.Sprintf("%d signals", len(l.Signals)),
			truncate(l.Organization, 25),
		})
	}
	return render(w, FirstPassHeader, rows)
}

func evidenceTable(w io.Writer, list []verify.Evidence) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No verification evidence found.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			truncate(e.Name, 30),
			truncate(e.Query, 40),
			truncate(oneLine(e.Snippet), 60),
			FormatScore(e.Score),
			truncate(strings.Join(e.Breakdown, " | "), 60),
			truncate(e.SourceURL, 45),
		})
	}
	return render(w, SecondPassHeader, rows)
}

func verdictsTable(w io.Writer, list []consolidate.Verdict) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No verdicts found. Run `scout consolidate` first.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, v := range list {
		rows = append(rows, []string{
			truncate(v.Name, 30),
			truncate(v.Organization, 25),
			FormatScore(v.FirstPassScore),
			FormatScore(v.SecondPassTotal),
			FormatScore(v.FinalScore),
			YesNo(v.InvestorConfirmed),
			YesNo(v.GeoConfirmed),
			string(v.Grade),
			truncate(v.URL, 45),
		})
	}
	return render(w, ConsolidatedHeader, rows)
}

func verdictDetail(w io.Writer, v *consolidate.Verdict) error {
	fmt.Fprintf(w, "Name:        %s\n", v.Name)
	if v.Organization != "" {
		fmt.Fprintf(w, "Company:     %s\n", v.Organization)
	}
	fmt.Fprintf(w, "Verdict:     %s", v.Grade)
	switch {
	case v.RegionOverride:
		fmt.Fprint(w, " (no target-region evidence)")
	case v.Unverified:
		fmt.Fprint(w, " (ambiguous name, evidence ignored)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scores:      first %.2f, second %.2f, final %.2f\n",
		v.FirstPassScore, v.SecondPassTotal, v.FinalScore)
	fmt.Fprintf(w, "Investor:    %s\n", YesNo(v.InvestorConfirmed))
	fmt.Fprintf(w, "Geography:   %s\n", YesNo(v.GeoConfirmed))
	fmt.Fprintf(w, "Evidence:    %d rows\n", v.EvidenceCount)
	if len(v.SocialPresence) > 0 {
		fmt.Fprintf(w, "Presence:    %s\n", strings.Join(v.SocialPresence, ", "))
	}
	if len(v.IdentityKeywords) > 0 {
		fmt.Fprintf(w, "Identity:    %s\n", strings.Join(v.IdentityKeywords, ", "))
	}
	if len(v.SeniorityKeywords) > 0 {
		fmt.Fprintf(w, "Seniority:   %s\n", strings.Join(v.SeniorityKeywords, ", "))
	}
	if len(v.GeoKeywords) > 0 {
		fmt.Fprintf(w, "Region:      %s\n", strings.Join(v.GeoKeywords, ", "))
	}
	fmt.Fprintf(w, "URL:         %s\n", v.URL)

	return nil
}

func enrichmentTable(w io.Writer, list []pipeline.Enrichment) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No enrichment results found.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			truncate(e.Name, 30),
			e.Channel,
			truncate(e.Query, 40),
			truncate(oneLine(e.Snippet), 60),
			truncate(e.SourceURL, 45),
		})
	}
	return render(w, EnrichmentHeader, rows)
}

func predictionsTable(w io.Writer, list []model.Prediction) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No predictions.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{
			truncate(p.Name, 30),
			FormatScore(p.Identity),
			FormatScore(p.Behavior),
			FormatScore(p.Geo),
			FormatScore(p.Contact),
			FormatScore(p.Mean()),
		})
	}
	return render(w, PredictionHeader, rows)
}

func runsTable(w io.Writer, runs []database.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "running"
		if r.FinishedAt != nil {
			duration = r.Duration().Round(time.Second).String()
		}
		rows = append(rows, []string{
			r.StartedAt.Format("Jan 02 15:04"),
			string(r.Kind),
			duration,
			fmt.Sprintf("%d", r.Queries),
			fmt.Sprintf("%d", r.Added),
			fmt.Sprintf("%d", r.Verified),
			fmt.Sprintf("%d", r.Evidence),
			fmt.Sprintf("%d", r.Errors),
		})
	}
	return render(w, []string{"Started", "Kind", "Duration", "Queries", "Added", "Verified", "Evidence", "Errors"}, rows)
}

func statsTable(w io.Writer, s *database.Stats) error {
	fmt.Fprintln(w, "Investor Scout Statistics")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Total discovered:       %d\n", s.TotalDiscovered)
	fmt.Fprintf(w, "Unverified names:       %d\n", s.Unverified)
	fmt.Fprintf(w, "Total verified:         %d\n", s.TotalVerified)
	fmt.Fprintf(w, "Evidence rows:          %d\n", s.EvidenceRows)

	for _, g := range consolidate.Grades {
		fmt.Fprintf(w, "%-24s%d\n", string(g)+":", s.Verdicts[g])
	}

	fmt.Fprintf(w, "Green list:             %d (%.1f%%)\n", s.GreenList, s.GreenPercent)
	if s.Enrichments > 0 {
		fmt.Fprintf(w, "Enrichment rows:        %d\n", s.Enrichments)
	}
	if s.Labels > 0 {
		fmt.Fprintf(w, "Labels:                 %d\n", s.Labels)
	}
	if s.LastRun != nil {
		fmt.Fprintf(w, "Last run:               %s (%s)\n",
			s.LastRun.StartedAt.Format("Jan 02, 2006 15:04"), s.LastRun.Kind)
	}

	return nil
}

// FormatScore renders a score with two decimals
func FormatScore(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// YesNo renders a flag the way the verdict columns expect
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
