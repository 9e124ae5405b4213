package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/model"
	"github.com/tekoetch/investorscout/internal/pipeline"
	"github.com/tekoetch/investorscout/internal/verify"
)

// VerdictExportHeader is the consolidated header plus the keyword columns
var VerdictExportHeader = append(append([]string{}, ConsolidatedHeader...),
	"Social Presence", "Identity Keywords", "Geo Keywords", "Seniority Keywords")

// CSV writes data as CSV to stdout
func CSV(data interface{}) error {
	return CSVTo(os.Stdout, data)
}

// CSVTo writes data as CSV to the given writer. Cells are not truncated.
func CSVTo(w io.Writer, data interface{}) error {
	var header []string
	var rows [][]string

	switch v := data.(type) {
	case []consolidate.Verdict:
		header = VerdictExportHeader
		for _, r := range v {
			rows = append(rows, []string{
				r.Name, r.Organization,
				FormatScore(r.FirstPassScore), FormatScore(r.SecondPassTotal), FormatScore(r.FinalScore),
				YesNo(r.InvestorConfirmed), YesNo(r.GeoConfirmed), string(r.Grade), r.URL,
				strings.Join(r.SocialPresence, ", "),
				strings.Join(r.IdentityKeywords, ", "),
				strings.Join(r.GeoKeywords, ", "),
				strings.Join(r.SeniorityKeywords, ", "),
			})
		}
	case []leads.Lead:
		header = FirstPassHeader
		for _, l := range v {
			rows = append(rows, []string{
				l.Name, l.Title, l.Snippet, l.URL, FormatScore(l.Score), string(l.Confidence),
				strings.Join(l.Signals, " | "), l.Organization,
			})
		}
	case []verify.Evidence:
		header = SecondPassHeader
		for _, e := range v {
			rows = append(rows, []string{
				e.Name, e.Query, e.Snippet, FormatScore(e.Score), strings.Join(e.Breakdown, " | "), e.SourceURL,
			})
		}
	case []pipeline.Enrichment:
		header = EnrichmentHeader
		for _, e := range v {
			rows = append(rows, []string{e.Name, e.Channel, e.Query, e.Snippet, e.SourceURL})
		}
	case []model.Prediction:
		header = PredictionHeader
		for _, p := range v {
			rows = append(rows, []string{
				p.Name, FormatScore(p.Identity), FormatScore(p.Behavior),
				FormatScore(p.Geo), FormatScore(p.Contact), FormatScore(p.Mean()),
			})
		}
	default:
		return fmt.Errorf("unsupported data type for CSV output: %T", data)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
