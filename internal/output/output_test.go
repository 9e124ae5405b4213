package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/verify"
)

var testVerdicts = []consolidate.Verdict{
	{
		Name: "Jane Doe", Organization: "Falcon Capital",
		FirstPassScore: 7.5, SecondPassTotal: 1.8, FinalScore: 4.65,
		InvestorConfirmed: true, GeoConfirmed: true, Grade: consolidate.GradeReject,
		URL:              "https://example.com/jane",
		SocialPresence:   []string{"instagram.com", "webmail"},
		IdentityKeywords: []string{"angel investor", "founder"},
		GeoKeywords:      []string{"dubai"},
	},
}

func TestCSVTo_Verdicts(t *testing.T) {
	var buf bytes.Buffer
	if err := CSVTo(&buf, testVerdicts); err != nil {
		t.Fatalf("CSVTo failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if diff := cmp.Diff(VerdictExportHeader, records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	want := []string{
		"Jane Doe", "Falcon Capital", "7.50", "1.80", "4.65", "Yes", "Yes", "Reject",
		"https://example.com/jane", "instagram.com, webmail", "angel investor, founder", "dubai", "",
	}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVTo_Evidence(t *testing.T) {
	var buf bytes.Buffer
	err := CSVTo(&buf, []verify.Evidence{{
		Name: "Jane Doe", Query: `"Jane Doe" UAE investment`, Snippet: "text, with comma",
		Score: 1.8, Breakdown: []string{"a (+1.5)", "b (+0.3)"}, SourceURL: "https://example.org",
	}})
	if err != nil {
		t.Fatalf("CSVTo failed: %v", err)
	}

	records, _ := csv.NewReader(&buf).ReadAll()
	if got := records[1][4]; got != "a (+1.5) | b (+0.3)" {
		t.Errorf("unexpected breakdown cell %q", got)
	}
	if got := records[1][2]; got != "text, with comma" {
		t.Errorf("expected quoted snippet to round-trip, got %q", got)
	}
}

func TestCSVTo_Unsupported(t *testing.T) {
	if err := CSVTo(&bytes.Buffer{}, 42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestTableTo(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want string
	}{
		{"verdicts", testVerdicts, "Jane Doe"},
		{"empty verdicts", []consolidate.Verdict{}, "No verdicts found"},
		{"leads", []leads.Lead{{Name: "Omar Haddad", Unverified: true, Score: 5}}, "Omar Haddad (unverified)"},
		{"empty evidence", []verify.Evidence(nil), "No verification evidence found"},
		{"verdict detail", &testVerdicts[0], "first 7.50, second 1.80, final 4.65"},
		{"stats", &database.Stats{TotalDiscovered: 12, GreenList: 3, GreenPercent: 25}, "3 (25.0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TableTo(&buf, tt.data); err != nil {
				t.Fatalf("TableTo failed: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestCandidateDetail(t *testing.T) {
	c := &Candidate{
		Leads: []leads.Lead{{
			Name: "Jane Doe", Title: "Jane Doe - Angel Investor", Score: 7.5,
			Snippet: "Angel investor in Dubai", Signals: []string{"Identity keyword 'angel investor' (+2.5)"},
		}},
		Evidence: []verify.Evidence{{Name: "Jane Doe", Score: 1.5, Breakdown: []string{"Confirmed investor identity (+1.5)"}}},
		Contexts: []string{"angel investor in Dubai"},
	}

	var buf bytes.Buffer
	if err := TableTo(&buf, c); err != nil {
		t.Fatalf("TableTo failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Candidate: Jane Doe", "not consolidated yet", "+ Identity keyword", "Confirmed investor identity"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestJSONLinesTo(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONLinesTo(&buf, testVerdicts); err != nil {
		t.Fatalf("JSONLinesTo failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], `"verdict":"Reject"`) {
		t.Errorf("unexpected JSON lines %q", buf.String())
	}
}

func TestOutputTo(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputTo(&buf, "json", testVerdicts); err != nil {
		t.Fatalf("OutputTo json failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "[\n  {") {
		t.Errorf("expected indented JSON array, got %q", buf.String())
	}

	if err := OutputTo(&buf, "yaml", testVerdicts); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := ValidFormat(""); err != nil {
		t.Errorf("empty format should default to table: %v", err)
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wordWrap = %q, want %q", got, want)
	}
}
