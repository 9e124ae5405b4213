package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/features"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/pipeline"
	"github.com/tekoetch/investorscout/internal/verify"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "investorscout-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := Open(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

func TestOpen(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	version, err := db.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}

	// Re-running migrations on an existing database is a no-op
	if err := db.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestPendingMigrations(t *testing.T) {
	all, err := pendingMigrations(0)
	if err != nil {
		t.Fatalf("pendingMigrations failed: %v", err)
	}
	if len(all) < 2 || all[0].version != 1 || all[1].version != 2 {
		t.Fatalf("expected migrations 1 and 2 in order, got %+v", all)
	}

	rest, _ := pendingMigrations(1)
	if len(rest) != len(all)-1 || rest[0].version != 2 {
		t.Errorf("expected migrations after 1, got %+v", rest)
	}
}

func testLead(name, url string, score float64) leads.Lead {
	seen := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return leads.Lead{
		Name:          name,
		Title:         name + " | Angel Investor",
		Snippet:       "Angel investor based in Dubai",
		URL:           url,
		NormalizedURL: leads.NormalizeURL(url),
		Score:         score,
		Confidence:    firstpass.ConfidenceMedium,
		Signals:       []string{"Identity keyword 'angel investor'", "Geo group"},
		Query:         "angel investor UAE",
		FirstSeen:     seen,
		LastSeen:      seen,
	}
}

func TestSaveLeads_Upsert(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	first := testLead("Jane Smith", "https://www.linkedin.com/in/janesmith/", 6.5)
	if err := db.SaveLeads(ctx, []leads.Lead{first}); err != nil {
		t.Fatalf("SaveLeads failed: %v", err)
	}

	updated := first
	updated.Score = 7.2
	updated.Organization = "Falcon Capital"
	updated.FirstSeen = first.FirstSeen.Add(time.Hour)
	updated.LastSeen = first.LastSeen.Add(time.Hour)
	if err := db.SaveLeads(ctx, []leads.Lead{updated}); err != nil {
		t.Fatalf("SaveLeads (update) failed: %v", err)
	}

	list, err := db.ListLeads(ctx, LeadListOptions{})
	if err != nil {
		t.Fatalf("ListLeads failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 lead after upsert, got %d", len(list))
	}

	got := list[0]
	if got.Score != 7.2 {
		t.Errorf("expected Score=7.2, got %v", got.Score)
	}
	if got.Organization != "Falcon Capital" {
		t.Errorf("expected Organization=Falcon Capital, got %q", got.Organization)
	}
	if !got.FirstSeen.Equal(first.FirstSeen) {
		t.Errorf("expected FirstSeen to be kept, got %v", got.FirstSeen)
	}
	if !got.LastSeen.Equal(updated.LastSeen) {
		t.Errorf("expected LastSeen=%v, got %v", updated.LastSeen, got.LastSeen)
	}
	if len(got.Signals) != 2 {
		t.Errorf("expected 2 signals, got %v", got.Signals)
	}
	if got.Confidence != firstpass.ConfidenceMedium {
		t.Errorf("expected Confidence=Medium, got %s", got.Confidence)
	}

	fetched, err := db.GetLead(ctx, first.NormalizedURL)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if fetched == nil || fetched.Name != "Jane Smith" {
		t.Errorf("expected to fetch Jane Smith, got %+v", fetched)
	}

	missing, err := db.GetLead(ctx, "linkedin.com/in/nobody")
	if err != nil {
		t.Fatalf("GetLead (missing) failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown lead")
	}
}

func TestListLeadsWithFilters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	low := testLead("Omar Haddad", "https://example.com/omar", 3.0)
	high := testLead("Jane Smith", "https://example.com/jane", 8.0)
	unsure := testLead("John Smith", "https://example.com/john", 9.0)
	unsure.Unverified = true
	db.SaveLeads(ctx, []leads.Lead{low, high, unsure})

	minScore := 4.0
	list, _ := db.ListLeads(ctx, LeadListOptions{MinScore: &minScore})
	if len(list) != 2 {
		t.Errorf("expected 2 leads with score >= 4, got %d", len(list))
	}

	list, _ = db.ListLeads(ctx, LeadListOptions{MinScore: &minScore, ExcludeUnsure: true})
	if len(list) != 1 || list[0].Name != "Jane Smith" {
		t.Errorf("expected only Jane Smith, got %+v", list)
	}

	name := "jane smith"
	list, _ = db.ListLeads(ctx, LeadListOptions{Name: &name})
	if len(list) != 1 {
		t.Errorf("expected case-insensitive name match, got %d", len(list))
	}

	list, _ = db.ListLeads(ctx, LeadListOptions{Limit: 1})
	if len(list) != 1 || list[0].Name != "Omar Haddad" {
		t.Errorf("expected first lead in discovery order, got %+v", list)
	}
}

func TestEvidence(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	rows := []verify.Evidence{
		{Name: "Jane Smith", Query: `"Jane Smith" UAE investment`, Snippet: "a", Score: 1.5,
			Breakdown: []string{"Identity confirmed (+1.5)"}, SourceURL: "https://a.example"},
		{Name: "Jane Smith", Query: `"Jane Smith" UAE investment`, Snippet: "b", Score: 0.5,
			Breakdown: []string{"Geo (+0.5)"}, SourceURL: "https://b.example"},
	}
	if err := db.AddEvidence(ctx, "run-1", rows); err != nil {
		t.Fatalf("AddEvidence failed: %v", err)
	}
	if rows[0].ID == "" {
		t.Error("expected AddEvidence to assign an ID")
	}

	list, err := db.ListEvidence(ctx, "JANE SMITH")
	if err != nil {
		t.Fatalf("ListEvidence failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 evidence rows, got %d", len(list))
	}
	if list[0].Snippet != "a" || list[1].Snippet != "b" {
		t.Errorf("expected insertion order, got %q then %q", list[0].Snippet, list[1].Snippet)
	}
	if len(list[0].Breakdown) != 1 || list[0].Breakdown[0] != "Identity confirmed (+1.5)" {
		t.Errorf("unexpected breakdown %v", list[0].Breakdown)
	}

	other := []verify.Evidence{{Name: "Omar Haddad", Query: "q", Score: 1}}
	db.AddEvidence(ctx, "run-1", other)

	replacement := []verify.Evidence{{Name: "Jane Smith", Query: "q2", Snippet: "c", Score: 2}}
	if err := db.ReplaceEvidence(ctx, "run-2", []string{"Jane Smith"}, replacement); err != nil {
		t.Fatalf("ReplaceEvidence failed: %v", err)
	}

	list, _ = db.ListEvidence(ctx, "")
	if len(list) != 2 {
		t.Fatalf("expected 2 rows after replace, got %d", len(list))
	}
	if list[0].Name != "Omar Haddad" || list[1].Snippet != "c" {
		t.Errorf("unexpected rows after replace: %+v", list)
	}
}

func TestVerdicts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	verdicts := []consolidate.Verdict{
		{Name: "Jane Smith", Organization: "Falcon Capital", FirstPassScore: 8, SecondPassTotal: 9,
			FinalScore: 8.5, InvestorConfirmed: true, GeoConfirmed: true, Grade: consolidate.GradeGreat,
			SocialPresence: []string{"instagram.com"}, IdentityKeywords: []string{"angel investor"},
			URL: "https://example.com/jane", EvidenceCount: 3},
		{Name: "Omar Haddad", FirstPassScore: 5, Grade: consolidate.GradePending},
		{Name: "Ali Noor", FirstPassScore: 4, FinalScore: 2, Grade: consolidate.GradeReject},
	}
	if err := db.ReplaceVerdicts(ctx, verdicts); err != nil {
		t.Fatalf("ReplaceVerdicts failed: %v", err)
	}

	list, err := db.ListVerdicts(ctx, VerdictListOptions{})
	if err != nil {
		t.Fatalf("ListVerdicts failed: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Jane Smith" || list[2].Name != "Ali Noor" {
		t.Fatalf("expected consolidation order, got %+v", list)
	}

	accepted, _ := db.ListVerdicts(ctx, VerdictListOptions{AcceptedOnly: true})
	if len(accepted) != 1 {
		t.Errorf("expected 1 accepted verdict, got %d", len(accepted))
	}

	pending := consolidate.GradePending
	byGrade, _ := db.ListVerdicts(ctx, VerdictListOptions{Grade: &pending})
	if len(byGrade) != 1 || byGrade[0].Name != "Omar Haddad" {
		t.Errorf("expected Omar Haddad as pending, got %+v", byGrade)
	}

	v, err := db.GetVerdict(ctx, "jane smith")
	if err != nil {
		t.Fatalf("GetVerdict failed: %v", err)
	}
	if v == nil {
		t.Fatal("expected verdict to be found")
	}
	if !v.InvestorConfirmed || v.Organization != "Falcon Capital" || v.EvidenceCount != 3 {
		t.Errorf("unexpected verdict %+v", v)
	}
	if len(v.SocialPresence) != 1 || v.SocialPresence[0] != "instagram.com" {
		t.Errorf("unexpected social presence %v", v.SocialPresence)
	}

	found, _ := db.SearchVerdicts(ctx, "falcon")
	if len(found) != 1 {
		t.Errorf("expected 1 search match, got %d", len(found))
	}

	// A new consolidation replaces the old one entirely
	db.ReplaceVerdicts(ctx, verdicts[:1])
	list, _ = db.ListVerdicts(ctx, VerdictListOptions{})
	if len(list) != 1 {
		t.Errorf("expected 1 verdict after replace, got %d", len(list))
	}

	missing, _ := db.GetVerdict(ctx, "Ali Noor")
	if missing != nil {
		t.Error("expected nil for replaced verdict")
	}
}

func TestEnrichmentsAndLabels(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	rows := []pipeline.Enrichment{
		{Name: "Jane Smith", Channel: "instagram", Query: `site:instagram.com "Jane Smith"`, SourceURL: "https://instagram.com/jane"},
		{Name: "Jane Smith", Channel: "email", Query: `"Jane Smith" email`, Snippet: "jane@falcon.ae"},
	}
	if err := db.ReplaceEnrichments(ctx, []string{"Jane Smith"}, rows); err != nil {
		t.Fatalf("ReplaceEnrichments failed: %v", err)
	}
	if err := db.ReplaceEnrichments(ctx, []string{"Jane Smith"}, rows[:1]); err != nil {
		t.Fatalf("ReplaceEnrichments (second) failed: %v", err)
	}

	list, err := db.ListEnrichments(ctx, "Jane Smith")
	if err != nil {
		t.Fatalf("ListEnrichments failed: %v", err)
	}
	if len(list) != 1 || list[0].Channel != "instagram" {
		t.Errorf("expected only the instagram row, got %+v", list)
	}

	labels := []features.Label{{Name: "Jane Smith", Identity: 9, Behavior: 7, Geo: 8, Contact: 3}}
	if err := db.SaveLabels(ctx, labels); err != nil {
		t.Fatalf("SaveLabels failed: %v", err)
	}
	labels[0].Contact = 6
	db.SaveLabels(ctx, labels)

	stored, err := db.ListLabels(ctx)
	if err != nil {
		t.Fatalf("ListLabels failed: %v", err)
	}
	if got := stored["jane smith"]; got.Contact != 6 || got.Identity != 9 {
		t.Errorf("unexpected label %+v", got)
	}
}

func TestRuns(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	run := &Run{Kind: RunDiscover}
	if err := db.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}

	run.Queries = 5
	run.Hits = 40
	run.Added = 12
	msg := "brave: status 429"
	run.ErrorText = &msg
	run.Errors = 1
	if err := db.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := db.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.FinishedAt == nil {
		t.Error("expected FinishedAt to be set")
	}
	if got.Added != 12 || got.ErrorText == nil || *got.ErrorText != msg {
		t.Errorf("unexpected run %+v", got)
	}
}

func TestGetStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	empty, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats (empty) failed: %v", err)
	}
	if empty.TotalDiscovered != 0 || empty.GreenPercent != 0 || empty.LastRun != nil {
		t.Errorf("unexpected empty stats %+v", empty)
	}

	unsure := testLead("John Smith", "https://example.com/john", 6)
	unsure.Unverified = true
	db.SaveLeads(ctx, []leads.Lead{
		testLead("Jane Smith", "https://example.com/jane", 8),
		testLead("Omar Haddad", "https://example.com/omar", 5),
		unsure,
	})
	db.AddEvidence(ctx, "", []verify.Evidence{
		{Name: "Jane Smith", Query: "q", Score: 1},
		{Name: "jane smith", Query: "q", Score: 1},
		{Name: "Omar Haddad", Query: "q", Score: 1},
	})
	db.ReplaceVerdicts(ctx, []consolidate.Verdict{
		{Name: "Jane Smith", Grade: consolidate.GradeGreat},
		{Name: "Omar Haddad", Grade: consolidate.GradeGood},
		{Name: "Ali Noor", Grade: consolidate.GradeReject},
		{Name: "Sara Khan", Grade: consolidate.GradeReject},
	})
	db.CreateRun(ctx, &Run{Kind: RunFull})

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalDiscovered != 3 {
		t.Errorf("expected TotalDiscovered=3, got %d", stats.TotalDiscovered)
	}
	if stats.Unverified != 1 {
		t.Errorf("expected Unverified=1, got %d", stats.Unverified)
	}
	if stats.TotalVerified != 2 {
		t.Errorf("expected TotalVerified=2, got %d", stats.TotalVerified)
	}
	if stats.EvidenceRows != 3 {
		t.Errorf("expected EvidenceRows=3, got %d", stats.EvidenceRows)
	}
	if stats.GreenList != 2 {
		t.Errorf("expected GreenList=2, got %d", stats.GreenList)
	}
	if stats.GreenPercent != 50 {
		t.Errorf("expected GreenPercent=50, got %v", stats.GreenPercent)
	}
	if stats.Verdicts[consolidate.GradeReject] != 2 {
		t.Errorf("expected 2 rejects, got %d", stats.Verdicts[consolidate.GradeReject])
	}
	if stats.LastRun == nil || stats.LastRun.Kind != RunFull {
		t.Errorf("expected last run to be recorded, got %+v", stats.LastRun)
	}
}
