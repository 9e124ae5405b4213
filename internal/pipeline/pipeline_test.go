package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/search"
	"github.com/tekoetch/investorscout/internal/taxonomy"
	"github.com/tekoetch/investorscout/internal/verify"
)

// funcProvider answers queries through a function and records every call
type funcProvider struct {
	name string
	fn   func(query string) ([]search.Hit, error)

	mu      sync.Mutex
	queries []string
}

func (f *funcProvider) Name() string { return f.name }

func (f *funcProvider) Search(_ context.Context, query string, limit int) ([]search.Hit, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	hits, err := f.fn(query)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, err
}

func (f *funcProvider) callsFor(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.queries {
		if strings.Contains(q, `"`+name+`"`) {
			n++
		}
	}
	return n
}

var (
	janeHit = search.Hit{
		Title:   "Jane Doe - Angel Investor | Dubai, UAE",
		Snippet: "Angel investor backing early-stage startups across the UAE.",
		URL:     "https://www.linkedin.com/in/janedoe",
	}
	karimHit = search.Hit{
		Title:   "Karim Nasser - Software Engineer",
		Snippet: "Building mobile apps.",
		URL:     "https://example.com/karim",
	}
	janeEvidence = search.Hit{
		Title:   "Jane Doe profile",
		Snippet: "Jane Doe is an angel investor based in Dubai.",
		URL:     "https://www.example.org/people/jane-doe",
	}
)

func newTestPipeline(t *testing.T, provider search.Provider, opts ...Option) *Pipeline {
	t.Helper()
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)

	p, err := New(provider, firstpass.NewDefault(), verify.NewDefault(), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := New(nil, firstpass.NewDefault(), verify.NewDefault())
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = New(&funcProvider{}, nil, verify.NewDefault())
	assert.ErrorIs(t, err, ErrScorerRequired)
}

func TestDiscover_DedupAndCounts(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(q string) ([]search.Hit, error) {
		switch q {
		case "q1":
			return []search.Hit{
				janeHit,
				{Title: "Sponsored", Snippet: "ad", URL: "https://www.bing.com/aclick?ld=1"},
				{Title: "", Snippet: "no title", URL: "https://example.com/empty"},
				{Title: "Angel Investor - Directory", Snippet: "list", URL: "https://example.com/list"},
			}, nil
		case "q2":
			return []search.Hit{janeHit, karimHit}, nil
		}
		return nil, nil
	}}
	p := newTestPipeline(t, provider)

	res, err := p.Discover(context.Background(), []string{"q1", "q2"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Queries)
	assert.Equal(t, 6, res.Hits)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Blocked)
	assert.Equal(t, 2, res.Invalid)
	require.Len(t, res.Leads, 2)
	assert.Equal(t, "Jane Doe", res.Leads[0].Name)
	assert.Equal(t, "Karim Nasser", res.Leads[1].Name)
	assert.Equal(t, "q1", res.Leads[0].Query)
	assert.GreaterOrEqual(t, res.Leads[0].Score, 4.0)
	assert.Less(t, res.Leads[1].Score, 4.0)
	assert.Empty(t, res.Errors)
}

func TestDiscover_ExistingLeadsAreKept(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(string) ([]search.Hit, error) {
		return []search.Hit{karimHit}, nil
	}}
	p := newTestPipeline(t, provider)

	existing := []leads.Lead{{Name: "Jane Doe", Title: janeHit.Title, Snippet: janeHit.Snippet, URL: janeHit.URL, Score: 7}}
	res, err := p.Discover(context.Background(), []string{"q"}, existing, nil)
	require.NoError(t, err)

	require.Len(t, res.Leads, 2)
	assert.Equal(t, "Jane Doe", res.Leads[0].Name)
	require.Len(t, res.Touched, 1)
	assert.Equal(t, "Karim Nasser", res.Touched[0].Name)
}

func TestDiscover_ProviderErrorIsNonFatal(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(q string) ([]search.Hit, error) {
		if q == "bad" {
			return nil, &search.HTTPError{URL: "https://api.example", StatusCode: 429}
		}
		return []search.Hit{janeHit}, nil
	}}
	p := newTestPipeline(t, provider)

	res, err := p.Discover(context.Background(), []string{"bad", "good"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)

	var httpErr *search.HTTPError
	assert.True(t, errors.As(res.Errors[0], &httpErr))
	assert.Len(t, res.Leads, 1)
}

func TestDiscover_EmptyIsWellTyped(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(string) ([]search.Hit, error) { return nil, nil }}
	p := newTestPipeline(t, provider)

	res, err := p.Discover(context.Background(), []string{"q"}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res.Leads)
}

func TestVerify_NothingToVerify(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(string) ([]search.Hit, error) { return nil, nil }}
	p := newTestPipeline(t, provider)

	res, err := p.Verify(context.Background(), []leads.Lead{
		{Name: "Karim Nasser", Score: 2.0},
		{Name: "John Smith", Score: 9.0, Unverified: true},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, NothingToVerify, res.Message)
	assert.Empty(t, provider.queries)
}

func TestVerify_SecondQueryOnlyWithoutEvidence(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(q string) ([]search.Hit, error) {
		if strings.Contains(q, `"Jane Doe"`) {
			return []search.Hit{janeEvidence}, nil
		}
		return nil, nil
	}}
	p := newTestPipeline(t, provider, WithWorkers(2))

	candidates := []leads.Lead{
		{Name: "Jane Doe", Snippet: "angel investor", Organization: "Acme Ventures", Score: 7},
		{Name: "Omar Haddad", Snippet: "angel investor", Organization: "Falcon Labs", Score: 6},
	}
	res, err := p.Verify(context.Background(), candidates, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.callsFor("Jane Doe"))
	assert.Equal(t, 2, provider.callsFor("Omar Haddad"))
	assert.Equal(t, 3, res.Queries)
	assert.Equal(t, 2, res.Candidates)

	require.Len(t, res.Evidence, 1)
	ev := res.Evidence[0]
	assert.Equal(t, "Jane Doe", ev.Name)
	assert.True(t, ev.HasMarker(verify.MarkerIdentity))
	assert.True(t, ev.HasMarker(verify.MarkerGeo))
	assert.Equal(t, janeEvidence.URL, ev.SourceURL)
}

func TestVerify_EvidenceSortedByName(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(q string) ([]search.Hit, error) {
		for _, name := range []string{"Zaid Amir", "Adam Noor"} {
			if strings.Contains(q, `"`+name+`"`) {
				return []search.Hit{{
					Title:   name,
					Snippet: name + " is an angel investor in Abu Dhabi",
					URL:     "https://example.org/" + strings.ReplaceAll(strings.ToLower(name), " ", "-"),
				}}, nil
			}
		}
		return nil, nil
	}}
	p := newTestPipeline(t, provider, WithWorkers(4))

	var phases []ProgressPhase
	res, err := p.Verify(context.Background(), []leads.Lead{
		{Name: "Zaid Amir", Snippet: "angel investor", Score: 6},
		{Name: "Adam Noor", Snippet: "angel investor", Score: 6},
		{Name: "Adam Noor", Snippet: "angel investor", Score: 5, URL: "https://other.example"},
	}, func(pr Progress) { phases = append(phases, pr.Phase) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Adam Noor", "Zaid Amir"}, res.Verified)
	require.Len(t, res.Evidence, 2)
	assert.Equal(t, "Adam Noor", res.Evidence[0].Name)
	assert.Equal(t, "Zaid Amir", res.Evidence[1].Name)
	assert.Len(t, phases, 2)
	assert.Equal(t, PhaseVerifying, phases[0])
}

func TestVerify_NewsCorroboration(t *testing.T) {
	web := &funcProvider{name: "web", fn: func(string) ([]search.Hit, error) { return nil, nil }}
	news := &funcProvider{name: "news", fn: func(string) ([]search.Hit, error) {
		return []search.Hit{{
			Title:   "Dubai angel investor backs fintech",
			Snippet: "Jane Doe, an angel investor in Dubai, led the round.",
			URL:     "https://news.example.com/story",
		}}, nil
	}}
	p := newTestPipeline(t, web, WithNews(news))

	res, err := p.Verify(context.Background(), []leads.Lead{
		{Name: "Jane Doe", Snippet: "angel investor", Score: 7},
	}, nil)
	require.NoError(t, err)

	require.Len(t, news.queries, 1)
	assert.Equal(t, `"Jane Doe" investor UAE`, news.queries[0])
	require.Len(t, res.Evidence, 1)
	assert.Equal(t, "https://news.example.com/story", res.Evidence[0].SourceURL)
}

func TestVerify_QueryCapIncludesNews(t *testing.T) {
	empty := func(string) ([]search.Hit, error) { return nil, nil }

	tests := []struct {
		name     string
		lead     leads.Lead
		wantWeb  int
		wantNews int
	}{
		{
			name:    "two web queries leave no slot for news",
			lead:    leads.Lead{Name: "Jane Doe", Snippet: "angel investor", Organization: "Acme Ventures", Score: 7},
			wantWeb: 2,
		},
		{
			name:     "news fills the free slot",
			lead:     leads.Lead{Name: "Jane Doe", Snippet: "angel investor", Score: 7},
			wantWeb:  1,
			wantNews: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			web := &funcProvider{name: "web", fn: empty}
			news := &funcProvider{name: "news", fn: empty}
			p := newTestPipeline(t, web, WithNews(news))

			res, err := p.Verify(context.Background(), []leads.Lead{tt.lead}, nil)
			require.NoError(t, err)

			assert.Len(t, web.queries, tt.wantWeb)
			assert.Len(t, news.queries, tt.wantNews)
			assert.LessOrEqual(t, res.Queries, verify.MaxQueries)
			assert.Equal(t, tt.wantWeb+tt.wantNews, res.Queries)
		})
	}
}

func TestVerify_SkipsHitsWithoutURL(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(string) ([]search.Hit, error) {
		return []search.Hit{
			{Title: "Jane Doe", Snippet: "Jane Doe angel investor in Dubai"},
			janeEvidence,
		}, nil
	}}
	p := newTestPipeline(t, provider)

	res, err := p.Verify(context.Background(), []leads.Lead{
		{Name: "Jane Doe", Snippet: "angel investor", Score: 7},
	}, nil)
	require.NoError(t, err)

	require.Len(t, res.Evidence, 1)
	ev := res.Evidence[0]
	assert.Equal(t, janeEvidence.URL, ev.SourceURL)
	assert.True(t, ev.HasMarker(verify.MarkerIdentity), "identity bonus spent on a hit without URL")
}

func TestVerify_ErrorsAreCollected(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(string) ([]search.Hit, error) {
		return nil, errors.New("connection reset")
	}}
	p := newTestPipeline(t, provider)

	res, err := p.Verify(context.Background(), []leads.Lead{
		{Name: "Jane Doe", Snippet: "angel investor", Organization: "Acme Ventures", Score: 7},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Errors, 2)
	assert.Empty(t, res.Evidence)
}

func TestEnrich(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(q string) ([]search.Hit, error) {
		return []search.Hit{
			{Title: "Profile", Snippet: q},
			{Title: "Profile", Snippet: q, URL: "https://example.com/1"},
			{Title: "Profile", Snippet: q, URL: "https://example.com/2"},
		}, nil
	}}
	p := newTestPipeline(t, provider)

	res, err := p.Enrich(context.Background(), []consolidate.Verdict{
		{Name: "Jane Doe", Grade: consolidate.GradeGreat},
		{Name: "Omar Haddad", Grade: consolidate.GradePending},
		{Name: "Karim Nasser", Grade: consolidate.GradeReject},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Jane Doe", "Omar Haddad"}, res.Candidates)
	assert.Equal(t, 10, res.Queries)
	assert.Len(t, res.Rows, 10, "hits without URL are dropped")
	assert.Zero(t, provider.callsFor("Karim Nasser"))

	first := res.Rows[0]
	assert.Equal(t, "instagram", first.Channel)
	assert.Equal(t, `site:instagram.com "Jane Doe"`, first.Query)
	assert.Equal(t, "https://example.com/1", first.SourceURL)
}

func TestChannel(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{"site:instagram.com %s", "instagram"},
		{"site:www.facebook.com %s", "facebook"},
		{"site:x.com %s", "x"},
		{"%s email", "email"},
		{"%s phone", "phone"},
		{"%s", "web"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, Channel(tt.template))
		})
	}
}

func TestRun(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(q string) ([]search.Hit, error) {
		switch {
		case q == "angel investor UAE":
			return []search.Hit{janeHit, karimHit}, nil
		case strings.Contains(q, `"Jane Doe"`):
			return []search.Hit{janeEvidence}, nil
		}
		return nil, nil
	}}
	cfg := consolidate.DefaultConfig()
	cfg.Formula = consolidate.FormulaSum
	p := newTestPipeline(t, provider, WithConsolidator(consolidate.New(cfg, taxonomy.Default())))

	var mu sync.Mutex
	seen := make(map[ProgressPhase]bool)
	res, err := p.Run(context.Background(), RunOptions{
		Queries: []string{"angel investor UAE"},
		Evidence: []verify.Evidence{
			{Name: "Jane Doe", Query: "old", Score: 0.5},
			{Name: "Ghost Lead", Query: "old", Score: 1},
		},
		Progress: func(pr Progress) {
			mu.Lock()
			seen[pr.Phase] = true
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	require.NotNil(t, res.Discovery)
	require.NotNil(t, res.Verification)
	assert.Nil(t, res.Enrichment)

	require.Len(t, res.Evidence, 2)
	assert.Equal(t, "Ghost Lead", res.Evidence[0].Name)
	assert.Equal(t, "Jane Doe", res.Evidence[1].Name)
	assert.NotEqual(t, "old", res.Evidence[1].Query)

	require.NotEmpty(t, res.Verdicts)
	var jane *consolidate.Verdict
	for i := range res.Verdicts {
		if res.Verdicts[i].Name == "Jane Doe" {
			jane = &res.Verdicts[i]
		}
	}
	require.NotNil(t, jane)
	assert.True(t, jane.InvestorConfirmed)
	assert.True(t, jane.GeoConfirmed)
	assert.True(t, jane.Grade.Accepted(), "got %s with final score %.2f", jane.Grade, jane.FinalScore)

	for _, phase := range []ProgressPhase{PhaseDiscovering, PhaseScoring, PhaseVerifying, PhaseConsolidating, PhaseComplete} {
		assert.True(t, seen[phase], "missing phase %s", phase)
	}
}

func TestRun_SkipVerify(t *testing.T) {
	provider := &funcProvider{name: "stub", fn: func(q string) ([]search.Hit, error) {
		if q == "angel investor UAE" {
			return []search.Hit{janeHit}, nil
		}
		return []search.Hit{janeEvidence}, nil
	}}
	p := newTestPipeline(t, provider)

	stored := []verify.Evidence{{Name: "Jane Doe", Query: "old", Score: 2}}
	res, err := p.Run(context.Background(), RunOptions{
		Queries:    []string{"angel investor UAE"},
		Evidence:   stored,
		SkipVerify: true,
	})
	require.NoError(t, err)

	assert.Zero(t, provider.callsFor("Jane Doe"))
	assert.Equal(t, NothingToVerify, res.Verification.Message)
	require.Len(t, res.Evidence, 1)
	assert.Equal(t, "old", res.Evidence[0].Query)
	require.Len(t, res.Verdicts, 1)
	assert.Equal(t, 1, res.Verdicts[0].EvidenceCount)
}

func TestMergeEvidence(t *testing.T) {
	previous := []verify.Evidence{
		{Name: "Jane Doe", Query: "old"},
		{Name: "Omar Haddad", Query: "keep"},
	}
	fresh := []verify.Evidence{{Name: "Jane Doe", Query: "new"}}

	merged := MergeEvidence(previous, []string{"jane doe"}, fresh)
	require.Len(t, merged, 2)
	assert.Equal(t, "keep", merged[0].Query)
	assert.Equal(t, "new", merged[1].Query)
}

func TestProgress(t *testing.T) {
	p := Progress{Current: 1, Total: 4}
	assert.Equal(t, 25, p.Percentage())
	assert.Zero(t, Progress{}.Percentage())
	assert.Zero(t, p.ETA())
}
