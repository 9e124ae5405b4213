package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQueries(t *testing.T) {
	s := NewDefault()

	tests := []struct {
		name     string
		anchors  Anchors
		knownOrg string
		want     []string
	}{
		{
			name: "fallback without anchors",
			want: []string{`"Jane Smith" UAE investment`},
		},
		{
			name:     "known organization first",
			anchors:  Anchors{Identity: []string{"angel investor"}},
			knownOrg: "Gulf Capital",
			want:     []string{`"Jane Smith" "Gulf Capital" UAE`, `"Jane Smith" "angel investor" UAE`},
		},
		{
			name:    "organization anchor",
			anchors: Anchors{Organization: []string{"Falcon Labs"}, Behavior: []string{"seed"}},
			want:    []string{`"Jane Smith" "Falcon Labs" investor UAE`},
		},
		{
			name:    "behavior anchor",
			anchors: Anchors{Behavior: []string{"portfolio"}},
			want:    []string{`"Jane Smith" "portfolio" UAE`},
		},
		{
			name:     "duplicates collapse",
			anchors:  Anchors{Identity: []string{"family office"}},
			knownOrg: "family office",
			want:     []string{`"Jane Smith" "family office" UAE`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.BuildQueries("Jane Smith", tt.anchors, tt.knownOrg)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), MaxQueries)
		})
	}
}

func TestExtractAnchors(t *testing.T) {
	s := NewDefault()

	a := s.ExtractAnchors("Angel investor and founder at Falcon Labs, investing in seed rounds with The Fund")

	assert.Equal(t, []string{"angel investor", "angel"}, a.Identity)
	assert.Equal(t, []string{"investing in", "seed"}, a.Behavior)
	assert.Equal(t, []string{"Falcon Labs", "The Fund"}, a.Organization)
	assert.False(t, a.Empty())
	assert.True(t, Anchors{}.Empty())
}

func TestScore_IdentityOneShot(t *testing.T) {
	s := NewDefault()
	st := NewState("Jane Doe", nil)

	first := s.Score("Jane Doe angel investor", "https://example.com/a", st)
	assert.InDelta(t, 1.5, first.Score, 1e-9)
	assert.Equal(t, []string{"Confirmed investor identity (+1.5)"}, first.Breakdown)
	assert.True(t, first.IdentityConfirmed)

	second := s.Score("Jane Doe angel investor", "https://example.com/b", st)
	assert.Zero(t, second.Score)
	assert.True(t, second.IdentityConfirmed)
	assert.False(t, second.Rejected)
	assert.True(t, st.IdentityConfirmed())
}

func TestScore_GeoCap(t *testing.T) {
	s := NewDefault()
	st := NewState("Jane Doe", nil)

	granted := 0
	for _, u := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com", "https://d.example.com"} {
		out := s.Score("Jane Doe based in Dubai", u, st)
		for _, b := range out.Breakdown {
			if b == "Supporting geography signal (+0.3)" {
				granted++
			}
		}
	}

	assert.Equal(t, 2, granted)
	assert.Equal(t, 2, st.GeoHits())
}

func TestScore_HardRejects(t *testing.T) {
	s := NewDefault()

	tests := []struct {
		name   string
		text   string
		url    string
		setup  func(*State)
		known  []string
		reason string
	}{
		{
			name:   "noise domain",
			text:   "Jane Doe angel investor",
			url:    "https://en.wikipedia.org/wiki/Jane_Doe",
			reason: ReasonNoise,
		},
		{
			name:   "linkedin directory",
			text:   "Jane Doe profiles",
			url:    "https://www.linkedin.com/pub/dir/Jane/Doe",
			reason: ReasonDirectory,
		},
		{
			name:   "linkedin profile with nothing new",
			text:   "Jane Doe angel investor in Dubai",
			url:    "https://ae.linkedin.com/in/janedoe",
			known:  []string{"angel investor", "angel", "dubai"},
			reason: ReasonProfileNoNew,
		},
		{
			name:   "linkedin cap reached",
			text:   "Jane Doe invested in three startups",
			url:    "https://www.linkedin.com/posts/janedoe-activity-1",
			setup:  func(st *State) { st.RecordLinkedIn() },
			reason: ReasonLinkedInCap,
		},
		{
			name:   "directory profile for someone else",
			text:   "John Roe angel investor",
			url:    "https://www.crunchbase.com/person/john-roe",
			reason: ReasonNameMismatch,
		},
		{
			name:   "search artifacts",
			text:   "Jane Doe angel. Missing: investor | Show results with: investor",
			url:    "https://example.com/jane",
			reason: ReasonSearchArtifacts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState("Jane Doe", tt.known)
			if tt.setup != nil {
				tt.setup(st)
			}
			linkedinBefore := st.LinkedInHits()

			out := s.Score(tt.text, tt.url, st)

			assert.True(t, out.Rejected)
			assert.Zero(t, out.Score)
			assert.Equal(t, []string{tt.reason}, out.Breakdown)
			assert.False(t, st.IdentityConfirmed(), "reject must not mutate identity")
			assert.Zero(t, st.GeoHits(), "reject must not mutate geo hits")
			assert.Equal(t, linkedinBefore, st.LinkedInHits())
		})
	}
}

func TestScore_BonusDomainCreditedOnce(t *testing.T) {
	s := NewDefault()
	st := NewState("Jane Doe", nil)

	first := s.Score("Jane Doe angel investor", "https://www.crunchbase.com/person/jane-doe", st)
	assert.InDelta(t, 1.9, first.Score, 1e-9)
	assert.Contains(t, first.Breakdown, "External confirmation via crunchbase.com (+0.4)")
	assert.Contains(t, first.Breakdown, MarkerContact)
	assert.True(t, st.Credited("crunchbase.com"))

	second := s.Score("Jane Doe portfolio", "https://www.crunchbase.com/person/jane-doe-2", st)
	assert.NotContains(t, second.Breakdown, MarkerContact)
	assert.InDelta(t, 0.5, second.Score, 1e-9)
}

func TestScore_LinkedInCounting(t *testing.T) {
	s := NewDefault()
	st := NewState("Jane Doe", []string{"angel investor"})

	out := s.Score("Jane Doe angel investor with a seed portfolio", "https://ae.linkedin.com/in/janedoe", st)
	require.False(t, out.Rejected)
	assert.Equal(t, 1, st.LinkedInHits())

	out = s.Score("Jane Doe portfolio update", "https://www.linkedin.com/posts/janedoe-1", st)
	assert.True(t, out.Rejected)
	assert.Equal(t, []string{ReasonLinkedInCap}, out.Breakdown)
}

func TestScore_Cap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cap = 1.0
	s := New(cfg, NewDefault().tax)
	st := NewState("Jane Doe", nil)

	out := s.Score("Jane Doe angel investor partner portfolio in Dubai", "https://theorg.com/org/acme/jane-doe", st)
	assert.LessOrEqual(t, out.Score, 1.0)
	assert.GreaterOrEqual(t, out.Score, 0.0)
}

func TestState_Sufficient(t *testing.T) {
	st := NewState("Jane Doe", nil)
	assert.False(t, st.Sufficient())

	assert.True(t, st.ConfirmIdentity())
	assert.False(t, st.ConfirmIdentity())
	assert.False(t, st.Sufficient())

	assert.True(t, st.TakeGeoHit(2))
	assert.True(t, st.Sufficient())
	assert.Equal(t, "jane doe", st.ExpectedName())
}

func TestEvidence_HasMarker(t *testing.T) {
	e := Evidence{Breakdown: []string{"Confirmed investor identity (+1.5)", "Supporting geography signal (+0.3)"}}
	assert.True(t, e.HasMarker(MarkerIdentity))
	assert.True(t, e.HasMarker(MarkerGeo))
	assert.False(t, e.HasMarker(MarkerContact))
}
