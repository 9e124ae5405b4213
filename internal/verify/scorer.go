// Package verify scores second-pass re-search results against a
// candidate's accumulated verification state.
package verify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tekoetch/investorscout/internal/taxonomy"
)

// Breakdown markers read back by consolidation
const (
	MarkerIdentity = "Confirmed investor identity"
	MarkerGeo      = "Supporting geography signal"
	MarkerContact  = "Public contact information likely available"
)

// Reject reasons
const (
	ReasonNoise           = "Noise domain"
	ReasonDirectory       = "LinkedIn directory page ignored"
	ReasonProfileNoNew    = "LinkedIn profile adds no new keywords"
	ReasonLinkedInCap     = "Extra LinkedIn result ignored"
	ReasonNameMismatch    = "Directory profile does not match candidate name"
	ReasonSearchArtifacts = "Search engine artifact text"
)

// Outcome is the result of scoring one second-pass hit
type Outcome struct {
	Score             float64
	Breakdown         []string
	IdentityConfirmed bool
	Rejected          bool
}

// Scorer applies second-pass rules. Only the State passed to Score is
// mutated; the Scorer itself is safe for concurrent use.
type Scorer struct {
	cfg Config
	tax taxonomy.Taxonomy
}

// New creates a Scorer
func New(cfg Config, tax taxonomy.Taxonomy) *Scorer {
	return &Scorer{cfg: cfg, tax: tax}
}

// NewDefault creates a Scorer with the built-in configuration
func NewDefault() *Scorer {
	return New(DefaultConfig(), taxonomy.Default())
}

// Config returns the scorer configuration
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score rates a re-search hit for the candidate tracked by st
func (s *Scorer) Score(text, rawURL string, st *State) Outcome {
	lower := strings.ToLower(text)
	urlLower := strings.ToLower(rawURL)
	host := hostOf(rawURL)

	if reason, rejected := s.reject(lower, urlLower, host, st); rejected {
		return Outcome{
			Breakdown:         []string{reason},
			IdentityConfirmed: st.IdentityConfirmed(),
			Rejected:          true,
		}
	}

	if isLinkedIn(host) {
		st.RecordLinkedIn()
	}

	var score float64
	var breakdown []string
	add := func(delta float64, msg string) {
		score += delta
		breakdown = append(breakdown, fmt.Sprintf("%s (%+.1f)", msg, delta))
	}

	if s.tax.Any(lower, s.tax.Identity) && st.ConfirmIdentity() {
		add(s.cfg.IdentityBonus, MarkerIdentity)
	}
	if s.tax.Any(lower, s.tax.Behavior) {
		add(s.cfg.BehaviorBonus, "Investment behavior language")
	}
	if s.tax.Any(lower, s.tax.Seniority) {
		add(s.cfg.SeniorityBonus, "Seniority language")
	}
	if s.tax.Any(lower, s.tax.Region()) && st.TakeGeoHit(s.cfg.GeoCap) {
		add(s.cfg.GeoBonus, MarkerGeo)
	}
	for _, d := range s.cfg.BonusDomains {
		if domainMatches(host, d) && st.CreditDomain(d) {
			add(s.cfg.DomainBonus, "External confirmation via "+d)
			breakdown = append(breakdown, MarkerContact)
		}
	}

	return Outcome{
		Score:             min(max(score, 0), s.cfg.Cap),
		Breakdown:         breakdown,
		IdentityConfirmed: st.IdentityConfirmed(),
	}
}

// reject applies the hard filters in order. It never mutates st.
func (s *Scorer) reject(lower, urlLower, host string, st *State) (string, bool) {
	for _, d := range s.cfg.NoiseDomains {
		if domainMatches(host, d) {
			return ReasonNoise, true
		}
	}

	if strings.Contains(urlLower, "linkedin.com/pub/dir") {
		return ReasonDirectory, true
	}

	if isLinkedIn(host) {
		if strings.Contains(urlLower, "linkedin.com/in/") && !s.addsKeyword(lower, st) {
			return ReasonProfileNoNew, true
		}
		if st.LinkedInCapped(s.cfg.LinkedInCap) {
			return ReasonLinkedInCap, true
		}
	}

	for _, pattern := range s.cfg.DirectoryPatterns {
		if strings.Contains(urlLower, pattern) && !slugMatches(urlLower, st.ExpectedName()) {
			return ReasonNameMismatch, true
		}
	}

	for _, phrase := range s.cfg.ArtifactPhrases {
		if strings.Contains(lower, phrase) {
			return ReasonSearchArtifacts, true
		}
	}

	return "", false
}

// addsKeyword reports whether text holds a taxonomy keyword the first
// pass did not already score
func (s *Scorer) addsKeyword(lower string, st *State) bool {
	for _, kw := range s.tax.Hits(lower, s.tax.All()) {
		if !st.Known(kw) {
			return true
		}
	}
	return false
}

// slugMatches reports whether the last path segment carries every token
// of the expected name
func slugMatches(urlLower, expectedName string) bool {
	path := urlLower
	if u, err := url.Parse(urlLower); err == nil {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")
	slug := path[strings.LastIndex(path, "/")+1:]

	tokens := strings.Fields(expectedName)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(slug, strings.Trim(tok, ".,")) {
			return false
		}
	}
	return true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func domainMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func isLinkedIn(host string) bool {
	return domainMatches(host, "linkedin.com")
}
