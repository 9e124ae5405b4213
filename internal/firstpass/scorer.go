// Package firstpass scores raw search hits for investor likelihood.
package firstpass

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tekoetch/investorscout/internal/taxonomy"
)

// MaxScore is the upper bound of a first-pass score
const MaxScore = 10.0

// Confidence grades how many signal categories fired
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// ConfidenceFor maps a fired-category count to a confidence level
func ConfidenceFor(groups int) Confidence {
	switch {
	case groups >= 3:
		return ConfidenceHigh
	case groups == 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Rank orders confidence levels from Low (0) to High (2)
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// Upgrade returns the higher of two confidence levels
func (c Confidence) Upgrade(other Confidence) Confidence {
	if other.Rank() > c.Rank() {
		return other
	}
	return c
}

// Result is the outcome of scoring one search hit
type Result struct {
	Score        float64
	Confidence   Confidence
	Signals      []string
	Organization string
	Categories   []taxonomy.Category
	Query        string
}

// Scorer computes first-pass scores. It holds no mutable state and is
// safe for concurrent use.
type Scorer struct {
	weights Weights
	geo     Geo
	tax     taxonomy.Taxonomy
	orgs    *OrgExtractor
}

// New creates a Scorer from weights, keyword groups and region rules
func New(weights Weights, tax taxonomy.Taxonomy, geo Geo) *Scorer {
	return &Scorer{
		weights: weights,
		geo:     geo,
		tax:     tax,
		orgs:    NewOrgExtractor(DefaultOrgRules(), tax),
	}
}

// NewDefault creates a Scorer with the built-in configuration
func NewDefault() *Scorer {
	return New(DefaultWeights(), taxonomy.Default(), DefaultGeo())
}

// Weights returns the weights this scorer was built with
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Taxonomy returns the keyword groups this scorer matches against
func (s *Scorer) Taxonomy() taxonomy.Taxonomy {
	return s.tax
}

// Organizations returns the organization extractor
func (s *Scorer) Organizations() *OrgExtractor {
	return s.orgs
}

var (
	hashtagPattern  = regexp.MustCompile(`#(\w+)`)
	locationPattern = regexp.MustCompile(`(?i)location:\s*([^\n|·]+)`)
)

// Score rates a title+snippet blob. query is carried into the result for
// provenance only; url drives the origin adjustments.
func (s *Scorer) Score(text, query, url string) Result {
	w := s.weights
	t := newTally(w.Base)
	lower := strings.ToLower(text)
	urlLower := strings.ToLower(url)

	s.scoreHashtags(lower, t)
	s.scoreLocation(lower, t)

	// Identity: first hit full weight, the rest diminishing
	if hits := s.tax.Hits(lower, s.tax.Identity); len(hits) > 0 {
		t.add(w.Identity, "Primary identity '%s'", hits[0])
		for _, k := range hits[1:] {
			t.add(w.IdentityDiminishing, "Additional identity '%s'", k)
		}
		t.fire(taxonomy.Identity)
	}

	// Behavior
	if hits := s.tax.Hits(lower, s.tax.Behavior); len(hits) > 0 {
		for _, k := range hits {
			t.add(w.Behavior, "Behavior keyword '%s'", k)
		}
		t.fire(taxonomy.Behavior)
		if t.fired(taxonomy.Identity) {
			t.add(w.Synergy, "Identity + behavior synergy")
		}
	}

	// Seniority
	if hits := s.tax.Hits(lower, s.tax.Seniority); len(hits) > 0 {
		for _, k := range hits {
			t.add(w.Seniority, "Seniority keyword '%s'", k)
		}
		t.add(w.SeniorityGroup, "Seniority group bonus")
		t.fire(taxonomy.Seniority)
	}

	org := s.orgs.Extract(text)
	if org != "" {
		t.add(w.Organization, "Company affiliation: %s", org)
	}

	// Geography
	if s.tax.Any(lower, s.tax.Region()) {
		t.fire(taxonomy.Geography)
		t.add(w.GeoGroup, "Geography signals")
		if s.tax.HasPrimaryCity(lower) {
			t.add(w.PrimaryCity, "Explicit primary city mentioned")
		}
	}

	// URL origin
	switch {
	case containsAny(urlLower, s.geo.LocalizedDomains):
		t.add(w.GeoGroup, "Target-region LinkedIn domain")
		t.fire(taxonomy.Geography)
	case t.score >= w.UnconfirmedGeoThreshold && !t.fired(taxonomy.Geography):
		t.add(w.UnconfirmedGeoPenalty, "High score without geography confirmation")
	case containsAny(urlLower, s.geo.OffTargetDomains):
		t.add(w.OffTargetDomain, "Outside region LinkedIn country domain")
	}

	signals := make([]string, 0, len(t.signals)+1)
	signals = append(signals, fmt.Sprintf("Signal groups fired: %d", len(t.order)))
	signals = append(signals, t.signals...)

	return Result{
		Score:        Clamp(t.score, 0, MaxScore),
		Confidence:   ConfidenceFor(len(t.order)),
		Signals:      signals,
		Organization: org,
		Categories:   t.order,
		Query:        query,
	}
}

// scoreHashtags credits #tags that exactly name a taxonomy keyword
func (s *Scorer) scoreHashtags(lower string, t *tally) {
	w := s.weights
	var hits []string

	for _, m := range hashtagPattern.FindAllStringSubmatch(lower, -1) {
		tag := m[1]
		category, ok := s.tax.Lookup(strings.ReplaceAll(tag, "_", " "))
		if !ok {
			continue
		}

		var weight float64
		switch category {
		case taxonomy.Identity:
			weight = w.Identity
		case taxonomy.Behavior:
			weight = w.Behavior
		case taxonomy.Seniority:
			weight = w.Seniority
		case taxonomy.Geography:
			weight = w.GeoGroup
		}
		boost := weight * w.HashtagMultiplier
		t.score += boost
		t.fire(category)
		hits = append(hits, fmt.Sprintf("#%s = %s (%s)", tag, strings.ToLower(string(category)), formatDelta(boost)))
	}

	if len(hits) > 0 {
		t.signals = append(t.signals, "Hashtag signals: "+strings.Join(hits, " | "))
	}
}

// scoreLocation classifies an explicit "location:" field
func (s *Scorer) scoreLocation(lower string, t *tally) {
	m := locationPattern.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	loc := strings.TrimSpace(m[1])
	if loc == "" {
		return
	}

	switch {
	case s.tax.Any(loc, s.tax.Region()):
		t.add(s.weights.LocationTarget, "Explicit target-region location")
	case anyWord(loc, s.geo.NonTargetHubs):
		t.add(s.weights.LocationNonTarget, "Non-region location detected")
	default:
		t.add(s.weights.LocationOther, "Unconfirmed location")
	}
}

// tally accumulates score, signals and fired categories in order
type tally struct {
	score   float64
	signals []string
	order   []taxonomy.Category
}

func newTally(base float64) *tally {
	return &tally{score: base}
}

func (t *tally) add(delta float64, format string, args ...any) {
	t.score += delta
	t.signals = append(t.signals, fmt.Sprintf(format, args...)+" ("+formatDelta(delta)+")")
}

func (t *tally) fire(c taxonomy.Category) {
	if !t.fired(c) {
		t.order = append(t.order, c)
	}
}

func (t *tally) fired(c taxonomy.Category) bool {
	for _, o := range t.order {
		if o == c {
			return true
		}
	}
	return false
}

func formatDelta(d float64) string {
	return fmt.Sprintf("%+.1f", d)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func anyWord(s string, words []string) bool {
	for _, w := range words {
		if taxonomy.ContainsWord(s, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
