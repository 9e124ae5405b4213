// Package leads holds first-pass candidate records and the rules that
// decide when two search hits describe the same person.
package leads

import (
	"slices"
	"strings"
	"time"

	"github.com/tekoetch/investorscout/internal/firstpass"
)

// SnippetSeparator joins snippets merged from repeated sightings
const SnippetSeparator = "\n---\n"

// Lead is one distinct candidate found by the first pass
type Lead struct {
	Name          string               `json:"name"`
	Title         string               `json:"title"`
	Snippet       string               `json:"snippet"`
	URL           string               `json:"url"`
	NormalizedURL string               `json:"normalized_url"`
	Score         float64              `json:"score"`
	Confidence    firstpass.Confidence `json:"confidence"`
	Signals       []string             `json:"signals"`
	Organization  string               `json:"affiliated_organization,omitempty"`
	Query         string               `json:"query,omitempty"`
	Unverified    bool                 `json:"unverified"`
	FirstSeen     time.Time            `json:"first_seen"`
	LastSeen      time.Time            `json:"last_seen"`
}

// Text returns the combined title and snippet used for scoring
func (l *Lead) Text() string {
	return l.Title + " " + l.Snippet
}

// Merge folds a later sighting into this lead. The snippet is appended,
// the score raised to the max, signals unioned in order and confidence
// only ever upgraded.
func (l *Lead) Merge(other Lead) {
	if other.Snippet != "" && !strings.Contains(l.Snippet, other.Snippet) {
		l.Snippet += SnippetSeparator + other.Snippet
	}
	l.Score = max(l.Score, other.Score)
	for _, sig := range other.Signals {
		if !slices.Contains(l.Signals, sig) {
			l.Signals = append(l.Signals, sig)
		}
	}
	l.Confidence = l.Confidence.Upgrade(other.Confidence)
	if l.Organization == "" {
		l.Organization = other.Organization
	}
	if other.LastSeen.After(l.LastSeen) {
		l.LastSeen = other.LastSeen
	}
}
