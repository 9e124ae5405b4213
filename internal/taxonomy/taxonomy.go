// Package taxonomy holds the keyword sets every scoring stage shares.
package taxonomy

import "strings"

// Category identifies a semantic group of keywords
type Category string

const (
	Identity  Category = "Identity"
	Behavior  Category = "Behavior"
	Seniority Category = "Seniority"
	Geography Category = "Geography"
)

// Taxonomy is the set of keyword groups used to score text.
// Keywords are stored lowercase.
type Taxonomy struct {
	Identity      []string `toml:"identity"`
	Behavior      []string `toml:"behavior"`
	Seniority     []string `toml:"seniority"`
	TargetRegion  []string `toml:"target_region"`
	WiderRegion   []string `toml:"wider_region"`
	PrimaryCities []string `toml:"primary_cities"` // matched as substrings
}

// Default returns the built-in keyword groups for the UAE/MENA market
func Default() Taxonomy {
	return Taxonomy{
		Identity: []string{
			"angel investor", "angel investing", "family office",
			"venture partner", "chief investment officer", "cio",
			"founder", "co-founder", "ceo", "incubator", "angel",
			"vc investor",
		},
		Behavior: []string{
			"invested in", "investing in", "portfolio", "series a",
			"seed", "pre-seed", "early-stage", "funding", "summit",
			"venture capital", "private equity", "real estate",
			"fundraising", "investment portfolio", "wealth funds",
			"property management", "dedicated portfolio", "active",
		},
		Seniority: []string{
			"partner", "managing director", "chairman",
			"board member", "advisor", "advisory", "chair",
		},
		TargetRegion:  []string{"uae", "dubai", "abu dhabi", "emirates"},
		WiderRegion:   []string{"mena", "middle east", "gulf", "gcc"},
		PrimaryCities: []string{"dubai", "abu dhabi"},
	}
}

// Normalize lowercases and trims every keyword in place
func (t *Taxonomy) Normalize() {
	for _, list := range []*[]string{
		&t.Identity, &t.Behavior, &t.Seniority,
		&t.TargetRegion, &t.WiderRegion, &t.PrimaryCities,
	} {
		for i, kw := range *list {
			(*list)[i] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
}

// Region returns target and wider region keywords, target first
func (t Taxonomy) Region() []string {
	region := make([]string, 0, len(t.TargetRegion)+len(t.WiderRegion))
	region = append(region, t.TargetRegion...)
	return append(region, t.WiderRegion...)
}

// All returns every keyword across all categories
func (t Taxonomy) All() []string {
	all := make([]string, 0, len(t.Identity)+len(t.Behavior)+len(t.Seniority)+len(t.TargetRegion)+len(t.WiderRegion))
	all = append(all, t.Identity...)
	all = append(all, t.Behavior...)
	all = append(all, t.Seniority...)
	return append(all, t.Region()...)
}

// Lookup returns the category of an exact keyword.
// Categories are checked in identity, behavior, seniority, geography order.
func (t Taxonomy) Lookup(term string) (Category, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	switch {
	case contains(t.Identity, term):
		return Identity, true
	case contains(t.Behavior, term):
		return Behavior, true
	case contains(t.Seniority, term):
		return Seniority, true
	case contains(t.Region(), term):
		return Geography, true
	}
	return "", false
}

// Hits returns keywords from the list found in text, in list order.
// text must already be lowercase.
func (t Taxonomy) Hits(text string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if t.Match(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// Any reports whether text contains at least one keyword from the list
func (t Taxonomy) Any(text string, keywords []string) bool {
	for _, kw := range keywords {
		if t.Match(text, kw) {
			return true
		}
	}
	return false
}

// Match reports whether the keyword occurs in text. Primary cities are
// substring matches, everything else needs word boundaries.
func (t Taxonomy) Match(text, keyword string) bool {
	if contains(t.PrimaryCities, keyword) {
		return strings.Contains(text, keyword)
	}
	return ContainsWord(text, keyword)
}

// HasRegion reports whether text names the target or wider region
func (t Taxonomy) HasRegion(text string) bool {
	return t.Any(strings.ToLower(text), t.Region())
}

// HasPrimaryCity reports whether text names one of the primary cities
func (t Taxonomy) HasPrimaryCity(text string) bool {
	lower := strings.ToLower(text)
	for _, city := range t.PrimaryCities {
		if strings.Contains(lower, city) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
