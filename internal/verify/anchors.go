package verify

import (
	"regexp"
	"slices"
	"strings"
)

// MaxQueries bounds how many second-pass queries a candidate gets
const MaxQueries = 2

// Anchors are the first-pass terms used to build targeted queries
type Anchors struct {
	Identity     []string `json:"identity"`
	Behavior     []string `json:"behavior"`
	Organization []string `json:"organization"`
}

// Empty reports whether no anchor was found
func (a Anchors) Empty() bool {
	return len(a.Identity) == 0 && len(a.Behavior) == 0 && len(a.Organization) == 0
}

var (
	anchorOrgPattern = regexp.MustCompile(`\b(?:at|of|with)\s+([A-Z][A-Za-z0-9 &]{2,20})`)
	anchorOrgStop    = map[string]bool{"the": true, "and": true, "investment": true}
)

// ExtractAnchors collects identity and behavior keywords, minus generic
// titles that would make queries too broad, plus "at/of/with Company"
// phrases.
func (s *Scorer) ExtractAnchors(text string) Anchors {
	var a Anchors
	lower := strings.ToLower(text)

	for _, kw := range s.tax.Hits(lower, s.tax.Identity) {
		if !slices.Contains(s.cfg.QueryBlocklist, kw) {
			a.Identity = append(a.Identity, kw)
		}
	}
	a.Behavior = s.tax.Hits(lower, s.tax.Behavior)

	for _, m := range anchorOrgPattern.FindAllStringSubmatch(text, -1) {
		org := strings.TrimSpace(m[1])
		if len(org) <= 3 || anchorOrgStop[strings.ToLower(org)] {
			continue
		}
		if !slices.Contains(a.Organization, org) {
			a.Organization = append(a.Organization, org)
		}
	}

	return a
}

// BuildQueries returns at most two region-qualified queries in priority
// order: known organization first, then the strongest anchor.
func (s *Scorer) BuildQueries(name string, a Anchors, knownOrg string) []string {
	quoted := quote(name)
	var queries []string

	if knownOrg != "" {
		queries = append(queries, quoted+" "+quote(knownOrg))
	}

	switch {
	case len(a.Identity) > 0:
		queries = append(queries, quoted+" "+quote(a.Identity[0]))
	case len(a.Organization) > 0:
		queries = append(queries, quoted+" "+quote(a.Organization[0])+" investor")
	case len(a.Behavior) > 0:
		queries = append(queries, quoted+" "+quote(a.Behavior[0]))
	}

	qualifier := s.cfg.RegionQualifier
	if qualifier != "" {
		for i := range queries {
			queries[i] += " " + qualifier
		}
	}

	if len(queries) == 0 {
		if qualifier != "" {
			queries = append(queries, quoted+" "+qualifier+" investment")
		} else {
			queries = append(queries, quoted+" investment")
		}
	}

	var out []string
	for _, q := range queries {
		if !slices.Contains(out, q) {
			out = append(out, q)
		}
	}
	if len(out) > MaxQueries {
		out = out[:MaxQueries]
	}
	return out
}

func quote(s string) string {
	return `"` + strings.TrimSpace(s) + `"`
}
