package firstpass

import (
	"regexp"
	"strings"

	"github.com/tekoetch/investorscout/internal/taxonomy"
)

// OrgRule is one named pattern for pulling an organization name out of text
type OrgRule struct {
	Name    string
	Extract func(text string) []string
}

var (
	sentenceSplit = regexp.MustCompile(`[.\n]`)

	possessivePattern = regexp.MustCompile(
		`\b([A-Z][A-Za-z0-9&.\-]{2,40}(?:\s+[A-Z0-9][A-Za-z0-9&.\-]{1,25}){0,4})['’]s\s+` +
			`(?i:Chief|Senior|Managing|Executive|Head|Vice\s+President|VP)\s+` +
			`(?i:Operating\s+)?` +
			`(?i:Officer|Director|Partner)\b`)

	roleAtPattern = regexp.MustCompile(
		`(?i:\b(?:head|lead|director|manager|vp|chief|growth|role|partner|ceo|cio)\b)[^@\n]{0,40}?` +
			`(?:@|(?i: at | for ))\s*` +
			`([A-Z0-9][A-Za-z0-9 &.\-]{2,50})`)

	headlinePattern = regexp.MustCompile(`(?i)([^|\n]+?)\s*\|\s*linkedin`)
	headlineSplit   = regexp.MustCompile(`\s+[-@–—]\s+`)

	founderOfPattern = regexp.MustCompile(
		`(?i:\b(?:founder|co[- ]?founder|ceo|cto|cfo|coo|director|partner|president|chairman|member)\b)` +
			`(?:\s*&\s*\w+)?` +
			`\s+(?:(?i:at|of)|@)\s+` +
			`([A-Z0-9][A-Za-z0-9 &.\-]{2,50})`)

	pipeRolePattern = regexp.MustCompile(
		`\|\s*(?i:CEO|CFO|COO|CTO|Founder|Co-Founder|Managing Director)` +
			`(?:\s*[&,]\s*\w+)?` +
			`,\s+([A-Z0-9][A-Za-z0-9 &.\-]{2,50})`)

	angelAtPattern = regexp.MustCompile(
		`(?i:\bAngel Investor)\s+(?:(?i:at)|@)\s+([A-Z0-9][A-Za-z0-9 &.\-]{2,50})`)

	foundedPattern = regexp.MustCompile(
		`(?i:\b(?:started|founded))\s+(?:(?i:the)\s+)?(?:(?i:own)\s+)?` +
			`(?:(?i:venture|company|startup)\s+)?(?:(?i:of|called)\s+)?['‘"]?` +
			`([A-Z0-9][A-Za-z0-9 &.\-]{2,50})`)
)

// DefaultOrgRules returns the extraction cascade in priority order
func DefaultOrgRules() []OrgRule {
	return []OrgRule{
		{Name: "possessive", Extract: perSentence(possessivePattern)},
		{Name: "role-at", Extract: perSentence(roleAtPattern)},
		{Name: "headline", Extract: extractHeadline},
		{Name: "founder-of", Extract: allMatches(founderOfPattern)},
		{Name: "pipe-role-company", Extract: allMatches(pipeRolePattern)},
		{Name: "angel-at", Extract: allMatches(angelAtPattern)},
		{Name: "founded", Extract: allMatches(foundedPattern)},
	}
}

func allMatches(re *regexp.Regexp) func(string) []string {
	return func(text string) []string {
		var out []string
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, m[1])
		}
		return out
	}
}

func perSentence(re *regexp.Regexp) func(string) []string {
	extract := allMatches(re)
	return func(text string) []string {
		var out []string
		for _, sentence := range sentenceSplit.Split(text, -1) {
			s := strings.TrimSpace(sentence)
			if s == "" {
				continue
			}
			out = append(out, extract(s)...)
		}
		return out
	}
}

// extractHeadline handles "Name - Company | LinkedIn" titles by taking
// the segment after the person's name.
func extractHeadline(text string) []string {
	var out []string
	for _, m := range headlinePattern.FindAllStringSubmatch(text, -1) {
		parts := headlineSplit.Split(strings.TrimSpace(m[1]), -1)
		if len(parts) < 2 {
			continue
		}
		out = append(out, parts[len(parts)-1])
	}
	return out
}

var (
	monthPattern   = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	numericPattern = regexp.MustCompile(`^\d+$`)

	orgStopPhrases = []string{
		"years of", "experience", "worked with", "experience in",
		"services", "solutions", "expansion", "linkedin",
	}

	orgDescriptors = map[string]bool{
		"career": true, "experience": true, "background": true, "journey": true,
		"early": true, "age": true, "years": true, "industry": true, "field": true,
		"space": true, "company": true, "companies": true, "organization": true,
		"organizations": true, "venture": true, "ventures": true, "startup": true,
		"startups": true, "business": true, "businesses": true, "firm": true, "firms": true,
	}
)

// OrgExtractor runs the rule cascade and filters implausible names
type OrgExtractor struct {
	rules []OrgRule
	tax   taxonomy.Taxonomy
}

// NewOrgExtractor creates an extractor with the given rules
func NewOrgExtractor(rules []OrgRule, tax taxonomy.Taxonomy) *OrgExtractor {
	return &OrgExtractor{rules: rules, tax: tax}
}

// Candidates returns every plausible organization in rule order, deduplicated
func (e *OrgExtractor) Candidates(text string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, rule := range e.rules {
		for _, raw := range rule.Extract(text) {
			org, ok := e.Accept(raw)
			if !ok || seen[org] {
				continue
			}
			seen[org] = true
			out = append(out, org)
		}
	}

	return out
}

// Extract returns the first plausible organization, or empty string
func (e *OrgExtractor) Extract(text string) string {
	if c := e.Candidates(text); len(c) > 0 {
		return c[0]
	}
	return ""
}

// Accept cleans a raw phrase and reports whether the result is a
// plausible organization
func (e *OrgExtractor) Accept(raw string) (string, bool) {
	org := cleanOrg(raw)
	return org, e.Plausible(org)
}

// Plausible reports whether a cleaned candidate survives the filters
func (e *OrgExtractor) Plausible(org string) bool {
	lower := strings.ToLower(org)

	if len(org) < 3 {
		return false
	}
	if monthPattern.MatchString(lower) || yearPattern.MatchString(lower) {
		return false
	}
	if strings.HasPrefix(lower, "a ") {
		return false
	}
	for _, phrase := range orgStopPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	if numericPattern.MatchString(org) {
		return false
	}

	words := strings.Fields(lower)
	for i := 0; i < len(words) && i < 3; i++ {
		if orgDescriptors[words[i]] {
			return false
		}
	}

	// A bare keyword or a role title is not an organization. Region and
	// behavior words inside a longer name are kept.
	if _, ok := e.tax.Lookup(lower); ok {
		return false
	}
	if e.tax.Any(lower, e.tax.Identity) || e.tax.Any(lower, e.tax.Seniority) {
		return false
	}

	return true
}

// orgConnectors may appear lowercase inside an organization name
var orgConnectors = map[string]bool{"of": true, "and": true, "&": true, "for": true, "the": true, "de": true}

func cleanOrg(raw string) string {
	// A sentence break ends the name
	if idx := strings.Index(raw, ". "); idx > 0 {
		raw = raw[:idx]
	}
	words := strings.Fields(raw)
	for i, w := range words {
		if i == 0 || orgConnectors[w] {
			continue
		}
		if c := w[0]; c >= 'a' && c <= 'z' {
			words = words[:i]
			break
		}
	}
	// Drop connectors left dangling at the end
	for len(words) > 1 && orgConnectors[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Trim(strings.Join(words, " "), " .,-·")
}
