// Package consolidate merges first-pass leads and second-pass evidence
// into one verdict per candidate.
package consolidate

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/taxonomy"
	"github.com/tekoetch/investorscout/internal/verify"
)

// Grade is the final verdict bucket
type Grade string

const (
	GradeGreat   Grade = "Great"
	GradeGood    Grade = "Good"
	GradePending Grade = "Pending"
	GradeReject  Grade = "Reject"
)

// Grades lists every grade from best to worst
var Grades = []Grade{GradeGreat, GradeGood, GradePending, GradeReject}

// Accepted reports whether the grade belongs on the green list
func (g Grade) Accepted() bool {
	return g == GradeGreat || g == GradeGood
}

// ParseGrade accepts a grade in any case
func ParseGrade(s string) (Grade, error) {
	for _, g := range Grades {
		if strings.EqualFold(s, string(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown grade: %s (use Great, Good, Pending or Reject)", s)
}

// Verdict is the consolidated row for one candidate
type Verdict struct {
	Name              string   `json:"name"`
	Organization      string   `json:"company,omitempty"`
	FirstPassScore    float64  `json:"first_pass_score"`
	SecondPassTotal   float64  `json:"second_pass_score"`
	FinalScore        float64  `json:"final_score"`
	InvestorConfirmed bool     `json:"investor_confirmed"`
	GeoConfirmed      bool     `json:"geo_confirmed"`
	SocialPresence    []string `json:"social_presence,omitempty"`
	Grade             Grade    `json:"verdict"`
	Unverified        bool     `json:"unverified"`
	RegionOverride    bool     `json:"region_override"`
	URL               string   `json:"url"`
	EvidenceCount     int      `json:"evidence_count"`

	IdentityKeywords  []string `json:"identity_keywords,omitempty"`
	GeoKeywords       []string `json:"geo_keywords,omitempty"`
	SeniorityKeywords []string `json:"seniority_keywords,omitempty"`
}

var (
	evidenceOrgPattern = regexp.MustCompile(`\b(?:at|with)\s+([A-Z][A-Za-z0-9 &]{3,})`)
	quotedTermPattern  = regexp.MustCompile(`'([^']+)'`)
)

// Consolidator builds verdicts. It holds no per-run state.
type Consolidator struct {
	cfg  Config
	tax  taxonomy.Taxonomy
	orgs *firstpass.OrgExtractor
}

// New creates a Consolidator
func New(cfg Config, tax taxonomy.Taxonomy) *Consolidator {
	return &Consolidator{
		cfg:  cfg,
		tax:  tax,
		orgs: firstpass.NewOrgExtractor(firstpass.DefaultOrgRules(), tax),
	}
}

// NewDefault creates a Consolidator with the built-in configuration
func NewDefault() *Consolidator {
	return New(DefaultConfig(), taxonomy.Default())
}

// Config returns the consolidator configuration
func (c *Consolidator) Config() Config {
	return c.cfg
}

// candidate groups the leads sharing one name
type candidate struct {
	name       string
	score      float64
	url        string
	org        string
	text       []string
	signals    []string
	unverified bool
}

// Consolidate returns one verdict per distinct lead name, in first-seen
// order. Evidence is matched to leads by case-insensitive name.
func (c *Consolidator) Consolidate(all []leads.Lead, evidence []verify.Evidence) []Verdict {
	var order []string
	groups := make(map[string]*candidate)

	for _, l := range all {
		key := strings.ToLower(strings.TrimSpace(l.Name))
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &candidate{name: l.Name}
			groups[key] = g
			order = append(order, key)
		}
		if l.Score > g.score || g.url == "" {
			g.score = max(g.score, l.Score)
			g.url = l.URL
		}
		if g.org == "" {
			g.org = l.Organization
		}
		g.text = append(g.text, l.Text())
		for _, sig := range l.Signals {
			if !slices.Contains(g.signals, sig) {
				g.signals = append(g.signals, sig)
			}
		}
		g.unverified = g.unverified || l.Unverified
	}

	byName := make(map[string][]verify.Evidence)
	for _, e := range evidence {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		byName[key] = append(byName[key], e)
	}

	verdicts := make([]Verdict, 0, len(order))
	for _, key := range order {
		g := groups[key]
		ev := byName[key]
		if g.unverified {
			ev = nil
		}
		verdicts = append(verdicts, c.verdict(g, ev))
	}
	return verdicts
}

func (c *Consolidator) verdict(g *candidate, ev []verify.Evidence) Verdict {
	v := Verdict{
		Name:           g.name,
		Organization:   g.org,
		FirstPassScore: g.score,
		Unverified:     g.unverified,
		URL:            g.url,
		EvidenceCount:  len(ev),
	}

	var total float64
	texts := slices.Clone(g.text)
	for _, e := range ev {
		total += e.Score
		texts = append(texts, e.Snippet)
		if e.HasMarker(verify.MarkerIdentity) {
			v.InvestorConfirmed = true
		}
		if e.HasMarker(verify.MarkerGeo) {
			v.GeoConfirmed = true
		}
	}
	v.SecondPassTotal = min(total, c.cfg.Cap)
	v.FinalScore = c.combine(v.FirstPassScore, v.SecondPassTotal)

	if v.Organization == "" {
		v.Organization = c.evidenceOrganization(ev)
	}
	v.SocialPresence = c.socialPresence(ev)

	v.IdentityKeywords, v.SeniorityKeywords = c.signalKeywords(g.signals)
	v.GeoKeywords = c.tax.Hits(strings.ToLower(strings.Join(g.text, " ")), c.tax.Region())

	switch {
	case !c.tax.HasRegion(strings.Join(texts, " ")):
		v.Grade = GradeReject
		v.RegionOverride = true
	case len(ev) == 0 && v.FirstPassScore >= c.cfg.PendingFloor:
		v.Grade = GradePending
	case v.FinalScore >= c.cfg.Great:
		v.Grade = GradeGreat
	case v.FinalScore >= c.cfg.Good:
		v.Grade = GradeGood
	default:
		v.Grade = GradeReject
	}

	return v
}

// combine applies the configured formula. Both scales top out at 10.
func (c *Consolidator) combine(first, second float64) float64 {
	if c.cfg.Formula == FormulaSum {
		return min(first+second, firstpass.MaxScore)
	}
	return (first + second) / 2
}

// evidenceOrganization parses "at/with Company" phrases from evidence
// snippets, skipping anything that reads like a street address
func (c *Consolidator) evidenceOrganization(ev []verify.Evidence) string {
	var found []string
	for _, e := range ev {
		for _, m := range evidenceOrgPattern.FindAllStringSubmatch(e.Snippet, -1) {
			if c.addressLike(m[1]) {
				continue
			}
			org, ok := c.orgs.Accept(m[1])
			if ok && !slices.Contains(found, org) {
				found = append(found, org)
			}
		}
	}
	slices.Sort(found)
	return strings.Join(found, ", ")
}

func (c *Consolidator) addressLike(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range c.cfg.AddressWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// socialPresence lists the public contact channels seen in evidence
func (c *Consolidator) socialPresence(ev []verify.Evidence) []string {
	var flags []string
	add := func(f string) {
		if !slices.Contains(flags, f) {
			flags = append(flags, f)
		}
	}

	for _, e := range ev {
		host := hostOf(e.SourceURL)
		for _, d := range c.cfg.ContactDomains {
			if host == d || strings.HasSuffix(host, "."+d) {
				add(d)
			}
		}
		for _, d := range c.cfg.SocialDomains {
			if host == d || strings.HasSuffix(host, "."+d) {
				add(d)
			}
		}
		lower := strings.ToLower(e.Snippet)
		for _, provider := range c.cfg.Webmail {
			if strings.Contains(lower, "@"+provider+".") {
				add("webmail")
			}
		}
	}
	return flags
}

// signalKeywords pulls the quoted identity and seniority terms out of
// first-pass signals
func (c *Consolidator) signalKeywords(signals []string) (identity, seniority []string) {
	for _, sig := range signals {
		for _, m := range quotedTermPattern.FindAllStringSubmatch(sig, -1) {
			term := strings.ToLower(m[1])
			switch cat, _ := c.tax.Lookup(term); cat {
			case taxonomy.Identity:
				if !slices.Contains(identity, term) {
					identity = append(identity, term)
				}
			case taxonomy.Seniority:
				if !slices.Contains(seniority, term) {
					seniority = append(seniority, term)
				}
			}
		}
	}
	if slices.Contains(identity, "angel investor") {
		identity = slices.DeleteFunc(identity, func(s string) bool { return s == "angel" })
	}
	return identity, seniority
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
