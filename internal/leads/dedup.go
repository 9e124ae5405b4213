package leads

import (
	"net/url"
	"regexp"
	"strings"
)

// NearDuplicateWords is the number of new words below which two texts are
// considered the same content
const NearDuplicateWords = 5

// DefaultBlockedURLs are ad and tracking redirects that never name a person
var DefaultBlockedURLs = []string{
	"bing.com/aclick",
	"bing.com/ck/a",
	"doubleclick.net",
}

var localeLabel = regexp.MustCompile(`^[a-z]{2}$`)

// NormalizeURL reduces a URL to a comparison key: no scheme, query,
// fragment, www, linkedin.com locale subdomain or trailing slash, all
// lowercase.
func NormalizeURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")

	host, path, _ := strings.Cut(s, "/")
	if locale, rest, ok := strings.Cut(host, "."); ok && rest == "linkedin.com" && localeLabel.MatchString(locale) {
		host = rest
	}

	s = host
	if path != "" {
		s += "/" + path
	}
	return strings.TrimRight(s, "/")
}

// Host returns the lowercase host of a URL without www
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// Blocked reports whether the URL matches any blocked pattern
func Blocked(raw string, blocked []string) bool {
	norm := strings.ToLower(raw)
	for _, b := range blocked {
		if strings.Contains(norm, b) {
			return true
		}
	}
	return false
}

// NewWords counts unique words in newText that do not appear in oldText
func NewWords(oldText, newText string) int {
	old := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(oldText)) {
		old[w] = true
	}

	seen := make(map[string]bool)
	count := 0
	for _, w := range strings.Fields(strings.ToLower(newText)) {
		if old[w] || seen[w] {
			continue
		}
		seen[w] = true
		count++
	}
	return count
}

// Outcome describes what Book.Add did with a lead
type Outcome string

const (
	OutcomeAdded   Outcome = "added"
	OutcomeMerged  Outcome = "merged"
	OutcomeSkipped Outcome = "skipped"
)

// Book accumulates the leads of a discovery run. Order of Add calls
// decides which record survives as first seen.
type Book struct {
	leads   []*Lead
	byURL   map[string]*Lead
	touched map[*Lead]bool
}

// NewBook creates a Book seeded with leads from earlier runs
func NewBook(existing []Lead) *Book {
	b := &Book{
		byURL:   make(map[string]*Lead),
		touched: make(map[*Lead]bool),
	}
	for _, l := range existing {
		if l.NormalizedURL == "" {
			l.NormalizedURL = NormalizeURL(l.URL)
		}
		b.leads = append(b.leads, &l)
		b.byURL[l.NormalizedURL] = &l
	}
	return b
}

// Add records a lead, merging it into an existing record when the URL or
// the content already matches one.
func (b *Book) Add(l Lead) (Outcome, *Lead) {
	if l.NormalizedURL == "" {
		l.NormalizedURL = NormalizeURL(l.URL)
	}

	if existing, ok := b.byURL[l.NormalizedURL]; ok {
		if NewWords(existing.Text(), l.Text()) < NearDuplicateWords {
			return OutcomeSkipped, existing
		}
		existing.Merge(l)
		b.touched[existing] = true
		return OutcomeMerged, existing
	}

	// Same person re-crawled under another URL
	for _, existing := range b.leads {
		if !strings.EqualFold(existing.Name, l.Name) {
			continue
		}
		if NewWords(existing.Text(), l.Text()) < NearDuplicateWords {
			existing.Merge(l)
			b.touched[existing] = true
			return OutcomeMerged, existing
		}
	}

	stored := &l
	b.leads = append(b.leads, stored)
	b.byURL[stored.NormalizedURL] = stored
	b.touched[stored] = true
	return OutcomeAdded, stored
}

// Find returns the lead for a URL, or nil
func (b *Book) Find(rawURL string) *Lead {
	return b.byURL[NormalizeURL(rawURL)]
}

// All returns every lead in first-seen order
func (b *Book) All() []Lead {
	out := make([]Lead, 0, len(b.leads))
	for _, l := range b.leads {
		out = append(out, *l)
	}
	return out
}

// Touched returns leads added or merged since the Book was created
func (b *Book) Touched() []Lead {
	var out []Lead
	for _, l := range b.leads {
		if b.touched[l] {
			out = append(out, *l)
		}
	}
	return out
}

// Len returns the number of distinct leads
func (b *Book) Len() int {
	return len(b.leads)
}
