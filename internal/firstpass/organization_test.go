package firstpass

import (
	"strings"
	"testing"

	"github.com/tekoetch/investorscout/internal/taxonomy"
)

func TestOrgExtractor_Rules(t *testing.T) {
	e := NewOrgExtractor(DefaultOrgRules(), taxonomy.Default())

	tests := []struct {
		name string
		text string
		want string
	}{
		{"possessive", "TMT Law's Chief Operating Officer joins the board", "TMT Law"},
		{"role at", "CEO @ AJS Capital Real Estate Group | 20+ Years Building", "AJS Capital Real Estate Group"},
		{"headline", "Jane Doe - Gulf Capital | LinkedIn", "Gulf Capital"},
		{"founder of", "Founder & CEO of Falcon Labs. Builder", "Falcon Labs"},
		{"pipe role company", "Serial Entrepreneur | CEO, 7th Sky Group | Global Expert", "7th Sky Group"},
		{"angel at", "Angel Investor at Desert Angels Network", "Desert Angels Network"},
		{"founded", "He founded Sandstorm Labs to back local teams", "Sandstorm Labs"},
		{"nothing", "Passionate about people and travel", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Extract(tt.text); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrgExtractor_RuleOrder(t *testing.T) {
	e := NewOrgExtractor(DefaultOrgRules(), taxonomy.Default())

	// Possessive beats the later founder-of match
	text := "Falcon Group's Managing Director. Founder of Oasis Labs"
	got := e.Candidates(text)
	if len(got) < 2 || got[0] != "Falcon Group" || got[1] != "Oasis Labs" {
		t.Errorf("Candidates() = %v", got)
	}
}

func TestOrgExtractor_RejectsDates(t *testing.T) {
	e := NewOrgExtractor(DefaultOrgRules(), taxonomy.Default())

	texts := []string{
		"She founded Acme Capital in 2021 with two partners",
		"Partner at 2021 Holdings",
		"Founded in 2021",
		"Director at March Capital",
	}

	for _, text := range texts {
		org := e.Extract(text)
		if strings.Contains(org, "2021") || strings.Contains(strings.ToLower(org), "march") {
			t.Errorf("Extract(%q) = %q, should not contain a date", text, org)
		}
	}
}

func TestOrgExtractor_Plausible(t *testing.T) {
	e := NewOrgExtractor(DefaultOrgRules(), taxonomy.Default())

	tests := []struct {
		org  string
		want bool
	}{
		{"Google", true},
		{"Mubadala Capital", true},
		{"Career Growth Partners", false},
		{"March Capital", false},
		{"2021 Holdings", false},
		{"a Holding Co", false},
		{"AB", false},
		{"12345", false},
		{"Acme Solutions", false},
		{"Angel Investor", false},
		{"Managing Director", false},
		{"Big Venture Studio", false},
		{"Dubai", false},
		{"Real Estate", false},
		{"Dubai Holding", true},
		{"Gulf Capital", true},
	}

	for _, tt := range tests {
		t.Run(tt.org, func(t *testing.T) {
			if got := e.Plausible(tt.org); got != tt.want {
				t.Errorf("Plausible(%q) = %v, want %v", tt.org, got, tt.want)
			}
		})
	}
}

func TestCleanOrg(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{" AJS Capital Real Estate Group ", "AJS Capital Real Estate Group"},
		{"Acme Capital in 2021", "Acme Capital"},
		{"Bank of America.", "Bank of America"},
		{"Falcon Labs and", "Falcon Labs"},
	}

	for _, tt := range tests {
		if got := cleanOrg(tt.raw); got != tt.want {
			t.Errorf("cleanOrg(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
