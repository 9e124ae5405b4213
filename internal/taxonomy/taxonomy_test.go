package taxonomy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContainsWord(t *testing.T) {
	tests := []struct {
		text string
		word string
		want bool
	}{
		{"group cio at acme", "cio", true},
		{"the ratio is high", "cio", false},
		{"cio", "cio", true},
		{"ratio and cio", "cio", true},
		{"angel investor in dubai", "angel investor", true},
		{"angel investors club", "angel investor", false},
		{"co-founder of x", "founder", true},
		{"cofounder of x", "founder", false},
		{"pre-seed rounds", "seed", true},
		{"", "cio", false},
		{"cio", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.word, func(t *testing.T) {
			if got := ContainsWord(tt.text, tt.word); got != tt.want {
				t.Errorf("ContainsWord(%q, %q) = %v, want %v", tt.text, tt.word, got, tt.want)
			}
		})
	}
}

func TestTaxonomy_Match(t *testing.T) {
	tax := Default()

	// Primary cities match inside longer tokens
	if !tax.Match("#dubaiinvestors community", "dubai") {
		t.Error("expected substring match for primary city")
	}
	// Other region terms need boundaries
	if tax.Match("gulfstream jets", "gulf") {
		t.Error("expected no match for gulf inside gulfstream")
	}
	if !tax.Match("gulf region", "gulf") {
		t.Error("expected match for gulf")
	}
}

func TestTaxonomy_Hits(t *testing.T) {
	tax := Default()
	text := "angel investor and founder, investing in seed rounds"

	got := tax.Hits(text, tax.Identity)
	want := []string{"angel investor", "founder", "angel"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("identity hits mismatch (-want +got):\n%s", diff)
	}

	got = tax.Hits(text, tax.Behavior)
	want = []string{"investing in", "seed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("behavior hits mismatch (-want +got):\n%s", diff)
	}
}

func TestTaxonomy_Lookup(t *testing.T) {
	tax := Default()

	tests := []struct {
		term   string
		want   Category
		wantOK bool
	}{
		{"angel investor", Identity, true},
		{"Series A", Behavior, true},
		{"chairman", Seniority, true},
		{"gcc", Geography, true},
		{"dubai", Geography, true},
		{"blockchain", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := tax.Lookup(tt.term)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.term, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTaxonomy_HasRegion(t *testing.T) {
	tax := Default()

	if !tax.HasRegion("Based in Abu Dhabi") {
		t.Error("expected Abu Dhabi to count as region")
	}
	if !tax.HasRegion("Investor across the Middle East") {
		t.Error("expected wider region to count")
	}
	if tax.HasRegion("Angel Investor | Founder, Acme Capital") {
		t.Error("expected no region")
	}
}

func TestNormalize(t *testing.T) {
	tax := Taxonomy{Identity: []string{"  Angel Investor "}}
	tax.Normalize()
	if tax.Identity[0] != "angel investor" {
		t.Errorf("Normalize() = %q", tax.Identity[0])
	}
}

func TestKeywordContext(t *testing.T) {
	got := KeywordContext("Partner at Gulf Ventures in Dubai", []string{"gulf"}, 3)
	want := []string{"...at Gulf Ve..."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("KeywordContext mismatch (-want +got):\n%s", diff)
	}
}
