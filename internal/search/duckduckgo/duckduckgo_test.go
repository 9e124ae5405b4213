package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tekoetch/investorscout/internal/search"
)

const page = `<html><body>
<div class="result results_links result--ad">
  <a class="result__a" href="https://ads.example.com">Sponsored</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fae.linkedin.com%2Fin%2Fjanedoe&amp;rut=abc">Jane Doe - Angel Investor</a></h2>
  <a class="result__snippet">Angel investor   based in
    Dubai</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://example.com/john">John Roe | LinkedIn</a></h2>
  <a class="result__snippet">Partner at Gulf Capital</a>
</div>
</body></html>`

func TestParse(t *testing.T) {
	hits, err := Parse([]byte(page))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []search.Hit{
		{Title: "Jane Doe - Angel Investor", Snippet: "Angel investor based in Dubai", URL: "https://ae.linkedin.com/in/janedoe", Source: "duckduckgo"},
		{Title: "John Roe | LinkedIn", Snippet: "Partner at Gulf Capital", URL: "https://example.com/john", Source: "duckduckgo"},
	}
	if diff := cmp.Diff(want, hits); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "angel investor dubai" {
			t.Errorf("q = %q", got)
		}
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	p := New(WithEndpoint(srv.URL+"/html/"), WithFetcher(search.NewFetcher(search.WithDelay(0))))

	hits, err := p.Search(context.Background(), "angel investor dubai", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].URL != "https://ae.linkedin.com/in/janedoe" {
		t.Errorf("Search() = %+v", hits)
	}
}
