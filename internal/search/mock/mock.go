// Package mock serves canned search hits for offline runs and tests.
package mock

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/tekoetch/investorscout/internal/search"
)

//go:embed leads.json
var leadsJSON []byte

var quotedName = regexp.MustCompile(`"([^"]+)"`)

// Provider replays batches of hits. Queries that quote a name get every
// canned hit whose title mentions that name; other queries get the next
// batch in rotation.
type Provider struct {
	mu      sync.Mutex
	batches [][]search.Hit
	next    int
}

// New returns a provider seeded with the bundled demo leads
func New() (*Provider, error) {
	var doc struct {
		Batches [][]search.Hit `json:"batches"`
	}
	if err := json.Unmarshal(leadsJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode demo leads: %w", err)
	}
	return NewWithBatches(doc.Batches...), nil
}

// NewWithBatches returns a provider replaying the given batches
func NewWithBatches(batches ...[]search.Hit) *Provider {
	for _, b := range batches {
		for i := range b {
			b[i].Source = "mock"
		}
	}
	return &Provider{batches: batches}
}

// Name returns "mock"
func (*Provider) Name() string {
	return "mock"
}

// Search returns canned hits
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]search.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, search.ErrEmptyQuery
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.batches) == 0 {
		return nil, nil
	}

	if m := quotedName.FindStringSubmatch(query); m != nil {
		name := strings.ToLower(m[1])
		var hits []search.Hit
		for _, b := range p.batches {
			for _, h := range b {
				if strings.Contains(strings.ToLower(h.Title), name) {
					hits = append(hits, h)
				}
			}
		}
		return search.Truncate(hits, limit), nil
	}

	batch := p.batches[p.next%len(p.batches)]
	p.next++
	return search.Truncate(append([]search.Hit(nil), batch...), limit), nil
}
