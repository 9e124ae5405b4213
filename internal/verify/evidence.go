package verify

import "time"

// Evidence is one qualifying second-pass result for a candidate
type Evidence struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query_used"`
	Snippet   string    `json:"snippet"`
	Score     float64   `json:"second_pass_score"`
	Breakdown []string  `json:"score_breakdown"`
	SourceURL string    `json:"source_url"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMarker reports whether the breakdown contains the marker text
func (e Evidence) HasMarker(marker string) bool {
	for _, b := range e.Breakdown {
		if len(b) >= len(marker) && b[:len(marker)] == marker {
			return true
		}
	}
	return false
}
