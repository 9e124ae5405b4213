package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tekoetch/investorscout/internal/consolidate"
)

// RunKind names what a recorded run did
type RunKind string

const (
	RunDiscover    RunKind = "discover"
	RunVerify      RunKind = "verify"
	RunConsolidate RunKind = "consolidate"
	RunEnrich      RunKind = "enrich"
	RunFull        RunKind = "run"
)

// Run is one recorded pipeline invocation
type Run struct {
	ID         string     `json:"id"`
	Kind       RunKind    `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Queries    int        `json:"queries"`
	Hits       int        `json:"hits"`
	Added      int        `json:"added"`
	Merged     int        `json:"merged"`
	Verified   int        `json:"verified"`
	Evidence   int        `json:"evidence"`
	Errors     int        `json:"errors"`
	ErrorText  *string    `json:"error_text,omitempty"`
}

// Duration returns how long the run took, zero while it is still open
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stats represents aggregate statistics
type Stats struct {
	TotalDiscovered int                       `json:"total_discovered"`
	Unverified      int                       `json:"unverified"`
	TotalVerified   int                       `json:"total_verified"`
	EvidenceRows    int                       `json:"evidence_rows"`
	Verdicts        map[consolidate.Grade]int `json:"verdicts"`
	GreenList       int                       `json:"green_list"`
	GreenPercent    float64                   `json:"green_percent"`
	Enrichments     int                       `json:"enrichments"`
	Labels          int                       `json:"labels"`
	LastRun         *Run                      `json:"last_run,omitempty"`
}

// LeadListOptions contains options for listing leads
type LeadListOptions struct {
	MinScore      *float64
	Name          *string
	ExcludeUnsure bool
	Limit         int
	Offset        int
}

// VerdictListOptions contains options for listing verdicts
type VerdictListOptions struct {
	Grade        *consolidate.Grade
	AcceptedOnly bool
	Limit        int
	Offset       int
}

// NullString converts an empty string to a NULL column
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullStringPtr is a helper to convert *string to sql.NullString
func NullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// TimePtr converts sql.NullTime to *time.Time
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

// encodeList stores a string slice as a JSON array column
func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeList reads a JSON array column back, tolerating empty values
func decodeList(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}
