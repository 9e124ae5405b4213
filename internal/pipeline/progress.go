package pipeline

import "time"

// ProgressPhase represents the current pipeline phase
type ProgressPhase string

const (
	PhaseDiscovering   ProgressPhase = "discovering"
	PhaseScoring       ProgressPhase = "scoring"
	PhaseVerifying     ProgressPhase = "verifying"
	PhaseConsolidating ProgressPhase = "consolidating"
	PhaseEnriching     ProgressPhase = "enriching"
	PhaseComplete      ProgressPhase = "complete"
)

// Progress represents the current pipeline progress
type Progress struct {
	Phase       ProgressPhase
	Current     int       // Current item being processed
	Total       int       // Total items in this phase
	Description string    // Human-readable description
	StartedAt   time.Time // When this phase started (for ETA calculation)
}

// ProgressCallback is called with progress updates. Verification calls it
// from worker goroutines, one call at a time.
type ProgressCallback func(Progress)

// ETA returns the estimated time remaining based on current progress
func (p Progress) ETA() time.Duration {
	if p.Current == 0 || p.Total == 0 || p.StartedAt.IsZero() {
		return 0
	}
	elapsed := time.Since(p.StartedAt)
	rate := float64(p.Current) / elapsed.Seconds()
	if rate <= 0 {
		return 0
	}
	remaining := p.Total - p.Current
	return time.Duration(float64(remaining)/rate) * time.Second
}

// Percentage returns the completion percentage (0-100)
func (p Progress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Current * 100) / p.Total
}

// reporter stamps each phase with its start time
type reporter struct {
	cb      ProgressCallback
	phase   ProgressPhase
	started time.Time
}

func newReporter(cb ProgressCallback) *reporter {
	return &reporter{cb: cb}
}

func (r *reporter) report(phase ProgressPhase, current, total int, desc string) {
	if r == nil || r.cb == nil {
		return
	}
	if phase != r.phase {
		r.phase = phase
		r.started = time.Now()
	}
	r.cb(Progress{
		Phase:       phase,
		Current:     current,
		Total:       total,
		Description: desc,
		StartedAt:   r.started,
	})
}
