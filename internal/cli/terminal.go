package cli

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/pipeline"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Terminal writes progress to stderr, redrawing a single status line
// when stderr is a TTY
type Terminal struct {
	IsTerminal bool
	UseColor   bool

	out          *os.File
	spinnerIndex int
	status       bool // a status line is on screen
}

// NewTerminal detects whether stderr is a TTY. NO_COLOR disables colors.
func NewTerminal() *Terminal {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	_, noColor := os.LookupEnv("NO_COLOR")
	return &Terminal{
		IsTerminal: isTerminal,
		UseColor:   isTerminal && !noColor,
		out:        os.Stderr,
	}
}

// Status replaces the current status line. Off a TTY it prints msg on its
// own line.
func (t *Terminal) Status(msg string) {
	if !t.IsTerminal {
		fmt.Fprintln(t.out, msg)
		return
	}
	fmt.Fprint(t.out, "\r\033[K"+msg)
	t.out.Sync()
	t.status = true
}

// ClearLine erases the status line, if any
func (t *Terminal) ClearLine() {
	if t.IsTerminal && t.status {
		fmt.Fprint(t.out, "\r\033[K")
		t.status = false
	}
}

// Spinner returns the next spinner frame, or nothing off a TTY
func (t *Terminal) Spinner() string {
	if !t.IsTerminal {
		return ""
	}
	frame := spinnerFrames[t.spinnerIndex]
	t.spinnerIndex = (t.spinnerIndex + 1) % len(spinnerFrames)
	return frame
}

// Color wraps text in ANSI color codes when colors are enabled
func (t *Terminal) Color(color, text string) string {
	if !t.UseColor {
		return text
	}
	return color + text + ColorReset
}

// FormatETA renders a remaining duration as 42s, 3m5s or 1h10m
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		m, s := int(d.Minutes()), int(d.Seconds())%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// PhaseColor returns the color of a pipeline phase
func PhaseColor(phase pipeline.ProgressPhase) string {
	switch phase {
	case pipeline.PhaseDiscovering:
		return ColorCyan
	case pipeline.PhaseScoring:
		return ColorBlue
	case pipeline.PhaseVerifying:
		return ColorYellow
	case pipeline.PhaseConsolidating:
		return ColorPurple
	case pipeline.PhaseEnriching:
		return ColorGreen
	case pipeline.PhaseComplete:
		return ColorGray
	default:
		return ColorWhite
	}
}

// GradeColor returns the color of a verdict grade
func GradeColor(grade consolidate.Grade) string {
	switch grade {
	case consolidate.GradeGreat:
		return ColorGreen
	case consolidate.GradeGood:
		return ColorCyan
	case consolidate.GradePending:
		return ColorYellow
	case consolidate.GradeReject:
		return ColorRed
	default:
		return ColorWhite
	}
}
