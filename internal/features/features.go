// Package features turns scorer signals into binary feature columns and
// reads/writes the labeling sheet used to train the external regressor.
package features

import (
	"regexp"
	"slices"
	"strings"

	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/verify"
)

// Feature key prefixes
const (
	PrefixFirstPass  = "FP_HAS_"
	PrefixSecondPass = "SP_HAS_"
)

var (
	deltaSuffix = regexp.MustCompile(`\s*\([+-]\d+(\.\d+)?\)\s*$`)
	nonAlnum    = regexp.MustCompile(`[^A-Z0-9]+`)
)

// Key converts a signal into a feature column name. The trailing score
// delta is dropped so the same rule always maps to the same column.
func Key(prefix, signal string) string {
	s := deltaSuffix.ReplaceAllString(signal, "")
	s = nonAlnum.ReplaceAllString(strings.ToUpper(s), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return ""
	}
	return prefix + s
}

// Input is one raw search hit to featurize
type Input struct {
	Name    string
	Title   string
	Snippet string
	URL     string
}

// Row is one line of the labeling sheet
type Row struct {
	Name      string
	URL       string
	FPScore   float64
	SPScore   float64
	FPSignals []string
	SPSignals []string
	Features  map[string]int
	Labels    Label
}

// Builder scores inputs with both passes
type Builder struct {
	first  *firstpass.Scorer
	second *verify.Scorer
}

// NewBuilder creates a Builder
func NewBuilder(first *firstpass.Scorer, second *verify.Scorer) *Builder {
	return &Builder{first: first, second: second}
}

// Build scores each input. Every input gets a fresh verification state,
// and labels default to 1 until a human fills them in.
func (b *Builder) Build(inputs []Input) []Row {
	rows := make([]Row, 0, len(inputs))
	for _, in := range inputs {
		text := in.Title + " " + in.Snippet
		fp := b.first.Score(text, "", in.URL)
		sp := b.second.Score(text, in.URL, verify.NewState(in.Name, nil))

		row := Row{
			Name:      in.Name,
			URL:       in.URL,
			FPScore:   fp.Score,
			SPScore:   sp.Score,
			FPSignals: fp.Signals,
			SPSignals: sp.Breakdown,
			Features:  make(map[string]int),
			Labels:    DefaultLabel(in.Name),
		}
		for _, sig := range fp.Signals {
			if k := Key(PrefixFirstPass, sig); k != "" {
				row.Features[k] = 1
			}
		}
		for _, sig := range sp.Breakdown {
			if k := Key(PrefixSecondPass, sig); k != "" {
				row.Features[k] = 1
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Columns returns the sorted union of feature columns across rows
func Columns(rows []Row) []string {
	var cols []string
	for _, r := range rows {
		for k := range r.Features {
			if !slices.Contains(cols, k) {
				cols = append(cols, k)
			}
		}
	}
	slices.Sort(cols)
	return cols
}
