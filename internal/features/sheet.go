package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sheet column names
var (
	leadingColumns = []string{"Name", "URL", "FP_Score", "SP_Score", "FP_Signals", "SP_Signals"}
	labelColumns   = []string{"LABEL_Identity", "LABEL_Behavior", "LABEL_Geo", "LABEL_Contact"}
)

// WriteSheet writes the labeling sheet as CSV
func WriteSheet(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cols := Columns(rows)

	header := make([]string, 0, len(leadingColumns)+len(cols)+len(labelColumns))
	header = append(header, leadingColumns...)
	header = append(header, cols...)
	header = append(header, labelColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Name,
			r.URL,
			strconv.FormatFloat(r.FPScore, 'f', 2, 64),
			strconv.FormatFloat(r.SPScore, 'f', 2, 64),
			strings.Join(r.FPSignals, ", "),
			strings.Join(r.SPSignals, ", "),
		}
		for _, c := range cols {
			record = append(record, strconv.Itoa(r.Features[c]))
		}
		record = append(record,
			strconv.Itoa(r.Labels.Identity),
			strconv.Itoa(r.Labels.Behavior),
			strconv.Itoa(r.Labels.Geo),
			strconv.Itoa(r.Labels.Contact),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadInputs reads raw hits from a CSV with Name, Title, Snippet and URL
// columns in any order
func ReadInputs(r io.Reader) ([]Input, error) {
	records, idx, err := readCSV(r, "Name", "Title", "Snippet", "URL")
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, 0, len(records))
	for _, rec := range records {
		inputs = append(inputs, Input{
			Name:    rec[idx["Name"]],
			Title:   rec[idx["Title"]],
			Snippet: rec[idx["Snippet"]],
			URL:     rec[idx["URL"]],
		})
	}
	return inputs, nil
}

// ReadLabels reads human ratings back from a filled-in labeling sheet
func ReadLabels(r io.Reader) ([]Label, error) {
	required := append([]string{"Name"}, labelColumns...)
	records, idx, err := readCSV(r, required...)
	if err != nil {
		return nil, err
	}

	var labels []Label
	var errs []error
	for i, rec := range records {
		var vals [4]int
		for j, col := range labelColumns {
			v, err := strconv.Atoi(strings.TrimSpace(rec[idx[col]]))
			if err != nil {
				errs = append(errs, fmt.Errorf("row %d: invalid %s: %w", i+2, col, err))
			}
			vals[j] = v
		}
		l := Label{Name: rec[idx["Name"]], Identity: vals[0], Behavior: vals[1], Geo: vals[2], Contact: vals[3]}
		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}
		labels = append(labels, l)
	}
	return labels, errors.Join(errs...)
}

func readCSV(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	for i, rec := range records {
		for _, col := range required {
			if idx[col] >= len(rec) {
				return nil, nil, fmt.Errorf("row %d: missing %s", i+2, col)
			}
		}
	}
	return records, idx, nil
}
