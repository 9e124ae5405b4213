package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// Formats lists the values accepted by --output
var Formats = []string{"table", "json", "csv"}

// ValidFormat reports an error for an unknown --output value
func ValidFormat(format string) error {
	if format == "" || slices.Contains(Formats, format) {
		return nil
	}
	return fmt.Errorf("unknown output format: %s (use table, json or csv)", format)
}

// JSON writes data as indented JSON to stdout
func JSON(data interface{}) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as indented JSON to w
func JSONTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// JSONLinesTo writes one compact JSON document per item
func JSONLinesTo[T any](w io.Writer, items []T) error {
	encoder := json.NewEncoder(w)
	for i := range items {
		if err := encoder.Encode(items[i]); err != nil {
			return fmt.Errorf("failed to encode item %d: %w", i, err)
		}
	}
	return nil
}

// Output writes data to stdout in the given format
func Output(format string, data interface{}) error {
	return OutputTo(os.Stdout, format, data)
}

// OutputTo writes data to w in the given format
func OutputTo(w io.Writer, format string, data interface{}) error {
	switch format {
	case "json":
		return JSONTo(w, data)
	case "table", "":
		return TableTo(w, data)
	case "csv":
		return CSVTo(w, data)
	default:
		return ValidFormat(format)
	}
}
