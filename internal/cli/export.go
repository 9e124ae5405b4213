package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export [verdicts|leads|evidence|enrichments]",
	Short: "Export stored data to CSV or JSON",
	Long: `Export verdicts (the default), first-pass leads, second-pass evidence
or enrichment rows.

Supported formats:
  - csv: spreadsheet-compatible, verdicts include the keyword columns
  - json: one JSON array
  - jsonl: one JSON object per line

Examples:
  scout export > verdicts.csv
  scout export --green --file=green-list.csv
  scout export evidence --format=jsonl > evidence.jsonl`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"verdicts", "leads", "evidence", "enrichments"},
	RunE:      runExport,
}

var (
	exportFormat string
	exportFile   string
	exportGreen  bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, json, jsonl)")
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVar(&exportGreen, "green", false, "Only accepted verdicts (Great and Good)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	what := "verdicts"
	if len(args) == 1 {
		what = args[0]
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var w io.Writer = os.Stdout
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	n, err := exportData(ctx, db, what, w)
	if err != nil {
		return err
	}
	if exportFile != "" {
		fmt.Fprintf(os.Stderr, "Exported %d %s to %s\n", n, what, exportFile)
	}
	return nil
}

// exportData writes one table in exportFormat and returns the row count
func exportData(ctx context.Context, db *database.DB, what string, w io.Writer) (int, error) {
	switch what {
	case "verdicts":
		list, err := db.ListVerdicts(ctx, database.VerdictListOptions{AcceptedOnly: exportGreen})
		if err != nil {
			return 0, fmt.Errorf("failed to list verdicts: %w", err)
		}
		return len(list), writeExport(w, list)
	case "leads":
		list, err := db.ListLeads(ctx, database.LeadListOptions{})
		if err != nil {
			return 0, fmt.Errorf("failed to list leads: %w", err)
		}
		return len(list), writeExport(w, list)
	case "evidence":
		list, err := db.ListEvidence(ctx, "")
		if err != nil {
			return 0, fmt.Errorf("failed to list evidence: %w", err)
		}
		return len(list), writeExport(w, list)
	case "enrichments":
		list, err := db.ListEnrichments(ctx, "")
		if err != nil {
			return 0, fmt.Errorf("failed to list enrichments: %w", err)
		}
		return len(list), writeExport(w, list)
	default:
		return 0, fmt.Errorf("unknown export: %s (use verdicts, leads, evidence or enrichments)", what)
	}
}

func writeExport[T any](w io.Writer, list []T) error {
	switch exportFormat {
	case "csv":
		return output.CSVTo(w, list)
	case "json":
		if list == nil {
			list = []T{}
		}
		return output.JSONTo(w, list)
	case "jsonl":
		return output.JSONLinesTo(w, list)
	default:
		return fmt.Errorf("unknown format: %s (use csv, json or jsonl)", exportFormat)
	}
}
