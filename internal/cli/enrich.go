package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/output"
	"github.com/tekoetch/investorscout/internal/pipeline"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Search social presence and contact details of graded candidates",
	Long: `Enrich runs the [enrichment] query templates for every consolidated
candidate that was not rejected and stores the hits.

Examples:
  scout enrich
  scout enrich --name "Jane Doe"
  scout enrich --grade=Great -o json`,
	RunE: runEnrich,
}

var (
	enrichName  string
	enrichGrade string
)

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().StringVar(&enrichName, "name", "", "Enrich a single candidate")
	enrichCmd.Flags().StringVar(&enrichGrade, "grade", "", "Only enrich candidates with this verdict (Great, Good, Pending)")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var verdicts []consolidate.Verdict
	if enrichName != "" {
		v, err := db.GetVerdict(ctx, enrichName)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if v == nil {
			return fmt.Errorf("candidate not found: %s (run 'scout consolidate' first)", enrichName)
		}
		verdicts = []consolidate.Verdict{*v}
	} else {
		opts := database.VerdictListOptions{}
		if enrichGrade != "" {
			grade, err := consolidate.ParseGrade(enrichGrade)
			if err != nil {
				return err
			}
			opts.Grade = &grade
		}
		verdicts, err = db.ListVerdicts(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to load verdicts: %w", err)
		}
	}

	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.Release()

	run, err := startRun(ctx, db, database.RunEnrich)
	if err != nil {
		return err
	}

	var progress pipeline.ProgressCallback
	terminal := NewTerminal()
	if !quiet() {
		progress = newProgressPrinter(terminal)
	}

	result, err := p.Enrich(ctx, verdicts, progress)
	terminal.ClearLine()
	if err == nil {
		if err = db.ReplaceEnrichments(ctx, result.Candidates, result.Rows); err != nil {
			err = fmt.Errorf("failed to save enrichments: %w", err)
		}
	}

	if result != nil {
		run.Queries = result.Queries
		run.Verified = len(result.Candidates)
		run.Evidence = len(result.Rows)
		run.Errors = len(result.Errors)
	}
	finishRun(ctx, db, run, err)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	if quiet() {
		return output.Output(outputFmt, result.Rows)
	}

	fmt.Println()
	fmt.Printf("Enrichment complete in %s:\n", elapsed(start))
	fmt.Printf("  Candidates:           %d\n", len(result.Candidates))
	fmt.Printf("  Queries:              %d\n", result.Queries)
	fmt.Printf("  Rows:                 %d\n", len(result.Rows))
	printWarnings(result.Errors)

	fmt.Println()
	return output.Table(result.Rows)
}
