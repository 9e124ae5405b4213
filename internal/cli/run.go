package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/config"
	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/output"
	"github.com/tekoetch/investorscout/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover, verify and consolidate in one pass",
	Long: `Run executes the whole pipeline: discovery queries, second-pass
verification of new and merged leads, and consolidation of every stored
candidate. With --enrich it also searches for social presence and contact
details of candidates that were not rejected.

Examples:
  scout run
  scout run --enrich
  scout run --verify-all -o json`,
	RunE: runRun,
}

var (
	runQueries    []string
	runVerifyAll  bool
	runNoVerify   bool
	runEnrichFlag bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayVarP(&runQueries, "query", "q", nil, "Discovery query (repeatable, default: [discovery] queries)")
	runCmd.Flags().BoolVar(&runVerifyAll, "verify-all", false, "Re-verify every stored lead, not only new or merged ones")
	runCmd.Flags().BoolVar(&runNoVerify, "no-verify", false, "Skip verification and grade with stored evidence")
	runCmd.Flags().BoolVar(&runEnrichFlag, "enrich", false, "Run the enrichment pass after consolidation")
}

func runRun(cmd *cobra.Command, args []string) error {
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

	opts := pipeline.RunOptions{
		Queries:    cfg.Discovery.Queries,
		VerifyAll:  runVerifyAll,
		SkipVerify: runNoVerify,
		Enrich:     runEnrichFlag,
	}
	if len(runQueries) > 0 {
		opts.Queries = runQueries
	}

	terminal := NewTerminal()
	if !quiet() {
		opts.Progress = newProgressPrinter(terminal)
	}

	result, err := executeRun(ctx, cfg, logger, db, opts)
	terminal.ClearLine()
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if quiet() {
		return output.Output(outputFmt, result.Verdicts)
	}

	fmt.Println()
	printRunSummary(terminal, result, time.Since(start))
	printWarnings(result.Errors)

	fmt.Println()
	return output.Table(result.Verdicts)
}

// executeRun loads stored state, runs the pipeline and persists what it
// produced under one run record
func executeRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *database.DB, opts pipeline.RunOptions) (*pipeline.RunResult, error) {
	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer p.Release()

	opts.Existing, err = db.ListLeads(ctx, database.LeadListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	opts.Evidence, err = db.ListEvidence(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load evidence: %w", err)
	}

	run, err := startRun(ctx, db, database.RunFull)
	if err != nil {
		return nil, err
	}

	result, err := p.Run(ctx, opts)
	if err == nil {
		err = persistRun(ctx, db, run.ID, result)
	}

	if result != nil {
		if d := result.Discovery; d != nil {
			run.Queries += d.Queries
			run.Hits = d.Hits
			run.Added = d.Added
			run.Merged = d.Merged
		}
		if v := result.Verification; v != nil {
			run.Queries += v.Queries
			run.Verified = len(v.Verified)
			run.Evidence = len(v.Evidence)
		}
		if e := result.Enrichment; e != nil {
			run.Queries += e.Queries
		}
		run.Errors = len(result.Errors)
	}
	finishRun(ctx, db, run, err)

	return result, err
}

// persistRun stores touched leads, replaced evidence, the new verdicts and
// enrichment rows
func persistRun(ctx context.Context, db *database.DB, runID string, result *pipeline.RunResult) error {
	if err := db.SaveLeads(ctx, result.Discovery.Touched); err != nil {
		return fmt.Errorf("failed to save leads: %w", err)
	}
	if v := result.Verification; v != nil && len(v.Verified) > 0 {
		if err := db.ReplaceEvidence(ctx, runID, v.Verified, v.Evidence); err != nil {
			return fmt.Errorf("failed to save evidence: %w", err)
		}
	}
	if err := db.ReplaceVerdicts(ctx, result.Verdicts); err != nil {
		return fmt.Errorf("failed to save verdicts: %w", err)
	}
	if e := result.Enrichment; e != nil {
		if err := db.ReplaceEnrichments(ctx, e.Candidates, e.Rows); err != nil {
			return fmt.Errorf("failed to save enrichments: %w", err)
		}
	}
	return nil
}

func printRunSummary(terminal *Terminal, result *pipeline.RunResult, took time.Duration) {
	fmt.Printf("Run complete in %s:\n", took.Round(100*time.Millisecond))
	if d := result.Discovery; d != nil {
		fmt.Printf("  Discovery:            %d queries, %d hits, %d new, %d merged\n",
			d.Queries, d.Hits, d.Added, d.Merged)
	}
	if v := result.Verification; v != nil {
		if v.Message != "" {
			fmt.Printf("  Verification:         %s\n", v.Message)
		} else {
			fmt.Printf("  Verification:         %d candidates, %d evidence rows\n", v.Candidates, len(v.Evidence))
		}
	}
	if e := result.Enrichment; e != nil {
		fmt.Printf("  Enrichment:           %d candidates, %d rows\n", len(e.Candidates), len(e.Rows))
	}

	counts := make(map[consolidate.Grade]int)
	for _, v := range result.Verdicts {
		counts[v.Grade]++
	}
	parts := make([]string, 0, len(consolidate.Grades))
	for _, g := range consolidate.Grades {
		text := fmt.Sprintf("%d %s", counts[g], strings.ToLower(string(g)))
		parts = append(parts, terminal.Color(GradeColor(g), text))
	}
	fmt.Printf("  Verdicts:             %s\n", strings.Join(parts, ", "))
}
