package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/output"
	"github.com/tekoetch/investorscout/internal/pipeline"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Search for second-pass evidence on discovered leads",
	Long: `Verify re-searches each lead that scored at least [verification]
min_score with targeted queries and stores the scored evidence.

By default only leads without any evidence are verified. Re-verifying a
candidate replaces its earlier evidence.

Examples:
  scout verify                  # Leads not verified yet
  scout verify --all            # Every eligible lead
  scout verify --name "Jane Doe"`,
	RunE: runVerify,
}

var (
	verifyAll  bool
	verifyName string
)

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "Re-verify every eligible lead")
	verifyCmd.Flags().StringVar(&verifyName, "name", "", "Verify a single candidate")
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	opts := database.LeadListOptions{}
	if verifyName != "" {
		opts.Name = &verifyName
	}
	all, err := db.ListLeads(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to load leads: %w", err)
	}
	if verifyName != "" && len(all) == 0 {
		return fmt.Errorf("candidate not found: %s", verifyName)
	}

	candidates := all
	if !verifyAll && verifyName == "" {
		candidates, err = unverifiedLeads(cmd, db, all)
		if err != nil {
			return err
		}
	}

	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.Release()

	run, err := startRun(ctx, db, database.RunVerify)
	if err != nil {
		return err
	}

	var progress pipeline.ProgressCallback
	terminal := NewTerminal()
	if !quiet() {
		progress = newProgressPrinter(terminal)
	}

	result, err := p.Verify(ctx, candidates, progress)
	terminal.ClearLine()
	if err == nil && len(result.Verified) > 0 {
		if err = db.ReplaceEvidence(ctx, run.ID, result.Verified, result.Evidence); err != nil {
			err = fmt.Errorf("failed to save evidence: %w", err)
		}
	}

	if result != nil {
		run.Queries = result.Queries
		run.Verified = len(result.Verified)
		run.Evidence = len(result.Evidence)
		run.Errors = len(result.Errors)
	}
	finishRun(ctx, db, run, err)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if quiet() {
		return output.Output(outputFmt, result.Evidence)
	}

	if result.Message != "" {
		fmt.Println(result.Message)
		return nil
	}

	fmt.Println()
	fmt.Printf("Verification complete in %s:\n", elapsed(start))
	fmt.Printf("  Candidates:           %d\n", result.Candidates)
	fmt.Printf("  Queries:              %d\n", result.Queries)
	fmt.Printf("  Evidence rows:        %d\n", len(result.Evidence))
	printWarnings(result.Errors)

	fmt.Println()
	if err := output.Table(result.Evidence); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Run 'scout consolidate' to grade the candidates.")
	return nil
}

// unverifiedLeads drops leads whose candidate already has evidence
func unverifiedLeads(cmd *cobra.Command, db *database.DB, all []leads.Lead) ([]leads.Lead, error) {
	evidence, err := db.ListEvidence(cmd.Context(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to load evidence: %w", err)
	}

	seen := make(map[string]bool, len(evidence))
	for _, e := range evidence {
		seen[strings.ToLower(e.Name)] = true
	}

	var out []leads.Lead
	for _, l := range all {
		if !seen[strings.ToLower(l.Name)] {
			out = append(out, l)
		}
	}
	return out, nil
}
