package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/output"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Grade every candidate from stored leads and evidence",
	Long: `Consolidate groups the stored leads by name, combines first-pass
scores with second-pass evidence and stores one verdict per candidate.
It makes no search requests.

Examples:
  scout consolidate
  scout consolidate --formula=sum
  scout consolidate -o csv > verdicts.csv`,
	RunE: runConsolidate,
}

var consolidateFormula string

func init() {
	rootCmd.AddCommand(consolidateCmd)
	consolidateCmd.Flags().StringVar(&consolidateFormula, "formula", "", "Final score formula: average or sum (default: [verdict] formula)")
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if consolidateFormula != "" {
		f := consolidate.Formula(consolidateFormula)
		if !f.Valid() {
			return fmt.Errorf("invalid formula: %s (use average or sum)", consolidateFormula)
		}
		cfg.Verdict.Formula = f
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	all, err := db.ListLeads(ctx, database.LeadListOptions{})
	if err != nil {
		return fmt.Errorf("failed to load leads: %w", err)
	}
	evidence, err := db.ListEvidence(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load evidence: %w", err)
	}

	run, err := startRun(ctx, db, database.RunConsolidate)
	if err != nil {
		return err
	}

	verdicts := newConsolidator(cfg).Consolidate(all, evidence)
	err = db.ReplaceVerdicts(ctx, verdicts)
	if err != nil {
		err = fmt.Errorf("failed to save verdicts: %w", err)
	}
	run.Verified = len(verdicts)
	run.Evidence = len(evidence)
	finishRun(ctx, db, run, err)
	if err != nil {
		return err
	}

	return output.Output(outputFmt, verdicts)
}
