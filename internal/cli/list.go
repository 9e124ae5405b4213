package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List verdicts or discovered leads",
	Long: `List consolidated verdicts, or raw first-pass leads with --leads.

Examples:
  scout list                       # All verdicts in consolidation order
  scout list --green               # Great and Good only
  scout list --grade=Pending       # Candidates with no evidence yet
  scout list --leads --min-score=6 # Strong first-pass leads
  scout list --search=falcon       # Match name, organization or URL
  scout list -o json               # Output as JSON`,
	RunE: runList,
}

var (
	listGrade      string
	listGreen      bool
	listLeads      bool
	listMinScore   float64
	listSkipUnsure bool
	listLimit      int
	listSearch     string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listGrade, "grade", "", "Filter verdicts by grade (Great, Good, Pending, Reject)")
	listCmd.Flags().BoolVar(&listGreen, "green", false, "Only accepted verdicts (Great and Good)")
	listCmd.Flags().BoolVar(&listLeads, "leads", false, "List first-pass leads instead of verdicts")
	listCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "Minimum first-pass score (with --leads)")
	listCmd.Flags().BoolVar(&listSkipUnsure, "exclude-unverified", false, "Hide ambiguous names (with --leads)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of results")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Search verdicts by name, organization or URL")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if listLeads {
		opts := database.LeadListOptions{
			ExcludeUnsure: listSkipUnsure,
			Limit:         listLimit,
		}
		if listMinScore > 0 {
			opts.MinScore = &listMinScore
		}
		list, err := db.ListLeads(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to list leads: %w", err)
		}
		return output.Output(outputFmt, list)
	}

	if listSearch != "" {
		verdicts, err := db.SearchVerdicts(ctx, listSearch)
		if err != nil {
			return fmt.Errorf("failed to search verdicts: %w", err)
		}
		return output.Output(outputFmt, verdicts)
	}

	opts := database.VerdictListOptions{
		AcceptedOnly: listGreen,
		Limit:        listLimit,
	}
	if listGrade != "" {
		grade, err := consolidate.ParseGrade(listGrade)
		if err != nil {
			return err
		}
		opts.Grade = &grade
	}

	verdicts, err := db.ListVerdicts(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list verdicts: %w", err)
	}

	return output.Output(outputFmt, verdicts)
}
