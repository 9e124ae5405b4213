package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show discovery and verdict statistics",
	Long: `Display aggregate statistics: leads discovered, candidates verified,
verdicts per grade and the share of the green list.

Examples:
  scout stats
  scout stats --runs=5   # Also list the last five runs
  scout stats -o json`,
	RunE: runStats,
}

var statsRuns int

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsRuns, "runs", 0, "Also list this many recent runs")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	stats, err := db.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsRuns <= 0 {
		return output.Output(outputFmt, stats)
	}

	runs, err := db.ListRuns(ctx, statsRuns)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if outputFmt == "json" {
		return output.JSON(struct {
			Stats any `json:"stats"`
			Runs  any `json:"runs"`
		}{stats, runs})
	}

	if err := output.Table(stats); err != nil {
		return err
	}
	fmt.Println()
	return output.Table(runs)
}
