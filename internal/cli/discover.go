package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/output"
	"github.com/tekoetch/investorscout/internal/pipeline"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run first-pass discovery queries",
	Long: `Discover runs the discovery queries through the search providers,
scores every hit and stores new or merged leads.

Examples:
  scout discover                                        # Configured queries
  scout discover -q '"family office" Dubai site:linkedin.com/in'
  scout discover --max-results=20 -o json`,
	RunE: runDiscover,
}

var (
	discoverQueries    []string
	discoverMaxResults int
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringArrayVarP(&discoverQueries, "query", "q", nil, "Discovery query (repeatable, default: [discovery] queries)")
	discoverCmd.Flags().IntVar(&discoverMaxResults, "max-results", 0, "Results per query (default: [discovery] max_results)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if discoverMaxResults > 0 {
		cfg.Discovery.MaxResults = discoverMaxResults
	}
	queries := cfg.Discovery.Queries
	if len(discoverQueries) > 0 {
		queries = discoverQueries
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.Release()

	existing, err := db.ListLeads(ctx, database.LeadListOptions{})
	if err != nil {
		return fmt.Errorf("failed to load leads: %w", err)
	}

	run, err := startRun(ctx, db, database.RunDiscover)
	if err != nil {
		return err
	}

	var progress pipeline.ProgressCallback
	terminal := NewTerminal()
	if !quiet() {
		fmt.Printf("Running %d discovery queries...\n", len(queries))
		progress = newProgressPrinter(terminal)
	}

	result, err := p.Discover(ctx, queries, existing, progress)
	terminal.ClearLine()
	if err == nil {
		err = db.SaveLeads(ctx, result.Touched)
		if err != nil {
			err = fmt.Errorf("failed to save leads: %w", err)
		}
	}

	if result != nil {
		run.Queries = result.Queries
		run.Hits = result.Hits
		run.Added = result.Added
		run.Merged = result.Merged
		run.Errors = len(result.Errors)
	}
	finishRun(ctx, db, run, err)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if quiet() {
		return output.Output(outputFmt, result.Touched)
	}

	fmt.Println()
	fmt.Printf("Discovery complete in %s:\n", elapsed(start))
	fmt.Printf("  Queries:              %d\n", result.Queries)
	fmt.Printf("  Hits:                 %d\n", result.Hits)
	fmt.Printf("  New leads:            %d\n", result.Added)
	fmt.Printf("  Merged sightings:     %d\n", result.Merged)
	fmt.Printf("  Near duplicates:      %d\n", result.Skipped)
	if result.Blocked+result.Invalid > 0 {
		fmt.Printf("  Dropped:              %d (%d blocked, %d unusable)\n",
			result.Blocked+result.Invalid, result.Blocked, result.Invalid)
	}
	fmt.Printf("  Leads on file:        %d\n", len(result.Leads))
	printWarnings(result.Errors)

	if len(result.Touched) > 0 {
		fmt.Println()
		if err := output.Table(result.Touched); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("Run 'scout verify' to search for second-pass evidence.")
	}

	return nil
}
