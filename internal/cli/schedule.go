package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/pipeline"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule",
	Long: `Schedule stays in the foreground and runs discovery, verification
and consolidation on the [schedule] cron expression until interrupted.
New and merged leads are verified unless [schedule] verify is false, in
which case verdicts are rebuilt from the evidence already stored.

Examples:
  scout schedule                      # Use [schedule] cron
  scout schedule --cron="0 */6 * * *" # Every six hours
  scout schedule --enrich`,
	RunE: runSchedule,
}

var (
	scheduleCron      string
	scheduleEnrich    bool
	scheduleVerifyAll bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression (default: [schedule] cron)")
	scheduleCmd.Flags().BoolVar(&scheduleEnrich, "enrich", false, "Run the enrichment pass after each run")
	scheduleCmd.Flags().BoolVar(&scheduleVerifyAll, "verify-all", false, "Re-verify every stored lead on each run")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	spec := cfg.Schedule.Cron
	if scheduleCron != "" {
		spec = scheduleCron
	}
	if spec == "" {
		return fmt.Errorf("no schedule: set [schedule] cron or pass --cron")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func() {
		opts := pipeline.RunOptions{
			Queries:    cfg.Discovery.Queries,
			VerifyAll:  scheduleVerifyAll,
			SkipVerify: !cfg.Schedule.Verify,
			Enrich:     scheduleEnrich,
		}

		logger.InfoContext(ctx, "scheduled run starting", "queries", len(opts.Queries))
		result, err := executeRun(ctx, cfg, logger, db, opts)
		if err != nil {
			logger.ErrorContext(ctx, "scheduled run failed", "error", err)
			return
		}

		accepted := 0
		for _, v := range result.Verdicts {
			if v.Grade.Accepted() {
				accepted++
			}
		}
		logger.InfoContext(ctx, "scheduled run complete",
			"added", result.Discovery.Added,
			"merged", result.Discovery.Merged,
			"evidence", len(result.Verification.Evidence),
			"verdicts", len(result.Verdicts),
			"green", accepted,
			"warnings", len(result.Errors),
		)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	id, err := c.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	c.Start()
	fmt.Printf("Scheduler started (%s), next run at %s\n", spec, c.Entry(id).Next.Format("Jan 02 15:04"))
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	fmt.Println("Scheduler stopped")
	return nil
}
