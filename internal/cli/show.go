package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show everything stored about a candidate",
	Long: `Show the verdict, first-pass sightings, second-pass evidence and
enrichment rows of one candidate, with the matched keywords in context.

The name is matched case-insensitively; if there is no exact match the
first verdict whose name, company or URL contains it is shown.

Examples:
  scout show "Jane Doe"
  scout show falcon -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	identifier := args[0]

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := output.LoadCandidate(ctx, db, identifier, cfg.Taxonomy())
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("candidate not found: %s", identifier)
	}

	if outputFmt == "json" {
		return output.JSON(c)
	}
	return output.Table(c)
}
