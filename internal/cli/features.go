package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/config"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/features"
	"github.com/tekoetch/investorscout/internal/model"
	"github.com/tekoetch/investorscout/internal/output"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Export the labeling sheet for the prediction model",
	Long: `Features scores every stored lead with both passes and writes one
binary column per fired signal, plus four label columns to fill in by hand.
Labels already imported with 'scout label' are carried over.

Examples:
  scout features --file=sheet.csv
  scout features --input=hits.csv > sheet.csv   # Name,Title,Snippet,URL columns`,
	RunE: runFeatures,
}

var labelCmd = &cobra.Command{
	Use:   "label <sheet.csv>",
	Short: "Import human labels from a filled-in labeling sheet",
	Long: `Label reads the LABEL_Identity, LABEL_Behavior, LABEL_Geo and
LABEL_Contact columns (1-10) of a labeling sheet and stores them.
Invalid rows are reported and skipped.

Examples:
  scout label sheet.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runLabel,
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score stored leads with the external prediction service",
	Long: `Predict sends the feature vector of every stored lead to the
prediction service configured in [model] and prints the predicted labels.

Examples:
  scout predict
  scout predict --input=hits.csv -o json`,
	RunE: runPredict,
}

var (
	featuresInput string
	featuresFile  string
	predictInput  string
)

func init() {
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(predictCmd)

	featuresCmd.Flags().StringVar(&featuresInput, "input", "", "Featurize a CSV of raw hits instead of stored leads")
	featuresCmd.Flags().StringVarP(&featuresFile, "file", "f", "", "Write to file instead of stdout")
	predictCmd.Flags().StringVar(&predictInput, "input", "", "Predict a CSV of raw hits instead of stored leads")
}

// featureRows builds labeling-sheet rows from a hits CSV or from the
// stored leads, with stored labels applied
func featureRows(ctx context.Context, cfg *config.Config, db *database.DB, input string) ([]features.Row, error) {
	var inputs []features.Input
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		if inputs, err = features.ReadInputs(f); err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
	} else {
		list, err := db.ListLeads(ctx, database.LeadListOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to load leads: %w", err)
		}
		for _, l := range list {
			inputs = append(inputs, features.Input{Name: l.Name, Title: l.Title, Snippet: l.Snippet, URL: l.URL})
		}
	}

	first, second := newScorers(cfg)
	rows := features.NewBuilder(first, second).Build(inputs)

	labels, err := db.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	for i := range rows {
		if l, ok := labels[strings.ToLower(rows[i].Name)]; ok {
			rows[i].Labels = l
		}
	}
	return rows, nil
}

func runFeatures(cmd *cobra.Command, args []string) error {
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

	rows, err := featureRows(ctx, cfg, db, featuresInput)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if featuresFile != "" {
		f, err := os.Create(featuresFile)
		if err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := features.WriteSheet(w, rows); err != nil {
		return err
	}
	if featuresFile != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d rows and %d feature columns to %s\n",
			len(rows), len(features.Columns(rows)), featuresFile)
	}
	return nil
}

func runLabel(cmd *cobra.Command, args []string) error {
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

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open sheet: %w", err)
	}
	defer f.Close()

	labels, readErr := features.ReadLabels(f)
	if len(labels) == 0 && readErr != nil {
		return fmt.Errorf("failed to read labels: %w", readErr)
	}

	if err := db.SaveLabels(ctx, labels); err != nil {
		return fmt.Errorf("failed to save labels: %w", err)
	}

	fmt.Printf("Imported %d labels\n", len(labels))
	if readErr != nil {
		fmt.Println()
		fmt.Println("Skipped rows:")
		for _, line := range strings.Split(readErr.Error(), "\n") {
			fmt.Printf("  - %s\n", line)
		}
	}
	return nil
}

func runPredict(cmd *cobra.Command, args []string) error {
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

	client := model.New(cfg.Model.URL, cfg.Model.Timeout())
	if err := client.EnsureRunning(ctx); err != nil {
		return err
	}

	rows, err := featureRows(ctx, cfg, db, predictInput)
	if err != nil {
		return err
	}

	terminal := NewTerminal()
	var progress model.ProgressCallback
	if !quiet() && terminal.IsTerminal {
		var mu sync.Mutex
		progress = func(current, total int) {
			mu.Lock()
			defer mu.Unlock()
			terminal.Status(terminal.Color(ColorPurple, fmt.Sprintf("Predicting: %d/%d", current, total)))
		}
	}

	results := client.PredictRows(ctx, rows, progress)
	terminal.ClearLine()

	predictions := make([]model.Prediction, 0, len(results))
	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rows[r.Index].Name, r.Error))
			continue
		}
		predictions = append(predictions, *r.Prediction)
	}

	if err := output.Output(outputFmt, predictions); err != nil {
		return err
	}
	if !quiet() {
		printWarnings(errs)
	}
	return nil
}
