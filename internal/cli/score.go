package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/config"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/output"
	"github.com/tekoetch/investorscout/internal/verify"
)

var scoreCmd = &cobra.Command{
	Use:   "score <text>",
	Short: "Score arbitrary text with both passes",
	Long: `Score runs a title+snippet through the first-pass scorer and, with
--name, through the second-pass scorer. No search requests are made and
nothing is stored.

--weights loads alternative first-pass weights from a TOML file with the
same keys as the [scoring] section; missing keys keep their configured
value. Both scores are printed so weight changes can be compared.

Examples:
  scout score "Jane Doe - Angel Investor | Dubai, UAE"
  scout score "..." --url=https://ae.linkedin.com/in/jane --name="Jane Doe"
  scout score "..." --weights=experiment.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var (
	scoreURL     string
	scoreName    string
	scoreWeights string
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreURL, "url", "", "URL the text was found at")
	scoreCmd.Flags().StringVar(&scoreName, "name", "", "Candidate name for the second pass")
	scoreCmd.Flags().StringVar(&scoreWeights, "weights", "", "TOML file with alternative first-pass weights")
}

// ScoreReport is the playground result
type ScoreReport struct {
	FirstPass   firstpass.Result  `json:"first_pass"`
	Alternative *firstpass.Result `json:"alternative,omitempty"`
	SecondPass  *verify.Outcome   `json:"second_pass,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	text := args[0]
	first, second := newScorers(cfg)
	report := ScoreReport{FirstPass: first.Score(text, "", scoreURL)}

	if scoreWeights != "" {
		weights, err := loadWeights(scoreWeights, cfg.Scoring)
		if err != nil {
			return err
		}
		alt := firstpass.New(weights, cfg.Taxonomy(), cfg.Geo()).Score(text, "", scoreURL)
		report.Alternative = &alt
	}

	if scoreName != "" {
		out := second.Score(text, scoreURL, verify.NewState(scoreName, nil))
		report.SecondPass = &out
	}

	if outputFmt == "json" {
		return output.JSON(report)
	}

	printFirstPass("First pass", report.FirstPass)
	if report.Alternative != nil {
		fmt.Println()
		printFirstPass("First pass ("+scoreWeights+")", *report.Alternative)
		fmt.Printf("  Delta:        %+.2f\n", report.Alternative.Score-report.FirstPass.Score)
	}
	if sp := report.SecondPass; sp != nil {
		fmt.Println()
		fmt.Printf("Second pass (%s)\n", scoreName)
		fmt.Printf("  Score:        %.2f\n", sp.Score)
		fmt.Printf("  Identity:     %s\n", output.YesNo(sp.IdentityConfirmed))
		if sp.Rejected {
			fmt.Println("  Rejected:     yes")
		}
		for _, b := range sp.Breakdown {
			fmt.Printf("  + %s\n", b)
		}
	}
	return nil
}

// loadWeights overlays a TOML weights file on base
func loadWeights(path string, base firstpass.Weights) (firstpass.Weights, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return base, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return base, fmt.Errorf("failed to read weights: %w", err)
	}

	if strings.Contains(string(data), "[scoring]") {
		wrapped := struct {
			Scoring firstpass.Weights `toml:"scoring"`
		}{Scoring: base}
		if err := toml.Unmarshal(data, &wrapped); err != nil {
			return base, fmt.Errorf("failed to parse weights: %w", err)
		}
		return wrapped.Scoring, nil
	}

	weights := base
	if err := toml.Unmarshal(data, &weights); err != nil {
		return base, fmt.Errorf("failed to parse weights: %w", err)
	}
	return weights, nil
}

func printFirstPass(title string, r firstpass.Result) {
	fmt.Println(title)
	fmt.Printf("  Score:        %.2f\n", r.Score)
	fmt.Printf("  Confidence:   %s\n", r.Confidence)
	if r.Organization != "" {
		fmt.Printf("  Organization: %s\n", r.Organization)
	}
	for _, s := range r.Signals {
		fmt.Printf("  + %s\n", s)
	}
}
