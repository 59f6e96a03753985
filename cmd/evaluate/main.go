package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"

	"recipe-matcher/internal/core/evaluation"
	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/pkg/common"

	"github.com/spf13/cobra"
)

// options 命令列參數
type options struct {
	configDir          string
	fixtures           string
	minMatchPercentage float64
	topN               int
	noisy              bool
	seed               int64
	jsonOutput         bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the offline ingredient matching evaluation",
	Long: `Evaluate replays test cases against the recipe store and prints accuracy, precision, recall and F1.

Test cases are read from the fixtures file when it exists; otherwise they are generated
from the recipes and saved there for later runs.

Examples:
  evaluate
  evaluate --fixtures test_cases.json --min-match-percentage 35
  evaluate --noisy --seed 42 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(opts.configDir)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if cmd.Flags().Changed("fixtures") {
			cfg.Evaluation.FixturesPath = opts.fixtures
		}

		if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer common.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		svc, err := recipe.NewFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		matchCfg := svc.EvaluationDefaults()
		if cmd.Flags().Changed("min-match-percentage") {
			matchCfg.MinMatchPercentage = opts.minMatchPercentage
		}
		if cmd.Flags().Changed("top-n") {
			matchCfg.TopN = opts.topN
		}

		harness := svc.Harness(matchCfg)
		if opts.noisy {
			// 隨機案例不寫入固定案例檔
			rng := rand.New(rand.NewSource(opts.seed))
			harness = harness.WithFixtures("").WithGenerator(func(recipes []matching.Recipe) []evaluation.TestCase {
				return evaluation.GenerateNoisyTestCases(recipes, rng, evaluation.DefaultNoise, 0)
			})
		}

		report, err := harness.Run(ctx)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		if opts.jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return report.WriteText(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&opts.configDir, "config", "c", ".", "Directory containing config.yaml and .env")
	rootCmd.Flags().StringVarP(&opts.fixtures, "fixtures", "f", "", "Test case file (default: evaluation.fixtures_path)")
	rootCmd.Flags().Float64Var(&opts.minMatchPercentage, "min-match-percentage", matching.EvaluationMinMatchPercentage, "Minimum match percentage (exclusive)")
	rootCmd.Flags().IntVarP(&opts.topN, "top-n", "n", matching.DefaultTopN, "Number of recommendations per case")

	// 模擬真實輸入
	rootCmd.Flags().BoolVar(&opts.noisy, "noisy", false, "Generate noisy cases that drop 5-15% of ingredients and may add one unrelated one")
	rootCmd.Flags().Int64Var(&opts.seed, "seed", 1, "Random seed for --noisy")
	rootCmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the report as JSON")

	rootCmd.MarkFlagsMutuallyExclusive("noisy", "fixtures")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
