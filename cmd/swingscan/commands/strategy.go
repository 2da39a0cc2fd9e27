package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/strategyconfig"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy [file]",
	Short: "Validate a strategy file and print weight suggestions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStrategy,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
}

func runStrategy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Scan.StrategyFile
	if len(args) == 1 {
		path = args[0]
	}

	strat, _, err := strategyconfig.Load(path)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	hash, err := strategyconfig.Hash(strat)
	if err != nil {
		return err
	}

	w := strat.Scoring.Weights
	PrintHeader("Strategy "+strat.Meta.StrategyID, [][2]string{
		{"File", path},
		{"Version", strat.Meta.Version},
		{"Benchmark", strat.Meta.Benchmark},
		{"Hash", hash[:12]},
	})
	PrintKeyValue("trend", fmt.Sprintf("%.2f", w.Trend), 18)
	PrintKeyValue("momentum", fmt.Sprintf("%.2f", w.Momentum), 18)
	PrintKeyValue("relative_strength", fmt.Sprintf("%.2f", w.RelativeStrength), 18)
	PrintKeyValue("institutional", fmt.Sprintf("%.2f", w.Institutional), 18)

	warnings := strategyconfig.Suggestions(w)
	if len(warnings) == 0 {
		PrintSuccess("Strategy is valid")
		return nil
	}
	for _, warn := range warnings {
		PrintWarning(warn.Code + ": " + warn.Message)
	}
	return nil
}
