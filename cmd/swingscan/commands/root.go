package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	universeFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swingscan",
	Short: "swingscan - Taiwan equity swing-trade scanner",
	Long: `swingscan scores a universe of Taiwan equities for swing entries.

Each instrument gets trend, momentum and relative-strength scores, a
five-level signal, a swing phase and ATR-based risk levels.

Usage:
  go run ./cmd/swingscan [command]

Examples:
  go run ./cmd/swingscan scan
  go run ./cmd/swingscan scan 2330 2317 --csv out.csv
  go run ./cmd/swingscan serve --with-scheduler
  go run ./cmd/swingscan universe fetch`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default $STRATEGY_FILE)")
	rootCmd.PersistentFlags().StringVar(&universeFile, "universe", "", "universe YAML file (default $UNIVERSE_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
