package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/export"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [symbols...]",
	Short: "Run one scan and print the ranking",
	Long: `Scan the configured universe, or only the given symbols, and print
the ranked table. Bare codes such as 2330 are read as listed (.TW).

Ctrl+C stops the scan; finished rows are still printed and stored.

Example:
  go run ./cmd/swingscan scan
  go run ./cmd/swingscan scan 2330 6488.TWO --top 5
  go run ./cmd/swingscan scan --csv swing.csv
  go run ./cmd/swingscan scan --json > report.json`,
	RunE: runScan,
}

var (
	scanTop      int
	scanAll      bool
	scanCSV      string
	scanJSON     bool
	scanQuiet    bool
	scanWorkers  int
	scanLookback int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanTop, "top", 10, "number of buy-side picks to print")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "print every row, not only buy-side picks")
	scanCmd.Flags().StringVar(&scanCSV, "csv", "", "write all rows to this CSV file")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the report as JSON")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "no progress lines")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "override SCAN_WORKERS")
	scanCmd.Flags().IntVar(&scanLookback, "lookback", 0, "override SCAN_LOOKBACK_YEARS")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	human := !scanJSON
	if human {
		symbols := "(universe) " + a.universe.Name
		if len(args) > 0 {
			symbols = strings.Join(args, ", ")
		}
		PrintHeader("Swing Scan", [][2]string{
			{"Strategy", a.strategy.Meta.StrategyID + " v" + a.strategy.Meta.Version},
			{"Symbols", symbols},
			{"Min score", fmt.Sprintf("%.0f", a.strategy.Scoring.MinScore)},
		})
	}

	var progress contracts.ProgressFunc
	if human && !scanQuiet {
		progress = func(done, total int, symbol string) {
			PrintProgress("Scan", symbol, done, total)
		}
	}

	report, scanErr := a.service.Run(ctx, args, progress)
	if report == nil {
		return scanErr
	}
	if errors.Is(scanErr, context.Canceled) && human {
		PrintWarning(fmt.Sprintf("Scan interrupted, %d rows finished", len(report.Results)))
	}

	if scanCSV != "" {
		if err := writeCSVFile(scanCSV, report.Results); err != nil {
			return err
		}
	}

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println()
	if scanAll {
		PrintResults(report.Results)
	} else {
		top := report.Top(scanTop)
		if len(top) == 0 {
			PrintInfo("No buy-side signals today")
		} else {
			PrintResults(top)
		}
	}
	PrintSummary(report)
	if scanCSV != "" {
		PrintSuccess("CSV written to " + scanCSV)
	}
	PrintSuccess("Scan " + report.ID + " stored")

	return scanErr
}

func writeCSVFile(path string, rows []contracts.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := export.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
