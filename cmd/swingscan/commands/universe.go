package commands

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/swingscan/internal/external/twse"
	"github.com/wonny/swingscan/internal/universe"
	"github.com/wonny/swingscan/pkg/httputil"
	"github.com/wonny/swingscan/pkg/logger"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Inspect or rebuild instrument universes",
	Long: `Inspect the configured universe or scrape the TWSE ISIN listings.

Example:
  go run ./cmd/swingscan universe list
  go run ./cmd/swingscan universe fetch --market otc
  go run ./cmd/swingscan universe fetch --sector 半導體業 --out config/universe/semis.yaml`,
}

var (
	universeListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the configured universe",
		RunE:  runUniverseList,
	}

	universeFetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Scrape TWSE listed and OTC common stocks",
		RunE:  runUniverseFetch,
	}
)

var (
	fetchMarket string
	fetchSector string
	fetchOut    string
	fetchName   string
)

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeListCmd, universeFetchCmd)

	universeFetchCmd.Flags().StringVar(&fetchMarket, "market", "", "listed or otc (default both)")
	universeFetchCmd.Flags().StringVar(&fetchSector, "sector", "", "keep one industry only")
	universeFetchCmd.Flags().StringVar(&fetchOut, "out", "", "write a universe YAML file")
	universeFetchCmd.Flags().StringVar(&fetchName, "name", "twse", "universe name for --out")
}

func runUniverseList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	u, err := universe.Load(cfg.Scan.UniverseFile)
	if err != nil {
		return err
	}

	PrintHeader("Universe "+u.Name, [][2]string{
		{"File", cfg.Scan.UniverseFile},
		{"Count", fmt.Sprint(len(u.Instruments))},
	})
	printInstruments(u.Instruments)
	return nil
}

func runUniverseFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	client := twse.NewClient(httputil.New(log), log, cfg.TWSE.ListedURL, cfg.TWSE.OTCURL)
	all, err := client.FetchInstruments(context.Background())
	if err != nil {
		return err
	}

	kept := make([]universe.Instrument, 0, len(all))
	for _, inst := range all {
		if fetchMarket != "" && inst.Market != fetchMarket {
			continue
		}
		if fetchSector != "" && inst.Sector != fetchSector {
			continue
		}
		kept = append(kept, inst)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Symbol < kept[j].Symbol })

	if fetchOut == "" {
		printInstruments(kept)
		PrintSuccess(fmt.Sprintf("%d of %d instruments", len(kept), len(all)))
		return nil
	}

	data, err := yaml.Marshal(universe.Universe{Name: fetchName, Instruments: kept})
	if err != nil {
		return fmt.Errorf("encode universe: %w", err)
	}
	if err := os.WriteFile(fetchOut, data, 0o644); err != nil {
		return fmt.Errorf("write universe: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Wrote %d instruments to %s", len(kept), fetchOut))
	return nil
}

func printInstruments(instruments []universe.Instrument) {
	widths := []int{10, 14, 20, 6}
	PrintTableHeader([]string{"代號", "名稱", "產業", "市場"}, widths)
	for _, inst := range instruments {
		PrintTableRow([]string{inst.Symbol, inst.Name, inst.Sector, inst.Market}, widths)
	}
}
