package universe

import (
	"context"
	"fmt"
	"math"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/indicator"
)

// LiquidityWindow is the averaging window for the liquidity floor
const LiquidityWindow = 20

// DefaultMinAvgVolume is 1,000 lots (1,000,000 shares)
const DefaultMinAvgVolume = 1_000_000

// FilterConfig holds pre-scoring filter settings
type FilterConfig struct {
	LiquidityEnabled    bool     `yaml:"liquidity_enabled" json:"liquidity_enabled"`
	MinAvgVolume        float64  `yaml:"min_avg_volume" json:"min_avg_volume"`
	FundamentalsEnabled bool     `yaml:"fundamentals_enabled" json:"fundamentals_enabled"`
	ExcludeETF          bool     `yaml:"exclude_etf" json:"exclude_etf"`
	ExcludeSectors      []string `yaml:"exclude_sectors,omitempty" json:"exclude_sectors,omitempty"`
}

// DefaultFilterConfig matches the scanner UI defaults
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		LiquidityEnabled:    true,
		MinAvgVolume:        DefaultMinAvgVolume,
		FundamentalsEnabled: true,
	}
}

// Validate checks filter settings
func (c FilterConfig) Validate() error {
	if c.MinAvgVolume < 0 || math.IsNaN(c.MinAvgVolume) {
		return fmt.Errorf("min_avg_volume must be >= 0")
	}
	return nil
}

// Filter applies the exclusion checks before scoring
type Filter struct {
	cfg      FilterConfig
	fund     contracts.FundamentalsProvider
	excluded map[string]bool
}

// NewFilter builds a filter. fund may be nil, which disables the
// fundamentals check.
func NewFilter(cfg FilterConfig, fund contracts.FundamentalsProvider) *Filter {
	excluded := make(map[string]bool, len(cfg.ExcludeSectors))
	for _, s := range cfg.ExcludeSectors {
		excluded[s] = true
	}
	return &Filter{cfg: cfg, fund: fund, excluded: excluded}
}

// Config returns the active settings
func (f *Filter) Config() FilterConfig {
	return f.cfg
}

// Static checks that need no price data.
// Returns the exclusion reason, or "" when the instrument passes.
func (f *Filter) Static(inst Instrument) string {
	if f.cfg.ExcludeETF && IsETF(inst.Symbol) {
		return "etf excluded"
	}
	if inst.Sector != "" && f.excluded[inst.Sector] {
		return fmt.Sprintf("sector excluded: %s", inst.Sector)
	}
	return ""
}

// Liquidity checks the 20-day average volume of the latest bar.
// Returns "" when the filter is off or the floor is met.
func (f *Filter) Liquidity(series *contracts.BarSeries) string {
	if !f.cfg.LiquidityEnabled {
		return ""
	}
	avg := AverageVolume(series, LiquidityWindow)
	if !contracts.Defined(avg) || avg < f.cfg.MinAvgVolume {
		return contracts.ReasonInsufficientLiquidity
	}
	return ""
}

// Fundamentals runs the health check. Provider errors and unavailable data
// pass the instrument; the returned note is logged by the caller.
func (f *Filter) Fundamentals(ctx context.Context, symbol string) (reason string, note string) {
	if !f.cfg.FundamentalsEnabled || f.fund == nil {
		return "", ""
	}
	h, err := f.fund.CheckFundamentals(ctx, symbol)
	if err != nil {
		return "", fmt.Sprintf("fundamentals unavailable: %v", err)
	}
	if !h.Available {
		return "", "fundamentals unavailable"
	}
	if !h.Healthy {
		return contracts.ReasonFundamentalsPrefix + h.Reason, ""
	}
	return "", ""
}

// AverageVolume is the trailing mean volume at the latest bar
func AverageVolume(series *contracts.BarSeries, window int) float64 {
	if series.Len() < window {
		return contracts.Undefined
	}
	vols := make([]float64, series.Len())
	for i, b := range series.Bars {
		vols[i] = b.Volume
	}
	ma := indicator.SMA(vols, window)
	return ma[len(ma)-1]
}
