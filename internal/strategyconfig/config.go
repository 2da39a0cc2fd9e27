// Package strategyconfig loads the swing strategy YAML file.
// ⭐ SSOT: every scoring threshold and window comes from this file
package strategyconfig

import (
	"github.com/wonny/swingscan/internal/indicator"
	"github.com/wonny/swingscan/internal/risk"
	"github.com/wonny/swingscan/internal/scoring"
	"github.com/wonny/swingscan/internal/universe"
)

// DefaultMinScore is the reporting threshold for AboveMinScore
const DefaultMinScore = 70.0

// Config is the full swing strategy
type Config struct {
	Meta       Meta                  `yaml:"meta" json:"meta"`
	Indicators IndicatorSection      `yaml:"indicators" json:"indicators"`
	Scoring    ScoringSection        `yaml:"scoring" json:"scoring"`
	Risk       RiskSection           `yaml:"risk" json:"risk"`
	Filters    universe.FilterConfig `yaml:"filters" json:"filters"`
}

// Meta identifies the strategy
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Benchmark  string `yaml:"benchmark" json:"benchmark"`
}

// IndicatorSection holds indicator windows
type IndicatorSection struct {
	ShortMA    int `yaml:"short_ma" json:"short_ma"`
	LongMA     int `yaml:"long_ma" json:"long_ma"`
	VolumeMA   int `yaml:"volume_ma" json:"volume_ma"`
	ATRPeriod  int `yaml:"atr_period" json:"atr_period"`
	RSIPeriod  int `yaml:"rsi_period" json:"rsi_period"`
	HighWindow int `yaml:"high_window" json:"high_window"`
}

// ScoringSection holds component weights and thresholds
type ScoringSection struct {
	Weights       scoring.Weights `yaml:"weights" json:"weights"`
	VolMultiplier float64         `yaml:"vol_multiplier" json:"vol_multiplier"`
	MinScore      float64         `yaml:"min_score" json:"min_score"`
}

// RiskSection holds stop settings
type RiskSection struct {
	StopMultiplier float64 `yaml:"stop_multiplier" json:"stop_multiplier"`
	TrailingWindow int     `yaml:"trailing_window" json:"trailing_window"`
}

// Default returns the built-in strategy used when no file is configured
func Default() *Config {
	ip := indicator.DefaultParams()
	sp := scoring.DefaultParams()
	rp := risk.DefaultParams()
	return &Config{
		Meta: Meta{StrategyID: "swing_v1", Version: "1", Benchmark: "^TWII"},
		Indicators: IndicatorSection{
			ShortMA:    ip.ShortMA,
			LongMA:     ip.LongMA,
			VolumeMA:   ip.VolumeMA,
			ATRPeriod:  ip.ATRPeriod,
			RSIPeriod:  ip.RSIPeriod,
			HighWindow: ip.HighWindow,
		},
		Scoring: ScoringSection{
			Weights:       sp.Weights,
			VolMultiplier: sp.VolMultiplier,
			MinScore:      DefaultMinScore,
		},
		Risk:    RiskSection{StopMultiplier: rp.StopMultiplier, TrailingWindow: rp.TrailingWindow},
		Filters: universe.DefaultFilterConfig(),
	}
}

// IndicatorParams converts the section for the indicator engine
func (c *Config) IndicatorParams() indicator.Params {
	s := c.Indicators
	return indicator.Params{
		ShortMA:    s.ShortMA,
		LongMA:     s.LongMA,
		VolumeMA:   s.VolumeMA,
		ATRPeriod:  s.ATRPeriod,
		RSIPeriod:  s.RSIPeriod,
		HighWindow: s.HighWindow,
	}
}

// ScoringParams converts the section for the scorer. Weights are
// normalized to sum to 1.
func (c *Config) ScoringParams() scoring.Params {
	return scoring.Params{Weights: c.Scoring.Weights.Normalize(), VolMultiplier: c.Scoring.VolMultiplier}
}

// RiskParams converts the section for the risk calculator
func (c *Config) RiskParams() risk.Params {
	return risk.Params{StopMultiplier: c.Risk.StopMultiplier, TrailingWindow: c.Risk.TrailingWindow}
}
