package scanner

import (
	"fmt"
	"time"

	"github.com/wonny/swingscan/internal/indicator"
	"github.com/wonny/swingscan/internal/risk"
	"github.com/wonny/swingscan/internal/scoring"
	"github.com/wonny/swingscan/internal/strategyconfig"
	"github.com/wonny/swingscan/internal/universe"
)

// DefaultPullbackWatchPct marks rows this far below their 60-day high
const DefaultPullbackWatchPct = 20.0

// Options configures one scan
type Options struct {
	Indicator indicator.Params
	Scoring   scoring.Params
	Risk      risk.Params
	Filters   universe.FilterConfig

	MinScore         float64
	PullbackWatchPct float64

	Workers       int
	LookbackYears int
	FetchTimeout  time.Duration
	Benchmark     string
	StrategyHash  string
}

// DefaultOptions mirrors the built-in strategy
func DefaultOptions() Options {
	opts, _ := FromStrategy(strategyconfig.Default())
	return opts
}

// FromStrategy builds options from a strategy file. Weights are
// normalized; runtime fields take their defaults.
func FromStrategy(cfg *strategyconfig.Config) (Options, error) {
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return Options{}, fmt.Errorf("hash strategy: %w", err)
	}
	return Options{
		Indicator:        cfg.IndicatorParams(),
		Scoring:          cfg.ScoringParams(),
		Risk:             cfg.RiskParams(),
		Filters:          cfg.Filters,
		MinScore:         cfg.Scoring.MinScore,
		PullbackWatchPct: DefaultPullbackWatchPct,
		Workers:          4,
		LookbackYears:    2,
		FetchTimeout:     15 * time.Second,
		Benchmark:        cfg.Meta.Benchmark,
		StrategyHash:     hash,
	}, nil
}

// Validate checks the options before a scan starts
func (o Options) Validate() error {
	if err := o.Indicator.Validate(); err != nil {
		return fmt.Errorf("indicator params: %w", err)
	}
	if err := o.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if o.Scoring.VolMultiplier <= 0 {
		return fmt.Errorf("vol multiplier must be > 0")
	}
	if err := o.Risk.Validate(); err != nil {
		return fmt.Errorf("risk params: %w", err)
	}
	if err := o.Filters.Validate(); err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	if o.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if o.LookbackYears <= 0 {
		return fmt.Errorf("lookback years must be > 0")
	}
	if o.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be > 0")
	}
	return nil
}
