package strategyconfig

import (
	"fmt"
	"math"

	"github.com/wonny/swingscan/internal/scoring"
)

// ValidationError is a fatal config problem
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a non-fatal recommendation
type Warning struct {
	Code    string
	Message string
}

// Validate checks required constraints
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Benchmark == "" {
		return ValidationError{"meta.benchmark", "required"}
	}

	if err := cfg.IndicatorParams().Validate(); err != nil {
		return ValidationError{"indicators", err.Error()}
	}

	if err := cfg.Scoring.Weights.Validate(); err != nil {
		return ValidationError{"scoring.weights", err.Error()}
	}
	if cfg.Scoring.VolMultiplier <= 0 {
		return ValidationError{"scoring.vol_multiplier", "must be > 0"}
	}
	if cfg.Scoring.MinScore < 0 || cfg.Scoring.MinScore > 100 {
		return ValidationError{"scoring.min_score", "must be in range [0, 100]"}
	}

	if err := cfg.RiskParams().Validate(); err != nil {
		return ValidationError{"risk", err.Error()}
	}

	if err := cfg.Filters.Validate(); err != nil {
		return ValidationError{"filters", err.Error()}
	}
	return nil
}

// Suggestions checks the weighting against recommended ranges (non-fatal)
func Suggestions(w scoring.Weights) []Warning {
	var warnings []Warning

	if w.Trend < 0.30 {
		warnings = append(warnings, Warning{
			Code:    "LOW_TREND_WEIGHT",
			Message: fmt.Sprintf("trend weight %.2f < 0.30: 趨勢權重偏低", w.Trend),
		})
	}
	if w.Momentum > 0.40 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_MOMENTUM_WEIGHT",
			Message: fmt.Sprintf("momentum weight %.2f > 0.40: 動能權重偏高", w.Momentum),
		})
	}
	if sum := w.Sum(); math.Abs(sum-1) > 1e-6 {
		warnings = append(warnings, Warning{
			Code:    "WEIGHT_SUM",
			Message: fmt.Sprintf("weights sum to %.2f, will be normalized to 1.00", sum),
		})
	}

	return warnings
}
