package risk

import (
	"fmt"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/indicator"
)

// =============================================================================
// Risk levels - pure calculator
// =============================================================================

// Params configures the risk calculator
// ⭐ SSOT: only the stop multiplier is configurable; take-profit stays at 2 ATR
type Params struct {
	StopMultiplier float64 `yaml:"stop_multiplier"`
	TrailingWindow int     `yaml:"trailing_window"`
}

// DefaultParams returns a 2.0 ATR stop with a 14-bar trailing window
func DefaultParams() Params {
	return Params{StopMultiplier: 2.0, TrailingWindow: 14}
}

// Validate checks the multiplier and window are positive
func (p Params) Validate() error {
	if p.StopMultiplier <= 0 {
		return fmt.Errorf("stop_multiplier must be > 0, got %v", p.StopMultiplier)
	}
	if p.TrailingWindow <= 0 {
		return fmt.Errorf("trailing_window must be > 0, got %d", p.TrailingWindow)
	}
	return nil
}

// TakeProfitMultiplier is fixed and independent of StopMultiplier
const TakeProfitMultiplier = 2.0

// =============================================================================
// Compute
// =============================================================================

// Compute returns stop, trailing stop and take-profit per bar.
// Every level is undefined where ATR is undefined or not positive.
func Compute(bars []contracts.Bar, frame *contracts.IndicatorFrame, p Params) []contracts.RiskLevels {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	// partial windows: the first bars track the max seen so far
	highestClose := indicator.RollingMax(closes, p.TrailingWindow, true)

	out := make([]contracts.RiskLevels, len(bars))
	for i, c := range closes {
		out[i] = Levels(c, highestClose[i], frame.ATR[i], p.StopMultiplier)
	}
	return out
}

// Levels computes one bar. The trailing candidate is accepted only when it is
// above the static stop and below close, so it never retreats below the stop.
func Levels(close, highestClose, atr, stopMultiplier float64) contracts.RiskLevels {
	if !contracts.Defined(atr) || atr <= 0 {
		return contracts.RiskLevels{
			StopLoss:     contracts.Undefined,
			TrailingStop: contracts.Undefined,
			TakeProfit:   contracts.Undefined,
		}
	}

	stop := close - atr*stopMultiplier
	trailing := stop
	if candidate := highestClose - atr*stopMultiplier; candidate > stop && candidate < close {
		trailing = candidate
	}

	return contracts.RiskLevels{
		StopLoss:     stop,
		TrailingStop: trailing,
		TakeProfit:   close + atr*TakeProfitMultiplier,
	}
}
