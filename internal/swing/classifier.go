// Package swing labels each bar with a swing-trading phase using
// multi-day persistence checks.
package swing

import (
	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/indicator"
	"github.com/wonny/swingscan/internal/scoring"
)

// Persistence thresholds
const (
	persistWindow    = 10
	trendPersistMin  = 7
	maStabilityMin   = 8
	priceAboveMin    = 7
	confirmWindow    = 5
	goldenCrossMin   = 3
	volumeSustainMin = 3
	pullbackWindow   = 5
	pullbackMin      = 0.03
)

// Checks are the persistence conditions evaluated at one bar
type Checks struct {
	Foundation       bool
	TrendPersistence bool // foundation on ≥7 of last 10
	MAStability      bool // short > long on ≥8 of last 10
	GoldenConfirmed  bool // golden cross on ≥3 of last 5
	PriceAboveStable bool // close > short on ≥7 of last 10
	VolumeSustained  bool // volume surge on ≥3 of last 5
	RecentPullback   bool // >3% below the 5-bar max close
	NearSupport      bool
	TrendStrength10  float64
	TrendStrength20  float64
}

// Valid is the gate every labelled phase requires
func (c Checks) Valid() bool {
	return c.Foundation && c.TrendPersistence && c.MAStability && c.PriceAboveStable
}

// Evaluate computes the checks for every bar
func Evaluate(bars []contracts.Bar, frame *contracts.IndicatorFrame, volMultiplier float64) []Checks {
	n := len(bars)
	closes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
	}
	maxClose5 := indicator.RollingMax(closes, pullbackWindow, false)

	foundation := newCounter(persistWindow)
	maStable := newCounter(persistWindow)
	priceAbove := newCounter(persistWindow)
	golden := newCounter(confirmWindow)
	volume := newCounter(confirmWindow)

	out := make([]Checks, n)
	for i, b := range bars {
		shortMA, longMA := frame.ShortMA[i], frame.LongMA[i]
		f := scoring.TrendFoundation(b.Close, shortMA, longMA)

		foundation.push(f)
		maStable.push(contracts.Defined(shortMA) && contracts.Defined(longMA) && shortMA > longMA)
		priceAbove.push(contracts.Defined(shortMA) && b.Close > shortMA)
		golden.push(scoring.GoldenCross(frame.MA5[i], shortMA))
		volume.push(scoring.VolumeSurge(b.Volume, frame.VolMA[i], volMultiplier))

		c := Checks{
			Foundation:       f,
			TrendPersistence: foundation.atLeast(trendPersistMin),
			MAStability:      maStable.atLeast(maStabilityMin),
			PriceAboveStable: priceAbove.atLeast(priceAboveMin),
			GoldenConfirmed:  golden.atLeast(goldenCrossMin),
			VolumeSustained:  volume.atLeast(volumeSustainMin),
			NearSupport:      scoring.NearSupport(b.Close, shortMA),
			TrendStrength10:  change(closes, i, 10),
			TrendStrength20:  change(closes, i, 20),
		}
		if high := maxClose5[i]; contracts.Defined(high) && high > 0 {
			c.RecentPullback = (high-b.Close)/high > pullbackMin
		}
		out[i] = c
	}
	return out
}

// change is the fractional close change over lookback bars
func change(closes []float64, i, lookback int) float64 {
	if i < lookback || closes[i-lookback] <= 0 {
		return contracts.Undefined
	}
	return (closes[i] - closes[i-lookback]) / closes[i-lookback]
}

// Phase assigns the first matching phase. An undefined trend strength
// fails every comparison.
func Phase(c Checks, close, shortMA float64) contracts.SwingPhase {
	if !c.Foundation {
		return contracts.PhaseNotQualified
	}
	if !c.Valid() {
		return contracts.PhaseTrending
	}

	switch {
	case c.GoldenConfirmed && close <= shortMA*1.05 && c.TrendStrength10 > 0 &&
		c.VolumeSustained && !c.RecentPullback:
		return contracts.PhaseInitialUptrend
	case close > shortMA*1.10 && c.TrendStrength10 > 0.05 && c.VolumeSustained:
		return contracts.PhaseMainUptrend
	case c.NearSupport && c.RecentPullback:
		return contracts.PhasePullbackBuy
	case c.TrendStrength10 < -0.03 || c.RecentPullback:
		return contracts.PhaseWeakening
	default:
		return contracts.PhaseTrending
	}
}

// Classify labels every bar
func Classify(bars []contracts.Bar, frame *contracts.IndicatorFrame, volMultiplier float64) []contracts.SwingPhase {
	checks := Evaluate(bars, frame, volMultiplier)
	out := make([]contracts.SwingPhase, len(bars))
	for i, c := range checks {
		out[i] = Phase(c, bars[i].Close, frame.ShortMA[i])
	}
	return out
}

// Holding day suggestions
const (
	DefaultHoldingDays = 14
	slopeLookback      = 20
)

// HoldingDays suggests a holding horizon from the long MA slope over the
// last 20 bars. When the long MA is still undefined 20 bars back (fewer
// than the long window plus 19 bars) the default applies, not the flat-slope 7.
func HoldingDays(frame *contracts.IndicatorFrame) int {
	n := frame.Len()
	if n < slopeLookback {
		return DefaultHoldingDays
	}
	last, prior := frame.LongMA[n-1], frame.LongMA[n-slopeLookback]
	if !contracts.Defined(last) || !contracts.Defined(prior) || prior <= 0 {
		return DefaultHoldingDays
	}

	slope := (last - prior) / prior
	switch {
	case slope > 0.05:
		return 28
	case slope > 0.03:
		return 21
	case slope > 0.01:
		return 14
	default:
		return 7
	}
}
