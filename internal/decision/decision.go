// Package decision turns a score, a swing phase and the entry trigger into
// a discrete signal.
package decision

import (
	"github.com/wonny/swingscan/internal/contracts"
)

// Score thresholds of the decision table
const (
	StrongThreshold = 70.0
	BuyThreshold    = 50.0
	rsiFloor        = 50.0
)

// EntryTrigger holds when shortMA ≥ longMA, RSI ≥ 50 and volume ≥ the
// 20-day volume MA at bar i, all defined
func EntryTrigger(frame *contracts.IndicatorFrame, bars []contracts.Bar, i int) bool {
	if i < 0 || i >= len(bars) || i >= frame.Len() {
		return false
	}
	shortMA, longMA := frame.ShortMA[i], frame.LongMA[i]
	rsi, volMA20 := frame.RSI[i], frame.VolMA20[i]
	for _, v := range []float64{shortMA, longMA, rsi, volMA20} {
		if !contracts.Defined(v) {
			return false
		}
	}
	return shortMA >= longMA && rsi >= rsiFloor && bars[i].Volume >= volMA20
}

// Decide evaluates the decision table
func Decide(total float64, phase contracts.SwingPhase, trigger bool) contracts.Signal {
	switch {
	case !trigger:
		// without a trigger every positive score is only worth watching
		if total > 0 {
			return contracts.SignalWatch
		}
		return contracts.SignalNone

	case phase == contracts.PhaseTrending || phase == contracts.PhaseWeakening:
		// demoted: at most Buy. NotQualified is not demoted.
		switch {
		case total >= StrongThreshold:
			return contracts.SignalBuy
		case total > 0:
			return contracts.SignalWatch
		}
		return contracts.SignalNone

	default:
		switch {
		case total >= StrongThreshold:
			return contracts.SignalStrongBuy
		case total >= BuyThreshold:
			return contracts.SignalBuy
		case total > 0:
			return contracts.SignalWatch
		}
		return contracts.SignalNone
	}
}
