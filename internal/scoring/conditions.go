package scoring

import (
	"math"

	"github.com/wonny/swingscan/internal/contracts"
)

// NearSupportBand is the max distance of close from the short MA, as a fraction
const NearSupportBand = 0.03

// TrendFoundation holds when close > shortMA > longMA, none undefined
func TrendFoundation(close, shortMA, longMA float64) bool {
	if !contracts.Defined(close) || !contracts.Defined(shortMA) || !contracts.Defined(longMA) {
		return false
	}
	return close > shortMA && shortMA > longMA
}

// GoldenCross holds when the 5-day MA is above the short MA
func GoldenCross(ma5, shortMA float64) bool {
	return contracts.Defined(ma5) && contracts.Defined(shortMA) && ma5 > shortMA
}

// NearSupport holds when close is within NearSupportBand of the short MA
func NearSupport(close, shortMA float64) bool {
	if !contracts.Defined(shortMA) || shortMA == 0 {
		return false
	}
	return math.Abs(close-shortMA)/shortMA <= NearSupportBand
}

// LongTermConfirmed holds when close > MA50 > MA200
func LongTermConfirmed(close, ma50, ma200 float64) bool {
	if !contracts.Defined(ma50) || !contracts.Defined(ma200) {
		return false
	}
	return close > ma50 && ma50 > ma200
}

// VolumeSurge holds when volume is strictly above multiplier × volume MA
func VolumeSurge(volume, volMA, multiplier float64) bool {
	return contracts.Defined(volMA) && volume > multiplier*volMA
}
