// Package market classifies the benchmark index trend.
package market

import (
	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/indicator"
)

// Moving average windows for the index
const (
	fastWindow = 20
	slowWindow = 60
)

// Trend is the benchmark classification with the values behind it
type Trend struct {
	Environment contracts.MarketEnvironment `json:"environment"`
	Close       float64                     `json:"close"`
	MA20        *float64                    `json:"ma20"`
	MA60        *float64                    `json:"ma60"`
}

// Classify labels the latest benchmark bar. A missing or short benchmark
// is MarketUnknown.
func Classify(bench *contracts.BarSeries) Trend {
	if bench.Len() < slowWindow {
		return Trend{Environment: contracts.MarketUnknown}
	}

	closes := bench.Closes()
	last := len(closes) - 1
	ma20 := indicator.SMA(closes, fastWindow)[last]
	ma60 := indicator.SMA(closes, slowWindow)[last]
	c := closes[last]

	t := Trend{Close: c, MA20: contracts.Ptr(ma20), MA60: contracts.Ptr(ma60)}
	switch {
	case c > ma20 && ma20 > ma60:
		t.Environment = contracts.MarketBull
	case c < ma20 && ma20 < ma60:
		t.Environment = contracts.MarketBear
	default:
		t.Environment = contracts.MarketRange
	}
	return t
}
