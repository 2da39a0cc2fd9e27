// Package testutil builds synthetic bar series for tests.
package testutil

import (
	"time"

	"github.com/wonny/swingscan/internal/contracts"
)

// Start is the first synthetic trading day
var Start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// TradingDays returns n weekdays beginning at from
func TradingDays(from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for d := from; len(out) < n; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FromCloses builds bars with high/low one unit around each close
func FromCloses(closes []float64, volume float64) []contracts.Bar {
	dates := TradingDays(Start, len(closes))
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = contracts.Bar{
			Date:   dates[i],
			Open:   open,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: volume,
		}
	}
	return bars
}

// Linear builds n bars whose close rises by step each day
func Linear(n int, start, step, volume float64) []contracts.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return FromCloses(closes, volume)
}

// Flat builds n bars with a constant close
func Flat(n int, price, volume float64) []contracts.Bar {
	return Linear(n, price, 0, volume)
}

// Series wraps bars into a BarSeries
func Series(symbol string, bars []contracts.Bar) *contracts.BarSeries {
	return &contracts.BarSeries{Symbol: symbol, Bars: bars}
}
