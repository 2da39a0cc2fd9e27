package indicator

import (
	"math"

	"github.com/wonny/swingscan/internal/contracts"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func undefinedColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = contracts.Undefined
	}
	return out
}

// SMA returns the simple moving average of values over window.
// The first window-1 entries are undefined, as is any window holding a
// non-finite value.
func SMA(values []float64, window int) []float64 {
	out := undefinedColumn(len(values))
	if window <= 0 {
		return out
	}

	var w windowSum
	for i, v := range values {
		w.add(v)
		if i >= window {
			w.remove(values[i-window])
		}
		if i >= window-1 && w.bad == 0 {
			out[i] = w.sum / float64(window)
		}
	}
	return out
}

// windowSum is a running sum that keeps non-finite values out, so one bad
// bar only affects the windows containing it.
type windowSum struct {
	sum float64
	bad int
}

func (w *windowSum) add(v float64) {
	if !finite(v) {
		w.bad++
		return
	}
	w.sum += v
}

func (w *windowSum) remove(v float64) {
	if !finite(v) {
		w.bad--
		return
	}
	w.sum -= v
}

// RollingMax returns the maximum over the trailing window. With partial set,
// windows that have not filled yet use whatever bars exist and non-finite
// values are skipped; otherwise those entries are undefined.
func RollingMax(values []float64, window int, partial bool) []float64 {
	out := undefinedColumn(len(values))
	if window <= 0 {
		return out
	}

	// indices of finite values, decreasing
	deque := make([]int, 0, window)
	bad := 0
	for i, v := range values {
		if i >= window && !finite(values[i-window]) {
			bad--
		}
		for len(deque) > 0 && deque[0] <= i-window {
			deque = deque[1:]
		}
		if finite(v) {
			for len(deque) > 0 && values[deque[len(deque)-1]] <= v {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, i)
		} else {
			bad++
		}

		if len(deque) == 0 {
			continue
		}
		if partial || (i >= window-1 && bad == 0) {
			out[i] = values[deque[0]]
		}
	}
	return out
}

// TrueRange returns the true range per bar. Bar 0 has no prior close.
func TrueRange(bars []contracts.Bar) []float64 {
	out := undefinedColumn(len(bars))
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		out[i] = math.Max(bars[i].High-bars[i].Low,
			math.Max(math.Abs(bars[i].High-prevClose), math.Abs(bars[i].Low-prevClose)))
	}
	return out
}

// ATR is the simple mean of true range over period, first defined at index period
func ATR(bars []contracts.Bar, period int) []float64 {
	out := undefinedColumn(len(bars))
	if period <= 0 || len(bars) <= period {
		return out
	}

	tr := TrueRange(bars)
	var w windowSum
	for i := 1; i < len(bars); i++ {
		w.add(tr[i])
		if i > period {
			w.remove(tr[i-period])
		}
		if i >= period && w.bad == 0 {
			out[i] = w.sum / float64(period)
		}
	}
	return out
}

// RSI computes Wilder's relative strength index over closes.
// The seed averages the first period deltas; the first defined value is at index period.
func RSI(closes []float64, period int) []float64 {
	out := undefinedColumn(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if !finite(change) {
			continue
		}
		gain, loss := split(change)
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	factor := 1.0 / float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if !finite(change) {
			// a gap bar carries the averages forward
			continue
		}
		gain, loss := split(change)
		avgGain = gain*factor + avgGain*(1-factor)
		avgLoss = loss*factor + avgLoss*(1-factor)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
