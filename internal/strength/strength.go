// Package strength scores an instrument's price change against a benchmark.
package strength

import (
	"github.com/wonny/swingscan/internal/contracts"
)

const (
	// Neutral is emitted whenever no comparison can be made
	Neutral = 50.0
	// MinOverlap is the fewest shared dates needed to compare
	MinOverlap = 60
	// MaxLookback is the comparison distance in aligned bars
	MaxLookback = 250
)

// Calculate returns a 0-100 score per instrument bar. Bars are joined to the
// benchmark on calendar date; instrument bars without a benchmark bar score Neutral.
func Calculate(instrument, benchmark []contracts.Bar) []float64 {
	out := make([]float64, len(instrument))
	for i := range out {
		out[i] = Neutral
	}
	if len(benchmark) == 0 {
		return out
	}

	benchClose := make(map[string]float64, len(benchmark))
	for _, b := range benchmark {
		benchClose[contracts.DayKey(b.Date)] = b.Close
	}

	type aligned struct {
		pos   int // index into instrument
		inst  float64
		bench float64
	}
	joined := make([]aligned, 0, len(instrument))
	for i, b := range instrument {
		if c, ok := benchClose[contracts.DayKey(b.Date)]; ok {
			joined = append(joined, aligned{pos: i, inst: b.Close, bench: c})
		}
	}

	m := len(joined)
	if m < MinOverlap {
		return out
	}

	score := func(k, start int) {
		s := joined[start]
		if s.inst <= 0 || s.bench <= 0 {
			return
		}
		cur := joined[k]
		instPct := (cur.inst/s.inst - 1) * 100
		benchPct := (cur.bench/s.bench - 1) * 100
		out[cur.pos] = Score(Ratio(instPct, benchPct))
	}

	if m >= MaxLookback {
		for k := MaxLookback; k < m; k++ {
			score(k, k-MaxLookback)
		}
		return out
	}

	// short overlap: compare against the first aligned bar
	for k := MinOverlap; k < m; k++ {
		score(k, 0)
	}
	return out
}

// Ratio divides the instrument change by the benchmark change.
// A flat benchmark yields the neutral ratio 1.0.
func Ratio(instPct, benchPct float64) float64 {
	if benchPct == 0 {
		return 1.0
	}
	return instPct / benchPct
}

// Score maps a ratio onto the fixed 20/40/60/80/100 ladder
func Score(ratio float64) float64 {
	switch {
	case ratio > 1.5:
		return 100
	case ratio > 1.2:
		return 80
	case ratio > 1.0:
		return 60
	case ratio > 0.8:
		return 40
	default:
		return 20
	}
}
