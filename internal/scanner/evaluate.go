package scanner

import (
	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/decision"
	"github.com/wonny/swingscan/internal/indicator"
	"github.com/wonny/swingscan/internal/risk"
	"github.com/wonny/swingscan/internal/scoring"
	"github.com/wonny/swingscan/internal/strength"
	"github.com/wonny/swingscan/internal/swing"
)

// Evaluate scores the latest bar of series. bench may be nil. The row is
// terminal ("data error") when a latest-bar dependency is undefined.
func Evaluate(row contracts.ScanResult, series *contracts.BarSeries, bench []contracts.Bar, o Options) contracts.ScanResult {
	bars := series.Bars
	n := len(bars)
	last := n - 1

	weights := o.Scoring.Weights.Normalize()
	scoreParams := scoring.Params{Weights: weights, VolMultiplier: o.Scoring.VolMultiplier}

	frame := indicator.Compute(bars, o.Indicator)
	if !latestDefined(frame, last) {
		return terminal(row, contracts.StatusDataError, contracts.ReasonDataError)
	}

	rs := strength.Calculate(bars, bench)
	scores := scoring.Score(bars, frame, rs, scoreParams)
	levels := risk.Compute(bars, frame, o.Risk)
	phases := swing.Classify(bars, frame, o.Scoring.VolMultiplier)

	trigger := decision.EntryTrigger(frame, bars, last)
	score := scores[last]
	phase := phases[last]

	row.Status = contracts.StatusOK
	row.Reason = ""
	row.Indicators = frame.Snapshot(last)
	row.RelativeStrength = rs[last]
	row.Score = score
	row.Total = score.Total
	row.Phase = phase
	row.Signal = decision.Decide(score.Total, phase, trigger)
	row.HoldingDays = swing.HoldingDays(frame)
	row.Risk = levels[last].Snapshot()
	row.EntryTrigger = trigger
	row.PullbackWatch = contracts.Defined(frame.Pullback[last]) && frame.Pullback[last] >= o.PullbackWatchPct
	row.AboveMinScore = score.Total >= o.MinScore
	return row
}

func latestDefined(f *contracts.IndicatorFrame, i int) bool {
	for _, col := range [][]float64{f.ShortMA, f.LongMA, f.VolMA, f.VolMA20, f.ATR, f.RSI, f.High60} {
		if !contracts.Defined(col[i]) {
			return false
		}
	}
	return true
}

// terminal finalizes a row that stops before or during scoring
func terminal(row contracts.ScanResult, status contracts.RowStatus, reason string) contracts.ScanResult {
	row.Status = status
	row.Reason = reason
	row.Score = contracts.ScoreBreakdown{}
	row.Total = 0
	row.Signal = contracts.SignalNone
	row.Phase = contracts.PhaseNotQualified
	return row
}
