// Package scoring computes the weighted composite swing score per bar.
package scoring

import (
	"fmt"
	"math"

	"github.com/wonny/swingscan/internal/contracts"
)

// Weights of the four score components
type Weights struct {
	Trend            float64 `yaml:"trend" json:"trend"`
	Momentum         float64 `yaml:"momentum" json:"momentum"`
	RelativeStrength float64 `yaml:"relative_strength" json:"relative_strength"`
	Institutional    float64 `yaml:"institutional" json:"institutional"`
}

// DefaultWeights returns 0.40 / 0.30 / 0.20 / 0.10
func DefaultWeights() Weights {
	return Weights{Trend: 0.40, Momentum: 0.30, RelativeStrength: 0.20, Institutional: 0.10}
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Trend + w.Momentum + w.RelativeStrength + w.Institutional
}

// Validate rejects negative weights and an all-zero set
func (w Weights) Validate() error {
	if w.Trend < 0 || w.Momentum < 0 || w.RelativeStrength < 0 || w.Institutional < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if w.Sum() == 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	return nil
}

// Normalize rescales the weights to sum to 1.0.
// An invalid set falls back to DefaultWeights.
func (w Weights) Normalize() Weights {
	if w.Validate() != nil {
		return DefaultWeights()
	}
	sum := w.Sum()
	if math.Abs(sum-1) < 1e-9 {
		return w
	}
	return Weights{
		Trend:            w.Trend / sum,
		Momentum:         w.Momentum / sum,
		RelativeStrength: w.RelativeStrength / sum,
		Institutional:    w.Institutional / sum,
	}
}

// Params configures the scorer
type Params struct {
	Weights       Weights
	VolMultiplier float64
}

// DefaultParams returns default weights and a 1.2 volume multiplier
func DefaultParams() Params {
	return Params{Weights: DefaultWeights(), VolMultiplier: 1.2}
}

// Fixed component values
const (
	longTermBonus       = 5.0
	institutionalMarker = 50.0
	neutralRS           = 50.0
)

// TrendBase maps the two secondary trend conditions to a base score
func TrendBase(goldenCross, nearSupport bool) float64 {
	switch {
	case goldenCross && nearSupport:
		return 100
	case goldenCross:
		return 80
	case nearSupport:
		return 70
	default:
		return 50
	}
}

// Score returns one breakdown per bar. rs may be nil, in which case the
// relative strength component is neutral.
func Score(bars []contracts.Bar, frame *contracts.IndicatorFrame, rs []float64, p Params) []contracts.ScoreBreakdown {
	w := p.Weights
	out := make([]contracts.ScoreBreakdown, len(bars))

	for i, b := range bars {
		shortMA := frame.ShortMA[i]

		trend := TrendBase(GoldenCross(frame.MA5[i], shortMA), NearSupport(b.Close, shortMA))
		if LongTermConfirmed(b.Close, frame.MA50[i], frame.MA200[i]) {
			trend = math.Min(trend+longTermBonus, 100)
		}

		momentum := 0.0
		if VolumeSurge(b.Volume, frame.VolMA[i], p.VolMultiplier) {
			momentum = 100
		}

		rsScore := neutralRS
		if i < len(rs) {
			rsScore = rs[i]
		}

		sb := contracts.ScoreBreakdown{
			Trend:            trend * w.Trend,
			Momentum:         momentum * w.Momentum,
			RelativeStrength: rsScore * w.RelativeStrength,
			Institutional:    institutionalMarker * w.Institutional,
			TrendFoundation:  TrendFoundation(b.Close, shortMA, frame.LongMA[i]),
		}
		if sb.TrendFoundation {
			sb.Total = sb.Trend + sb.Momentum + sb.RelativeStrength + sb.Institutional
		}
		out[i] = sb
	}
	return out
}
