package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/indicator"
	"github.com/wonny/swingscan/internal/testutil"
)

const volMult = 1.2

// cycled volumes give exactly three surge bars in every 5-bar window
func pulsedVolume(bars []contracts.Bar) []contracts.Bar {
	pattern := []float64{1000, 1000, 3000, 3000, 3000}
	for i := range bars {
		bars[i].Volume = pattern[i%len(pattern)]
	}
	return bars
}

func TestCounter(t *testing.T) {
	c := newCounter(3)
	c.push(true)
	c.push(true)
	assert.False(t, c.atLeast(2), "unfilled window is false")
	c.push(false)
	assert.True(t, c.atLeast(2))
	c.push(false) // evicts first true
	assert.False(t, c.atLeast(2))
	assert.True(t, c.atLeast(1))
}

func TestClassify_LinearSeriesProgression(t *testing.T) {
	bars := testutil.Linear(300, 100, 1, 10000)
	frame := indicator.Compute(bars, indicator.DefaultParams())

	phases := Classify(bars, frame, volMult)
	require.Len(t, phases, len(bars))

	for i := 0; i < 59; i++ {
		require.Equal(t, contracts.PhaseNotQualified, phases[i], "bar %d", i)
	}
	// constant volume never surges, so the trend is labelled but not an uptrend stage
	for i := 59; i < len(phases); i++ {
		require.Equal(t, contracts.PhaseTrending, phases[i], "bar %d", i)
	}
}

func TestClassify_InitialUptrend(t *testing.T) {
	bars := pulsedVolume(testutil.Linear(300, 100, 1, 0))
	frame := indicator.Compute(bars, indicator.DefaultParams())
	phases := Classify(bars, frame, volMult)

	// close/shortMA = (100+i)/(90.5+i) ≤ 1.05 from bar 100
	assert.Equal(t, contracts.PhaseTrending, phases[80])
	for i := 100; i < len(phases); i++ {
		require.Equal(t, contracts.PhaseInitialUptrend, phases[i], "bar %d", i)
	}
}

func TestClassify_MainUptrend(t *testing.T) {
	bars := pulsedVolume(testutil.Linear(120, 100, 5, 0))
	frame := indicator.Compute(bars, indicator.DefaultParams())
	phases := Classify(bars, frame, volMult)

	// valid from bar 66; close > shortMA×1.10 until bar 84
	for i := 66; i <= 84; i++ {
		require.Equal(t, contracts.PhaseMainUptrend, phases[i], "bar %d", i)
	}
}

func TestEvaluate_Windows(t *testing.T) {
	bars := testutil.Linear(120, 100, 1, 1000)
	frame := indicator.Compute(bars, indicator.DefaultParams())
	checks := Evaluate(bars, frame, volMult)

	assert.False(t, checks[64].TrendPersistence) // 6 foundation bars
	assert.True(t, checks[65].TrendPersistence)  // 7
	assert.False(t, checks[65].MAStability)
	assert.True(t, checks[66].MAStability)
	assert.False(t, checks[66].RecentPullback)

	assert.False(t, contracts.Defined(checks[9].TrendStrength10))
	assert.InDelta(t, 10.0/100.0, checks[10].TrendStrength10, 1e-12)
	assert.False(t, contracts.Defined(checks[19].TrendStrength20))
	assert.True(t, contracts.Defined(checks[20].TrendStrength20))
}

func TestEvaluate_RecentPullback(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[27] = 110
	closes[29] = 106 // 3.6% below 110

	bars := testutil.FromCloses(closes, 1000)
	checks := Evaluate(bars, indicator.Compute(bars, indicator.DefaultParams()), volMult)
	assert.True(t, checks[29].RecentPullback)
	assert.False(t, checks[26].RecentPullback)
}

func TestPhase_DecisionOrder(t *testing.T) {
	valid := Checks{Foundation: true, TrendPersistence: true, MAStability: true, PriceAboveStable: true}

	with := func(mod func(*Checks)) Checks {
		c := valid
		c.TrendStrength10 = contracts.Undefined
		c.TrendStrength20 = contracts.Undefined
		mod(&c)
		return c
	}

	tests := []struct {
		name    string
		checks  Checks
		close   float64
		shortMA float64
		want    contracts.SwingPhase
	}{
		{"foundation false short-circuits", Checks{GoldenConfirmed: true, VolumeSustained: true}, 100, 100, contracts.PhaseNotQualified},
		{"not valid", Checks{Foundation: true}, 100, 100, contracts.PhaseTrending},
		{"initial uptrend", with(func(c *Checks) {
			c.GoldenConfirmed, c.VolumeSustained, c.TrendStrength10 = true, true, 0.02
		}), 104, 100, contracts.PhaseInitialUptrend},
		{"initial blocked by pullback falls to pullback buy", with(func(c *Checks) {
			c.GoldenConfirmed, c.VolumeSustained, c.TrendStrength10 = true, true, 0.02
			c.RecentPullback, c.NearSupport = true, true
		}), 102, 100, contracts.PhasePullbackBuy},
		{"main uptrend", with(func(c *Checks) {
			c.VolumeSustained, c.TrendStrength10 = true, 0.06
		}), 111, 100, contracts.PhaseMainUptrend},
		{"main uptrend needs strength", with(func(c *Checks) {
			c.VolumeSustained, c.TrendStrength10 = true, 0.05
		}), 111, 100, contracts.PhaseTrending},
		{"weakening on drop", with(func(c *Checks) {
			c.TrendStrength10 = -0.031
		}), 101, 100, contracts.PhaseWeakening},
		{"weakening on pullback away from support", with(func(c *Checks) {
			c.RecentPullback = true
		}), 108, 100, contracts.PhaseWeakening},
		{"trending default", with(func(c *Checks) {}), 101, 100, contracts.PhaseTrending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phase(tt.checks, tt.close, tt.shortMA))
		})
	}
}

func TestHoldingDays(t *testing.T) {
	frameWith := func(prior, last float64) *contracts.IndicatorFrame {
		long := make([]float64, 40)
		for i := range long {
			long[i] = prior
		}
		long[len(long)-1] = last
		long[len(long)-20] = prior
		return &contracts.IndicatorFrame{ShortMA: make([]float64, 40), LongMA: long}
	}

	assert.Equal(t, 28, HoldingDays(frameWith(100, 106)))
	assert.Equal(t, 21, HoldingDays(frameWith(100, 104)))
	assert.Equal(t, 14, HoldingDays(frameWith(100, 102)))
	assert.Equal(t, 7, HoldingDays(frameWith(100, 101)))
	assert.Equal(t, 7, HoldingDays(frameWith(100, 90)))
	assert.Equal(t, DefaultHoldingDays, HoldingDays(frameWith(contracts.Undefined, 100)))
	assert.Equal(t, DefaultHoldingDays, HoldingDays(&contracts.IndicatorFrame{ShortMA: make([]float64, 5), LongMA: make([]float64, 5)}))
}

func TestHoldingDays_LongMANotDefined20BarsBack(t *testing.T) {
	// 60..78 bars: the long MA exists today but not 20 bars ago
	for _, n := range []int{60, 70, 78} {
		frame := indicator.Compute(testutil.Linear(n, 100, 2, 1000), indicator.DefaultParams())
		assert.Equal(t, DefaultHoldingDays, HoldingDays(frame), "bars %d", n)
	}

	frame := indicator.Compute(testutil.Linear(79, 100, 2, 1000), indicator.DefaultParams())
	assert.NotEqual(t, DefaultHoldingDays, HoldingDays(frame))
}
