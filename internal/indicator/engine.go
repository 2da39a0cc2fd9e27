// Package indicator derives per-bar technical columns from daily bars.
package indicator

import (
	"fmt"

	"github.com/wonny/swingscan/internal/contracts"
)

// Params holds the configurable window lengths
type Params struct {
	ShortMA    int `yaml:"short_ma"`
	LongMA     int `yaml:"long_ma"`
	VolumeMA   int `yaml:"volume_ma"`
	ATRPeriod  int `yaml:"atr_period"`
	RSIPeriod  int `yaml:"rsi_period"`
	HighWindow int `yaml:"high_window"`
}

// DefaultParams returns the 20/60/5/14 windows
func DefaultParams() Params {
	return Params{
		ShortMA:    20,
		LongMA:     60,
		VolumeMA:   5,
		ATRPeriod:  14,
		RSIPeriod:  14,
		HighWindow: 60,
	}
}

// Validate checks every window is positive and short < long
func (p Params) Validate() error {
	windows := []struct {
		name string
		v    int
	}{
		{"short_ma", p.ShortMA},
		{"long_ma", p.LongMA},
		{"volume_ma", p.VolumeMA},
		{"atr_period", p.ATRPeriod},
		{"rsi_period", p.RSIPeriod},
		{"high_window", p.HighWindow},
	}
	for _, w := range windows {
		if w.v <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", w.name, w.v)
		}
	}
	if p.ShortMA >= p.LongMA {
		return fmt.Errorf("short_ma (%d) must be < long_ma (%d)", p.ShortMA, p.LongMA)
	}
	return nil
}

// Fixed windows
const (
	goldenCrossMA = 5
	volumeMA20    = 20
	ma50          = 50
	ma200         = 200
)

// Compute derives every indicator column for bars. bars is not modified.
func Compute(bars []contracts.Bar, p Params) *contracts.IndicatorFrame {
	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		volumes[i] = b.Volume
	}

	frame := &contracts.IndicatorFrame{
		MA5:     SMA(closes, goldenCrossMA),
		ShortMA: SMA(closes, p.ShortMA),
		LongMA:  SMA(closes, p.LongMA),
		MA50:    SMA(closes, ma50),
		MA200:   SMA(closes, ma200),
		VolMA:   SMA(volumes, p.VolumeMA),
		VolMA20: SMA(volumes, volumeMA20),
		ATR:     ATR(bars, p.ATRPeriod),
		RSI:     RSI(closes, p.RSIPeriod),
		High60:  RollingMax(highs, p.HighWindow, false),
	}

	frame.Pullback = undefinedColumn(n)
	for i := range bars {
		high := frame.High60[i]
		if contracts.Defined(high) && high > 0 {
			frame.Pullback[i] = (high - closes[i]) / high * 100
		}
	}

	return frame
}
