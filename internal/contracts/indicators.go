package contracts

import "math"

// Undefined marks an indicator value that is not yet computable
var Undefined = math.NaN()

// Defined reports whether v holds a computed value
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// IndicatorFrame holds per-bar indicator columns aligned 1:1 with a BarSeries
// ⭐ SSOT: indicator engine → scorer / classifier / risk
type IndicatorFrame struct {
	MA5     []float64
	ShortMA []float64
	LongMA  []float64
	MA50    []float64
	MA200   []float64
	VolMA   []float64 // configurable window, 5 by default
	VolMA20 []float64
	ATR     []float64
	RSI     []float64
	High60  []float64
	// Pullback is the percent drop of close from High60
	Pullback []float64
}

// Len returns the number of bars covered
func (f *IndicatorFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.ShortMA)
}

// IndicatorSnapshot is one bar of an IndicatorFrame. Undefined values are nil.
type IndicatorSnapshot struct {
	MA5      *float64 `json:"ma5"`
	ShortMA  *float64 `json:"short_ma"`
	LongMA   *float64 `json:"long_ma"`
	MA50     *float64 `json:"ma50"`
	MA200    *float64 `json:"ma200"`
	VolMA    *float64 `json:"vol_ma"`
	VolMA20  *float64 `json:"vol_ma20"`
	ATR      *float64 `json:"atr"`
	RSI      *float64 `json:"rsi"`
	High60   *float64 `json:"high60"`
	Pullback *float64 `json:"pullback_pct"`
}

// Snapshot extracts bar i
func (f *IndicatorFrame) Snapshot(i int) IndicatorSnapshot {
	return IndicatorSnapshot{
		MA5:      Ptr(f.MA5[i]),
		ShortMA:  Ptr(f.ShortMA[i]),
		LongMA:   Ptr(f.LongMA[i]),
		MA50:     Ptr(f.MA50[i]),
		MA200:    Ptr(f.MA200[i]),
		VolMA:    Ptr(f.VolMA[i]),
		VolMA20:  Ptr(f.VolMA20[i]),
		ATR:      Ptr(f.ATR[i]),
		RSI:      Ptr(f.RSI[i]),
		High60:   Ptr(f.High60[i]),
		Pullback: Ptr(f.Pullback[i]),
	}
}

// Ptr converts an indicator value to a nullable pointer
func Ptr(v float64) *float64 {
	if !Defined(v) {
		return nil
	}
	return &v
}

// Value converts a nullable pointer back to an indicator value
func Value(p *float64) float64 {
	if p == nil {
		return Undefined
	}
	return *p
}
