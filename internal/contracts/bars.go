package contracts

import (
	"fmt"
	"time"
)

// MinBars is the shortest history the engine will score
const MinBars = 60

// Bar is one trading day
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BarSeries is the daily history of one instrument
// ⭐ SSOT: history provider → engine
type BarSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars
func (s *BarSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Sufficient reports whether the series is long enough to score
func (s *BarSeries) Sufficient() bool {
	return s.Len() >= MinBars
}

// Latest returns the most recent bar
func (s *BarSeries) Latest() (Bar, bool) {
	if s.Len() == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes returns the close column as a new slice
func (s *BarSeries) Closes() []float64 {
	out := make([]float64, s.Len())
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Validate checks that dates are strictly increasing
func (s *BarSeries) Validate() error {
	for i := 1; i < s.Len(); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("%s: bar %d (%s) not after %s: %w",
				s.Symbol, i,
				s.Bars[i].Date.Format("2006-01-02"),
				s.Bars[i-1].Date.Format("2006-01-02"),
				ErrUnorderedBars)
		}
	}
	return nil
}

// DayKey normalizes a timestamp to its calendar date for joins
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
