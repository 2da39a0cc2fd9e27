package contracts

import (
	"errors"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestBarSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		dates   []int
		wantErr bool
	}{
		{"empty", nil, false},
		{"increasing", []int{0, 1, 3, 4}, false},
		{"duplicate", []int{0, 1, 1}, true},
		{"decreasing", []int{0, 2, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &BarSeries{Symbol: "2330.TW"}
			for _, d := range tt.dates {
				s.Bars = append(s.Bars, Bar{Date: day(d), Close: 1})
			}
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnorderedBars) {
				t.Errorf("Expected ErrUnorderedBars, got %v", err)
			}
		})
	}
}

func TestBarSeries_Sufficient(t *testing.T) {
	var nilSeries *BarSeries
	if nilSeries.Sufficient() {
		t.Error("nil series must not be sufficient")
	}

	s := &BarSeries{Bars: make([]Bar, MinBars-1)}
	if s.Sufficient() {
		t.Errorf("%d bars must not be sufficient", MinBars-1)
	}
	s.Bars = append(s.Bars, Bar{Close: 10})
	if !s.Sufficient() {
		t.Errorf("%d bars must be sufficient", MinBars)
	}

	latest, ok := s.Latest()
	if !ok || latest.Close != 10 {
		t.Errorf("Latest() = %+v, %v", latest, ok)
	}
}

func TestBarSeries_ClosesCopies(t *testing.T) {
	s := &BarSeries{Bars: []Bar{{Close: 1}, {Close: 2}}}
	closes := s.Closes()
	closes[0] = 99
	if s.Bars[0].Close != 1 {
		t.Error("Closes() must not alias the bars")
	}
}

func TestDefinedAndPtr(t *testing.T) {
	if Defined(Undefined) {
		t.Error("Undefined must not be Defined")
	}
	if Ptr(Undefined) != nil {
		t.Error("Ptr(Undefined) must be nil")
	}
	p := Ptr(1.5)
	if p == nil || *p != 1.5 {
		t.Errorf("Ptr(1.5) = %v", p)
	}
	if Defined(Value(nil)) {
		t.Error("Value(nil) must be Undefined")
	}
	if Value(p) != 1.5 {
		t.Errorf("Value(p) = %v", Value(p))
	}
}
