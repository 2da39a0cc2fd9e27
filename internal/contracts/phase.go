package contracts

import "fmt"

// SwingPhase labels where an instrument sits in a swing
type SwingPhase int

const (
	PhaseNotQualified SwingPhase = iota
	PhaseTrending
	PhaseInitialUptrend
	PhaseMainUptrend
	PhasePullbackBuy
	PhaseWeakening
)

var phaseNames = [...]string{
	PhaseNotQualified:   "not_qualified",
	PhaseTrending:       "trending",
	PhaseInitialUptrend: "initial_uptrend",
	PhaseMainUptrend:    "main_uptrend",
	PhasePullbackBuy:    "pullback_buy",
	PhaseWeakening:      "weakening",
}

// 波段狀態 labels used in exported tables
var phaseLabels = [...]string{
	PhaseNotQualified:   "不符合",
	PhaseTrending:       "趨勢中",
	PhaseInitialUptrend: "初升段",
	PhaseMainUptrend:    "主升段",
	PhasePullbackBuy:    "拉回找買點",
	PhaseWeakening:      "趨勢轉弱",
}

func (p SwingPhase) valid() bool {
	return p >= PhaseNotQualified && p <= PhaseWeakening
}

func (p SwingPhase) String() string {
	if !p.valid() {
		return fmt.Sprintf("SwingPhase(%d)", int(p))
	}
	return phaseNames[p]
}

// Label returns the Traditional Chinese display label
func (p SwingPhase) Label() string {
	if !p.valid() {
		return p.String()
	}
	return phaseLabels[p]
}

// MarshalText implements encoding.TextMarshaler
func (p SwingPhase) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("invalid swing phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *SwingPhase) UnmarshalText(b []byte) error {
	v, err := ParseSwingPhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseSwingPhase parses a name produced by String
func ParseSwingPhase(s string) (SwingPhase, error) {
	for i, name := range phaseNames {
		if name == s {
			return SwingPhase(i), nil
		}
	}
	return PhaseNotQualified, fmt.Errorf("unknown swing phase %q", s)
}

// Signal is the discrete trading decision for the latest bar
type Signal int

const (
	SignalNone Signal = iota
	SignalWatch
	SignalBuy
	SignalStrongBuy
)

var signalNames = [...]string{
	SignalNone:      "no_signal",
	SignalWatch:     "watch",
	SignalBuy:       "buy",
	SignalStrongBuy: "strong_buy",
}

// 買入訊號 labels used in exported tables
var signalLabels = [...]string{
	SignalNone:      "無信號",
	SignalWatch:     "觀察",
	SignalBuy:       "買入",
	SignalStrongBuy: "強買入",
}

func (s Signal) valid() bool {
	return s >= SignalNone && s <= SignalStrongBuy
}

func (s Signal) String() string {
	if !s.valid() {
		return fmt.Sprintf("Signal(%d)", int(s))
	}
	return signalNames[s]
}

// Label returns the Traditional Chinese display label
func (s Signal) Label() string {
	if !s.valid() {
		return s.String()
	}
	return signalLabels[s]
}

// MarshalText implements encoding.TextMarshaler
func (s Signal) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid signal %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Signal) UnmarshalText(b []byte) error {
	v, err := ParseSignal(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSignal parses a name produced by String
func ParseSignal(s string) (Signal, error) {
	for i, name := range signalNames {
		if name == s {
			return Signal(i), nil
		}
	}
	return SignalNone, fmt.Errorf("unknown signal %q", s)
}
