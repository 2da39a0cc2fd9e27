package contracts

// ScoreBreakdown is the weighted composite score of one bar.
// Components are already multiplied by their weights.
type ScoreBreakdown struct {
	Trend            float64 `json:"trend"`
	Momentum         float64 `json:"momentum"`
	RelativeStrength float64 `json:"relative_strength"`
	Institutional    float64 `json:"institutional"`
	Total            float64 `json:"total"`
	TrendFoundation  bool    `json:"trend_foundation"`
}

// RiskLevels are the risk-management prices of one bar. Undefined when ATR is.
type RiskLevels struct {
	StopLoss     float64
	TrailingStop float64
	TakeProfit   float64
}

// Defined reports whether the levels could be computed
func (r RiskLevels) Defined() bool {
	return Defined(r.StopLoss) && Defined(r.TrailingStop) && Defined(r.TakeProfit)
}

// RiskSnapshot is the JSON form of RiskLevels
type RiskSnapshot struct {
	StopLoss     *float64 `json:"stop_loss"`
	TrailingStop *float64 `json:"trailing_stop"`
	TakeProfit   *float64 `json:"take_profit"`
}

// Snapshot converts to the nullable JSON form
func (r RiskLevels) Snapshot() RiskSnapshot {
	return RiskSnapshot{
		StopLoss:     Ptr(r.StopLoss),
		TrailingStop: Ptr(r.TrailingStop),
		TakeProfit:   Ptr(r.TakeProfit),
	}
}
