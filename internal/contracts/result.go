package contracts

import "time"

// RowStatus is the outcome of scanning one instrument
type RowStatus string

const (
	StatusOK        RowStatus = "ok"
	StatusNoData    RowStatus = "no_data"
	StatusDataError RowStatus = "data_error"
	StatusFiltered  RowStatus = "filtered"
)

// Terminal row reasons
const (
	ReasonNoData                = "no data"
	ReasonDataError             = "data error"
	ReasonInsufficientLiquidity = "insufficient liquidity"
	ReasonFundamentalsPrefix    = "fundamentals: "
)

// MarketEnvironment summarizes the benchmark trend
type MarketEnvironment string

const (
	MarketBull    MarketEnvironment = "bull"
	MarketBear    MarketEnvironment = "bear"
	MarketRange   MarketEnvironment = "range"
	MarketUnknown MarketEnvironment = "unknown"
)

// ScanResult is one row of a scan
// ⭐ SSOT: scanner → store / export / api
type ScanResult struct {
	Rank   int       `json:"rank"`
	Symbol string    `json:"symbol"`
	Name   string    `json:"name"`
	Sector string    `json:"sector"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"as_of"`

	Status RowStatus `json:"status"`
	Reason string    `json:"reason,omitempty"`

	Indicators       IndicatorSnapshot `json:"indicators"`
	RelativeStrength float64           `json:"relative_strength"`
	Score            ScoreBreakdown    `json:"score"`
	Total            float64           `json:"total"`
	Signal           Signal            `json:"signal"`
	Phase            SwingPhase        `json:"phase"`
	HoldingDays      int               `json:"holding_days"`
	Risk             RiskSnapshot      `json:"risk"`

	EntryTrigger  bool `json:"entry_trigger"`
	PullbackWatch bool `json:"pullback_watch"`
	AboveMinScore bool `json:"above_min_score"`
}

// Terminal reports whether the row stopped before scoring
func (r *ScanResult) Terminal() bool {
	return r.Status != StatusOK
}

// ScanReport is the full output of one scan invocation
type ScanReport struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	Benchmark    string            `json:"benchmark"`
	Environment  MarketEnvironment `json:"environment"`
	StrategyHash string            `json:"strategy_hash,omitempty"`
	Results      []ScanResult      `json:"results"`
}

// Duration returns the wall time of the scan
func (r *ScanReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// CountByStatus tallies rows per status
func (r *ScanReport) CountByStatus() map[RowStatus]int {
	counts := make(map[RowStatus]int)
	for _, row := range r.Results {
		counts[row.Status]++
	}
	return counts
}

// CountBySignal tallies scored rows per signal
func (r *ScanReport) CountBySignal() map[Signal]int {
	counts := make(map[Signal]int)
	for _, row := range r.Results {
		if row.Status == StatusOK {
			counts[row.Signal]++
		}
	}
	return counts
}

// Top returns at most n rows with a buy-side signal in rank order
func (r *ScanReport) Top(n int) []ScanResult {
	out := make([]ScanResult, 0, n)
	for _, row := range r.Results {
		if len(out) == n {
			break
		}
		if row.Signal == SignalBuy || row.Signal == SignalStrongBuy {
			out = append(out, row)
		}
	}
	return out
}
