package contracts

import "context"

// HistoryProvider fetches daily bars
// ⭐ SSOT: market data boundary
type HistoryProvider interface {
	// FetchHistory returns ErrNotFound for unknown symbols
	FetchHistory(ctx context.Context, symbol string, lookbackYears int) (*BarSeries, error)
}

// FundamentalsHealth is the verdict of a fundamentals check
type FundamentalsHealth struct {
	Healthy   bool   `json:"healthy"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// FundamentalsProvider checks balance-sheet health.
// Errors and unavailable data are treated as a pass by the scanner.
type FundamentalsProvider interface {
	CheckFundamentals(ctx context.Context, symbol string) (FundamentalsHealth, error)
}

// SectorLookup maps a symbol to its sector label
type SectorLookup interface {
	Sector(symbol string) string
}

// NameLookup maps a symbol to its display name
type NameLookup interface {
	Name(symbol string) string
}

// ProgressFunc is called once per completed instrument.
// done counts completed instruments, not input positions.
type ProgressFunc func(done, total int, symbol string)
