// Package history wraps HistoryProvider implementations with suffix
// fallback and caching.
package history

import (
	"context"
	"errors"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/universe"
)

// SuffixFallback retries the alternate market suffix (.TW / .TWO) when the
// primary symbol is unknown or returns too few bars. The longer of the two
// series wins.
type SuffixFallback struct {
	next contracts.HistoryProvider
}

// NewSuffixFallback wraps next
func NewSuffixFallback(next contracts.HistoryProvider) *SuffixFallback {
	return &SuffixFallback{next: next}
}

// FetchHistory implements contracts.HistoryProvider
func (f *SuffixFallback) FetchHistory(ctx context.Context, symbol string, lookbackYears int) (*contracts.BarSeries, error) {
	primary, err := f.next.FetchHistory(ctx, symbol, lookbackYears)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		return nil, err
	}
	if err == nil && primary.Sufficient() {
		return primary, nil
	}

	alt, ok := universe.AlternateSuffix(symbol)
	if !ok {
		return primary, err
	}

	second, altErr := f.next.FetchHistory(ctx, alt, lookbackYears)
	if altErr != nil {
		// keep whatever the primary symbol produced
		return primary, err
	}
	if second.Len() > primary.Len() {
		return second, nil
	}
	if primary == nil {
		return second, nil
	}
	return primary, nil
}
