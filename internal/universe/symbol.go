package universe

import (
	"fmt"
	"regexp"
	"strings"
)

// Yahoo suffixes for Taiwan markets
const (
	SuffixListed = ".TW"  // 上市
	SuffixOTC    = ".TWO" // 上櫃

	MarketListed = "listed"
	MarketOTC    = "otc"
)

var (
	bareCode   = regexp.MustCompile(`^[0-9]{4,6}[A-Z]?$`)
	symbolForm = regexp.MustCompile(`^(\^[A-Z0-9]+|[0-9A-Z]{4,6}(\.TW|\.TWO)?)$`)
	etfPattern = regexp.MustCompile(`^00[0-9]{2,4}[A-Z]?$`)
)

// NormalizeSymbol upper-cases a symbol and adds ".TW" to bare codes.
// Index symbols such as ^TWII pass through.
func NormalizeSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("empty symbol")
	}
	if bareCode.MatchString(s) {
		s += SuffixListed
	}
	if !symbolForm.MatchString(s) {
		return "", fmt.Errorf("invalid symbol %q", s)
	}
	return s, nil
}

// Code strips the market suffix
func Code(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// AlternateSuffix swaps .TW and .TWO. ok is false for other symbols.
func AlternateSuffix(symbol string) (string, bool) {
	switch {
	case strings.HasSuffix(symbol, SuffixOTC):
		return strings.TrimSuffix(symbol, SuffixOTC) + SuffixListed, true
	case strings.HasSuffix(symbol, SuffixListed):
		return strings.TrimSuffix(symbol, SuffixListed) + SuffixOTC, true
	}
	return "", false
}

// MarketOf infers the market from the suffix
func MarketOf(symbol string) string {
	if strings.HasSuffix(symbol, SuffixOTC) {
		return MarketOTC
	}
	if strings.HasSuffix(symbol, SuffixListed) {
		return MarketListed
	}
	return ""
}

// IsETF reports whether a code is in the 00xx ETF range
func IsETF(symbol string) bool {
	return etfPattern.MatchString(Code(symbol))
}
