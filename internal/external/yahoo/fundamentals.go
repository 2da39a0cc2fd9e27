package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/pkg/httputil"
)

// Health thresholds
const (
	MaxDebtToEquity  = 200.0 // percent
	MinRevenueGrowth = -0.20
)

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type financialData struct {
	ReturnOnEquity rawValue `json:"returnOnEquity"`
	DebtToEquity   rawValue `json:"debtToEquity"`
	RevenueGrowth  rawValue `json:"revenueGrowth"`
	ProfitMargins  rawValue `json:"profitMargins"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData *financialData `json:"financialData"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// CheckFundamentals implements contracts.FundamentalsProvider.
// Missing or forbidden data reports Available=false rather than an error.
func (c *Client) CheckFundamentals(ctx context.Context, symbol string) (contracts.FundamentalsHealth, error) {
	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=financialData", c.baseURL, symbol)

	var resp quoteSummaryResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			switch se.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return contracts.FundamentalsHealth{Available: false, Reason: http.StatusText(se.StatusCode)}, nil
			}
		}
		return contracts.FundamentalsHealth{}, fmt.Errorf("fetch fundamentals %s: %w", symbol, err)
	}

	if len(resp.QuoteSummary.Result) == 0 || resp.QuoteSummary.Result[0].FinancialData == nil {
		return contracts.FundamentalsHealth{Available: false, Reason: "no financial data"}, nil
	}
	return assess(*resp.QuoteSummary.Result[0].FinancialData), nil
}

// assess applies the health rules in priority order. Missing fields pass.
func assess(fd financialData) contracts.FundamentalsHealth {
	h := contracts.FundamentalsHealth{Available: true, Healthy: true}

	fail := func(reason string) contracts.FundamentalsHealth {
		h.Healthy = false
		h.Reason = reason
		return h
	}

	if v := fd.ReturnOnEquity.Raw; v != nil && *v < 0 {
		return fail("negative ROE")
	}
	if v := fd.DebtToEquity.Raw; v != nil && *v > MaxDebtToEquity {
		return fail("high debt ratio")
	}
	if v := fd.RevenueGrowth.Raw; v != nil && *v < MinRevenueGrowth {
		return fail("revenue decline")
	}
	if v := fd.ProfitMargins.Raw; v != nil && *v < 0 {
		return fail("negative earnings")
	}
	return h
}
