package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/pkg/httputil"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchHistory implements contracts.HistoryProvider
func (c *Client) FetchHistory(ctx context.Context, symbol string, lookbackYears int) (*contracts.BarSeries, error) {
	if lookbackYears <= 0 {
		lookbackYears = 1
	}
	end := c.now()
	start := end.AddDate(-lookbackYears, 0, 0)

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo api error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrNotFound)
	}

	bars := parseChart(resp.Chart.Result[0])
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrNotFound)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched history")

	return &contracts.BarSeries{Symbol: symbol, Bars: bars}, nil
}

// parseChart converts the column arrays into bars. Rows without a close
// are skipped; the result is sorted by date with one bar per day, the last
// row of a day winning.
func parseChart(r chartResult) []contracts.Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	offset := time.Duration(r.Meta.GMTOffset) * time.Second

	byDay := make(map[string]contracts.Bar, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closePx := at(q.Close, i)
		if closePx == nil {
			continue
		}
		c := *closePx
		local := time.Unix(ts, 0).UTC().Add(offset)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		byDay[contracts.DayKey(day)] = contracts.Bar{
			Date:   day,
			Open:   orDefault(at(q.Open, i), c),
			High:   orDefault(at(q.High, i), c),
			Low:    orDefault(at(q.Low, i), c),
			Close:  c,
			Volume: orDefault(at(q.Volume, i), 0),
		}
	}

	bars := make([]contracts.Bar, 0, len(byDay))
	for _, b := range byDay {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func at(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
