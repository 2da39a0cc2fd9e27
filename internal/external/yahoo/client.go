// Package yahoo reads daily history and fundamentals from Yahoo Finance.
package yahoo

import (
	"strings"
	"time"

	"github.com/wonny/swingscan/pkg/httputil"
	"github.com/wonny/swingscan/pkg/logger"
)

// DefaultBaseURL is the public query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client talks to the chart and quoteSummary endpoints
// ⭐ SSOT: Yahoo Finance calls go through this client only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a Yahoo client. An empty baseURL uses DefaultBaseURL.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}
