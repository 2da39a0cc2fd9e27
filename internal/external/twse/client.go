// Package twse scrapes the TWSE ISIN listing pages into instruments.
package twse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/wonny/swingscan/internal/universe"
	"github.com/wonny/swingscan/pkg/httputil"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/redis"
)

// Default listing pages
const (
	DefaultListedURL = "https://isin.twse.com.tw/isin/C_public.jsp?strMode=2"
	DefaultOTCURL    = "https://isin.twse.com.tw/isin/C_public.jsp?strMode=4"
)

// equitySection is the header row preceding common stocks
const equitySection = "股票"

// Client fetches ISIN listing pages
// ⭐ SSOT: TWSE listing scrapes go through this client only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	listedURL  string
	otcURL     string
	cache      Store
}

// Store caches parsed listing pages. Satisfied by redis.Cache.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// NewClient creates a TWSE client. Empty URLs use the defaults.
func NewClient(httpClient *httputil.Client, log *logger.Logger, listedURL, otcURL string) *Client {
	if listedURL == "" {
		listedURL = DefaultListedURL
	}
	if otcURL == "" {
		otcURL = DefaultOTCURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		listedURL:  listedURL,
		otcURL:     otcURL,
	}
}

// WithCache keeps parsed pages in store for a day
func (c *Client) WithCache(store Store) *Client {
	c.cache = store
	return c
}

// FetchInstruments returns listed and OTC common stocks
func (c *Client) FetchInstruments(ctx context.Context) ([]universe.Instrument, error) {
	listed, err := c.fetchPage(ctx, c.listedURL, universe.MarketListed)
	if err != nil {
		return nil, fmt.Errorf("listed page: %w", err)
	}
	otc, err := c.fetchPage(ctx, c.otcURL, universe.MarketOTC)
	if err != nil {
		return nil, fmt.Errorf("otc page: %w", err)
	}

	all := append(listed, otc...)
	c.logger.WithFields(map[string]interface{}{
		"listed": len(listed),
		"otc":    len(otc),
	}).Info("Fetched TWSE listings")
	return all, nil
}

// FetchTaxonomy scrapes both markets into a name/sector lookup
func (c *Client) FetchTaxonomy(ctx context.Context) (*universe.Taxonomy, error) {
	instruments, err := c.FetchInstruments(ctx)
	if err != nil {
		return nil, err
	}
	return universe.NewTaxonomy(instruments), nil
}

func (c *Client) fetchPage(ctx context.Context, url, market string) ([]universe.Instrument, error) {
	if c.cache == nil {
		return c.scrape(ctx, url, market)
	}

	key := redis.TaxonomyKey(market)
	var cached []universe.Instrument
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("market", market).Warn("listing cache read failed")
	}
	if hit && len(cached) > 0 {
		return cached, nil
	}

	instruments, err := c.scrape(ctx, url, market)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, instruments, redis.TTLDaily); err != nil {
		c.logger.WithError(err).WithField("market", market).Warn("listing cache write failed")
	}
	return instruments, nil
}

func (c *Client) scrape(ctx context.Context, url, market string) ([]universe.Instrument, error) {
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if isBig5(resp.Header.Get("Content-Type")) {
		body = traditionalchinese.Big5.NewDecoder().Reader(resp.Body)
	}
	return parseListing(body, market)
}

func isBig5(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "big5") || strings.Contains(ct, "ms950")
}

// parseListing reads the ISIN table. Only rows in the common stock section
// are kept; the first cell holds "code　name" separated by an ideographic
// space.
func parseListing(r io.Reader, market string) ([]universe.Instrument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	suffix := universe.SuffixListed
	if market == universe.MarketOTC {
		suffix = universe.SuffixOTC
	}

	var out []universe.Instrument
	inEquity := false

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 1 {
			inEquity = strings.TrimSpace(cells.Text()) == equitySection
			return
		}
		if !inEquity || cells.Length() < 5 {
			return
		}

		code, name, ok := splitCodeName(cells.Eq(0).Text())
		if !ok {
			return
		}
		out = append(out, universe.Instrument{
			Symbol: code + suffix,
			Name:   name,
			Sector: strings.TrimSpace(cells.Eq(4).Text()),
			Market: market,
		})
	})

	return out, nil
}

func splitCodeName(s string) (code, name string, ok bool) {
	s = strings.TrimSpace(s)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '　' || r == ' ' || r == '\t' })
	if len(parts) < 2 {
		return "", "", false
	}
	code = parts[0]
	if _, err := universe.NormalizeSymbol(code); err != nil {
		return "", "", false
	}
	return code, strings.Join(parts[1:], " "), true
}
