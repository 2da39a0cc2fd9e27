package history

import (
	"context"
	"time"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/redis"
)

// Store is the subset of redis.Cache used here
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Cached memoizes daily history per symbol and trading date.
// Cache failures are logged and never fail the fetch.
type Cached struct {
	next  contracts.HistoryProvider
	store Store
	log   *logger.Logger
	ttl   time.Duration
	now   func() time.Time
}

// NewCached wraps next with store
func NewCached(next contracts.HistoryProvider, store Store, log *logger.Logger) *Cached {
	return &Cached{
		next:  next,
		store: store,
		log:   log,
		ttl:   redis.TTLDaily,
		now:   time.Now,
	}
}

// FetchHistory implements contracts.HistoryProvider
func (c *Cached) FetchHistory(ctx context.Context, symbol string, lookbackYears int) (*contracts.BarSeries, error) {
	key := redis.HistoryKey(symbol, lookbackYears, c.now().Format("2006-01-02"))

	var cached contracts.BarSeries
	hit, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Warn("history cache read failed")
	}
	if hit {
		return &cached, nil
	}

	series, err := c.next.FetchHistory(ctx, symbol, lookbackYears)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, series, c.ttl); err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Warn("history cache write failed")
	}
	return series, nil
}
