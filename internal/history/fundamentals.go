package history

import (
	"context"
	"time"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/redis"
)

// CachedFundamentals memoizes fundamentals verdicts for a day. Only
// successful checks are stored; an unavailable verdict is still a result.
type CachedFundamentals struct {
	next  contracts.FundamentalsProvider
	store Store
	log   *logger.Logger
	ttl   time.Duration
}

// NewCachedFundamentals wraps next with store
func NewCachedFundamentals(next contracts.FundamentalsProvider, store Store, log *logger.Logger) *CachedFundamentals {
	return &CachedFundamentals{next: next, store: store, log: log, ttl: redis.TTLDaily}
}

// CheckFundamentals implements contracts.FundamentalsProvider
func (c *CachedFundamentals) CheckFundamentals(ctx context.Context, symbol string) (contracts.FundamentalsHealth, error) {
	key := redis.FundamentalsKey(symbol)

	var cached contracts.FundamentalsHealth
	hit, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Warn("fundamentals cache read failed")
	}
	if hit {
		return cached, nil
	}

	health, err := c.next.CheckFundamentals(ctx, symbol)
	if err != nil {
		return health, err
	}

	if err := c.store.Set(ctx, key, health, c.ttl); err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Warn("fundamentals cache write failed")
	}
	return health, nil
}
