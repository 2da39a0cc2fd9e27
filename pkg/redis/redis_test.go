package redis

import (
	"context"
	"testing"
	"time"

	"github.com/wonny/swingscan/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on disabled client error = %v", err)
	}
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Error("Expected nil client to report disabled")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), YahooRateLimit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != YahooRateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", YahooRateLimit.Limit, remaining)
	}

	if err := limiter.Wait(context.Background(), TWSERateLimit); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	if err := cache.Set(ctx, "key", []int{1, 2}, TTLShort); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var result []int
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "HistoryKey",
			fn:       func() string { return HistoryKey("2330.TW", 2, "2025-01-15") },
			expected: "history:2330.TW:2y:2025-01-15",
		},
		{
			name:     "FundamentalsKey",
			fn:       func() string { return FundamentalsKey("6488.TWO") },
			expected: "fundamentals:6488.TWO",
		},
		{
			name:     "TaxonomyKey",
			fn:       func() string { return TaxonomyKey("listed") },
			expected: "taxonomy:listed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTTLOrdering(t *testing.T) {
	if !(TTLShort < TTLMedium && TTLMedium < TTLLong && TTLLong < TTLDaily) {
		t.Error("TTL constants out of order")
	}
	if TTLDaily != 24*time.Hour {
		t.Errorf("TTLDaily = %v", TTLDaily)
	}
}
