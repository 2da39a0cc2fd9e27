package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/testutil"
	"github.com/wonny/swingscan/pkg/logger"
)

type stubProvider struct {
	series map[string]*contracts.BarSeries
	errs   map[string]error
	calls  []string
}

func (s *stubProvider) FetchHistory(_ context.Context, symbol string, _ int) (*contracts.BarSeries, error) {
	s.calls = append(s.calls, symbol)
	if err := s.errs[symbol]; err != nil {
		return nil, err
	}
	if ser, ok := s.series[symbol]; ok {
		return ser, nil
	}
	return nil, contracts.ErrNotFound
}

func TestSuffixFallback(t *testing.T) {
	ctx := context.Background()
	long := testutil.Series("4979.TWO", testutil.Flat(100, 50, 1000))
	short := testutil.Series("4979.TW", testutil.Flat(5, 50, 1000))

	t.Run("sufficient primary", func(t *testing.T) {
		stub := &stubProvider{series: map[string]*contracts.BarSeries{"4979.TWO": long}}
		got, err := NewSuffixFallback(stub).FetchHistory(ctx, "4979.TWO", 2)
		require.NoError(t, err)
		assert.Same(t, long, got)
		assert.Equal(t, []string{"4979.TWO"}, stub.calls)
	})

	t.Run("not found retries alternate", func(t *testing.T) {
		stub := &stubProvider{series: map[string]*contracts.BarSeries{"4979.TWO": long}}
		got, err := NewSuffixFallback(stub).FetchHistory(ctx, "4979.TW", 2)
		require.NoError(t, err)
		assert.Same(t, long, got)
		assert.Equal(t, []string{"4979.TW", "4979.TWO"}, stub.calls)
	})

	t.Run("short primary keeps longer", func(t *testing.T) {
		stub := &stubProvider{series: map[string]*contracts.BarSeries{"4979.TW": short, "4979.TWO": long}}
		got, err := NewSuffixFallback(stub).FetchHistory(ctx, "4979.TW", 2)
		require.NoError(t, err)
		assert.Same(t, long, got)
	})

	t.Run("short primary with missing alternate", func(t *testing.T) {
		stub := &stubProvider{series: map[string]*contracts.BarSeries{"4979.TW": short}}
		got, err := NewSuffixFallback(stub).FetchHistory(ctx, "4979.TW", 2)
		require.NoError(t, err)
		assert.Same(t, short, got)
	})

	t.Run("both missing", func(t *testing.T) {
		stub := &stubProvider{}
		_, err := NewSuffixFallback(stub).FetchHistory(ctx, "4979.TW", 2)
		assert.ErrorIs(t, err, contracts.ErrNotFound)
	})

	t.Run("transport error surfaces", func(t *testing.T) {
		boom := errors.New("connection reset")
		stub := &stubProvider{errs: map[string]error{"4979.TW": boom}}
		_, err := NewSuffixFallback(stub).FetchHistory(ctx, "4979.TW", 2)
		assert.ErrorIs(t, err, boom)
		assert.Len(t, stub.calls, 1)
	})

	t.Run("index symbol has no alternate", func(t *testing.T) {
		stub := &stubProvider{}
		_, err := NewSuffixFallback(stub).FetchHistory(ctx, "^TWII", 2)
		assert.ErrorIs(t, err, contracts.ErrNotFound)
		assert.Equal(t, []string{"^TWII"}, stub.calls)
	})
}

type mapStore struct {
	data   map[string][]byte
	getErr error
}

func (m *mapStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *mapStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	series := testutil.Series("2330.TW", testutil.Linear(70, 100, 1, 2000))
	stub := &stubProvider{series: map[string]*contracts.BarSeries{"2330.TW": series}}
	store := &mapStore{data: map[string][]byte{}}

	c := NewCached(stub, store, logger.NewNop())
	c.now = func() time.Time { return time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) }

	first, err := c.FetchHistory(ctx, "2330.TW", 2)
	require.NoError(t, err)
	second, err := c.FetchHistory(ctx, "2330.TW", 2)
	require.NoError(t, err)

	assert.Len(t, stub.calls, 1)
	assert.Contains(t, store.data, "history:2330.TW:2y:2024-06-03")
	assert.Equal(t, first.Len(), second.Len())
	assert.Equal(t, first.Bars[69].Close, second.Bars[69].Close)
}

func TestCached_ReadErrorFallsThrough(t *testing.T) {
	series := testutil.Series("2330.TW", testutil.Flat(60, 100, 2000))
	stub := &stubProvider{series: map[string]*contracts.BarSeries{"2330.TW": series}}
	store := &mapStore{data: map[string][]byte{}, getErr: errors.New("redis down")}

	got, err := NewCached(stub, store, logger.NewNop()).FetchHistory(context.Background(), "2330.TW", 2)
	require.NoError(t, err)
	assert.Same(t, series, got)
}

func TestCached_ProviderErrorNotCached(t *testing.T) {
	stub := &stubProvider{}
	store := &mapStore{data: map[string][]byte{}}

	_, err := NewCached(stub, store, logger.NewNop()).FetchHistory(context.Background(), "9999.TW", 2)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
	assert.Empty(t, store.data)
}

type stubFundamentals struct {
	calls  int
	health contracts.FundamentalsHealth
	err    error
}

func (s *stubFundamentals) CheckFundamentals(context.Context, string) (contracts.FundamentalsHealth, error) {
	s.calls++
	return s.health, s.err
}

func TestCachedFundamentals(t *testing.T) {
	ctx := context.Background()
	stub := &stubFundamentals{health: contracts.FundamentalsHealth{Healthy: false, Available: true, Reason: "negative ROE"}}
	store := &mapStore{data: map[string][]byte{}}
	c := NewCachedFundamentals(stub, store, logger.NewNop())

	for i := 0; i < 2; i++ {
		got, err := c.CheckFundamentals(ctx, "2330.TW")
		require.NoError(t, err)
		assert.Equal(t, stub.health, got)
	}
	assert.Equal(t, 1, stub.calls)
	assert.Contains(t, store.data, "fundamentals:2330.TW")
}

func TestCachedFundamentals_ErrorNotCached(t *testing.T) {
	stub := &stubFundamentals{err: errors.New("timeout")}
	store := &mapStore{data: map[string][]byte{}}
	c := NewCachedFundamentals(stub, store, logger.NewNop())

	_, err := c.CheckFundamentals(context.Background(), "2330.TW")
	require.Error(t, err)
	assert.Empty(t, store.data)
}
