package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
)

func sampleReport(started time.Time) *contracts.ScanReport {
	return &contracts.ScanReport{
		ID:           uuid.NewString(),
		StartedAt:    started,
		FinishedAt:   started.Add(3 * time.Second),
		Benchmark:    "^TWII",
		Environment:  contracts.MarketBull,
		StrategyHash: "abc123",
		Results: []contracts.ScanResult{
			{
				Rank: 1, Symbol: "2330.TW", Name: "台積電", Sector: "半導體/龍頭",
				Price: 1000, AsOf: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
				Status: contracts.StatusOK, Total: 72.5, Signal: contracts.SignalStrongBuy,
				Phase: contracts.PhaseMainUptrend, HoldingDays: 21, RelativeStrength: 80,
				Score:        contracts.ScoreBreakdown{Trend: 40, Momentum: 30, RelativeStrength: 16, Institutional: 5, Total: 72.5, TrendFoundation: true},
				Indicators:   contracts.IndicatorSnapshot{ShortMA: contracts.Ptr(980), ATR: contracts.Ptr(20)},
				Risk:         contracts.RiskLevels{StopLoss: 960, TrailingStop: 970, TakeProfit: 1040}.Snapshot(),
				EntryTrigger: true, AboveMinScore: true,
			},
			{
				Rank: 2, Symbol: "9999.TW", Name: "9999.TW", Sector: "其他",
				Status: contracts.StatusNoData, Reason: contracts.ReasonNoData,
			},
		},
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)

	_, err := m.LatestReport(ctx)
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	base := time.Date(2024, 6, 3, 5, 45, 0, 0, time.UTC)
	r1 := sampleReport(base)
	r2 := sampleReport(base.Add(24 * time.Hour))
	r3 := sampleReport(base.Add(48 * time.Hour))
	for _, r := range []*contracts.ScanReport{r1, r2, r3} {
		require.NoError(t, m.SaveReport(ctx, r))
	}

	latest, err := m.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, r3.ID, latest.ID)

	// capacity evicts the oldest
	_, err = m.GetReport(ctx, r1.ID)
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	got, err := m.GetReport(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, r2.Results, got.Results)

	got.Results[0].Symbol = "mutated"
	again, _ := m.GetReport(ctx, r2.ID)
	assert.Equal(t, "2330.TW", again.Results[0].Symbol)

	list, err := m.ListReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r3.ID, list[0].ID)
	assert.Equal(t, 2, list[0].InstrumentCount)
}

func TestPostgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewPostgres(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	report := sampleReport(time.Now().UTC().Truncate(time.Second))
	require.NoError(t, repo.SaveReport(ctx, report))
	// saving twice replaces the rows
	require.NoError(t, repo.SaveReport(ctx, report))

	got, err := repo.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Environment, got.Environment)
	require.Len(t, got.Results, 2)
	assert.Equal(t, report.Results[0].Signal, got.Results[0].Signal)
	assert.Equal(t, report.Results[0].Phase, got.Results[0].Phase)
	assert.Equal(t, report.Results[0].Risk, got.Results[0].Risk)
	assert.True(t, got.Results[1].AsOf.IsZero())

	latest, err := repo.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.ID, latest.ID)

	_, err = repo.GetReport(ctx, uuid.NewString())
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	list, err := repo.ListReports(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
