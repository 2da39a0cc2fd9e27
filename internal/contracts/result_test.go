package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanReport_Counts(t *testing.T) {
	r := &ScanReport{
		StartedAt:  time.Date(2025, 1, 15, 13, 45, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 1, 15, 13, 45, 30, 0, time.UTC),
		Results: []ScanResult{
			{Symbol: "2330.TW", Status: StatusOK, Signal: SignalStrongBuy},
			{Symbol: "2317.TW", Status: StatusOK, Signal: SignalWatch},
			{Symbol: "2454.TW", Status: StatusOK, Signal: SignalBuy},
			{Symbol: "9999.TW", Status: StatusNoData, Reason: ReasonNoData},
		},
	}

	assert.Equal(t, 30*time.Second, r.Duration())
	assert.Equal(t, 3, r.CountByStatus()[StatusOK])
	assert.Equal(t, 1, r.CountByStatus()[StatusNoData])
	assert.Equal(t, 1, r.CountBySignal()[SignalWatch])
	assert.Equal(t, 0, r.CountBySignal()[SignalNone], "terminal rows are not counted as signals")

	top := r.Top(5)
	require.Len(t, top, 2)
	assert.Equal(t, "2330.TW", top[0].Symbol)
	assert.Equal(t, "2454.TW", top[1].Symbol)
	assert.Len(t, r.Top(1), 1)

	assert.True(t, r.Results[3].Terminal())
	assert.False(t, r.Results[0].Terminal())
}

func TestScanResult_UndefinedSnapshotIsNull(t *testing.T) {
	row := ScanResult{
		Symbol: "2330.TW",
		Indicators: IndicatorSnapshot{
			ShortMA: Ptr(600),
			ATR:     Ptr(Undefined),
		},
		Risk: RiskLevels{StopLoss: Undefined, TrailingStop: Undefined, TakeProfit: Undefined}.Snapshot(),
	}

	b, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))

	ind := decoded["indicators"].(map[string]interface{})
	assert.Equal(t, 600.0, ind["short_ma"])
	assert.Nil(t, ind["atr"])

	risk := decoded["risk"].(map[string]interface{})
	assert.Nil(t, risk["stop_loss"])
}

func TestRiskLevels_Defined(t *testing.T) {
	assert.True(t, RiskLevels{StopLoss: 80, TrailingStop: 80, TakeProfit: 120}.Defined())
	assert.False(t, RiskLevels{StopLoss: Undefined, TrailingStop: 80, TakeProfit: 120}.Defined())
}
