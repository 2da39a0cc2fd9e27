// Package export renders scan results as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/wonny/swingscan/internal/contracts"
)

// bom makes spreadsheet tools detect UTF-8
const bom = "\ufeff"

// Header is the CSV column order
var Header = []string{
	"排名", "族群", "股票代碼", "股票名稱", "當前股價", "策略評分", "買入訊號",
	"波段狀態", "建議持有天數", "建議停損價(ATR)", "移動停損價", "建議停利價",
	"數據日期", "MA5", "MA20", "MA60", "ATR", "RSI",
	"Trend_Score", "Momentum_Score", "RS_Score", "拉回觀察", "備註",
}

// noDataLabel replaces signal and phase on terminal rows
const noDataLabel = "無數據"

// WriteCSV writes results with a UTF-8 BOM and a header row
func WriteCSV(w io.Writer, results []contracts.ScanResult) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(Record(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.Symbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record converts one row in Header order
func Record(r contracts.ScanResult) []string {
	signal, phase := r.Signal.Label(), r.Phase.Label()
	if r.Terminal() {
		signal, phase = noDataLabel, noDataLabel
	}

	date := ""
	if !r.AsOf.IsZero() {
		date = r.AsOf.Format("2006-01-02")
	}

	watch := ""
	if r.PullbackWatch {
		watch = "✓"
	}

	return []string{
		strconv.Itoa(r.Rank),
		r.Sector,
		r.Symbol,
		r.Name,
		num(r.Price),
		num(r.Total),
		signal,
		phase,
		strconv.Itoa(r.HoldingDays),
		ptr(r.Risk.StopLoss),
		ptr(r.Risk.TrailingStop),
		ptr(r.Risk.TakeProfit),
		date,
		ptr(r.Indicators.MA5),
		ptr(r.Indicators.ShortMA),
		ptr(r.Indicators.LongMA),
		ptr(r.Indicators.ATR),
		ptr(r.Indicators.RSI),
		num(r.Score.Trend),
		num(r.Score.Momentum),
		num(r.Score.RelativeStrength),
		watch,
		r.Reason,
	}
}

func num(v float64) string {
	if !contracts.Defined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func ptr(p *float64) string {
	if p == nil {
		return ""
	}
	return num(*p)
}
