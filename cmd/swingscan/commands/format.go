package commands

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/wonny/swingscan/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these helpers
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled block of key/value lines
func PrintHeader(title string, kv [][2]string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
	for _, p := range kv {
		fmt.Printf("  %-10s: %s\n", p[0], p[1])
	}
	PrintSeparator()
}

// PrintProgress prints a progress step with counter
// Example: [Scan] 2330.TW [3/16]
func PrintProgress(tag string, message string, current int, total int) {
	fmt.Printf("[%s] %s [%d/%d]\n", tag, message, current, total)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// displayWidth counts East Asian wide runes as two columns
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func pad(s string, w int) string {
	if d := w - displayWidth(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, w := range widths {
		totalWidth += w
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = pad(val, widths[i])
	}
	fmt.Println(strings.TrimRight(strings.Join(cells, "  "), " "))
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

var (
	resultColumns = []string{"#", "代號", "名稱", "收盤", "總分", "信號", "階段", "持有", "停損", "備註"}
	resultWidths  = []int{3, 9, 10, 9, 6, 8, 10, 4, 9, 20}
)

// PrintResults prints scan rows as a table
func PrintResults(rows []contracts.ScanResult) {
	PrintTableHeader(resultColumns, resultWidths)
	for _, r := range rows {
		PrintTableRow(resultRow(r), resultWidths)
	}
}

func resultRow(r contracts.ScanResult) []string {
	if r.Terminal() {
		return []string{
			fmt.Sprint(r.Rank), r.Symbol, r.Name, "-", "-",
			"無數據", "-", "-", "-", r.Reason,
		}
	}

	note := ""
	switch {
	case r.EntryTrigger:
		note = "進場觸發"
	case r.PullbackWatch:
		note = "回檔觀察"
	}

	return []string{
		fmt.Sprint(r.Rank),
		r.Symbol,
		r.Name,
		fmt.Sprintf("%.2f", r.Price),
		fmt.Sprintf("%.1f", r.Total),
		r.Signal.Label(),
		r.Phase.Label(),
		fmt.Sprint(r.HoldingDays),
		optional(r.Risk.StopLoss),
		note,
	}
}

func optional(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

// PrintSummary prints report counts
func PrintSummary(report *contracts.ScanReport) {
	byStatus := report.CountByStatus()
	bySignal := report.CountBySignal()

	PrintSeparator()
	PrintKeyValue("環境", string(report.Environment), 8)
	PrintKeyValue("有效", fmt.Sprint(byStatus[contracts.StatusOK]), 8)
	PrintKeyValue("過濾", fmt.Sprint(byStatus[contracts.StatusFiltered]), 8)
	PrintKeyValue("無數據", fmt.Sprint(byStatus[contracts.StatusNoData]), 8)
	PrintKeyValue("數據錯誤", fmt.Sprint(byStatus[contracts.StatusDataError]), 8)
	for _, sig := range []contracts.Signal{contracts.SignalStrongBuy, contracts.SignalBuy, contracts.SignalWatch, contracts.SignalNone} {
		PrintKeyValue(sig.Label(), fmt.Sprint(bySignal[sig]), 8)
	}
	PrintKeyValue("耗時", report.Duration().Round(time.Millisecond).String(), 8)
}
