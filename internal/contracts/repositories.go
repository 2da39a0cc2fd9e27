package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: repository interfaces are declared here only

// ReportRepository persists scan reports
type ReportRepository interface {
	SaveReport(ctx context.Context, report *ScanReport) error
	LatestReport(ctx context.Context) (*ScanReport, error)
	GetReport(ctx context.Context, id string) (*ScanReport, error)
	ListReports(ctx context.Context, limit int) ([]ReportSummary, error)
}

// ReportSummary is a scan run without its rows
type ReportSummary struct {
	ID              string            `json:"id"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
	Benchmark       string            `json:"benchmark"`
	Environment     MarketEnvironment `json:"environment"`
	StrategyHash    string            `json:"strategy_hash"`
	InstrumentCount int               `json:"instrument_count"`
}
