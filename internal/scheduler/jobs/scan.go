package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/scanner"
	"github.com/wonny/swingscan/internal/scheduler"
	"github.com/wonny/swingscan/pkg/logger"
)

// ScanRunner is satisfied by scanner.Service
type ScanRunner interface {
	Run(ctx context.Context, symbols []string, progress contracts.ProgressFunc) (*contracts.ScanReport, error)
}

// DailyScanJob scans the whole universe after the close
// ⭐ SSOT: the scheduled scan is defined by this job only
type DailyScanJob struct {
	runner   ScanRunner
	schedule string
	topN     int
	logger   *logger.Logger
}

// NewDailyScanJob creates a scan job on the given cron schedule
func NewDailyScanJob(runner ScanRunner, schedule string, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		runner:   runner,
		schedule: schedule,
		topN:     10,
		logger:   log,
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule
func (j *DailyScanJob) Schedule() string {
	return j.schedule
}

// Run executes one full-universe scan
func (j *DailyScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled scan")

	report, err := j.runner.Run(ctx, nil, nil)
	if errors.Is(err, scanner.ErrEmptyUniverse) {
		return fmt.Errorf("%w: %v", scheduler.ErrPermanent, err)
	}
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	counts := report.CountByStatus()
	fields := map[string]interface{}{
		"scan_id":     report.ID,
		"environment": report.Environment,
		"rows":        len(report.Results),
		"ok":          counts[contracts.StatusOK],
		"filtered":    counts[contracts.StatusFiltered],
		"no_data":     counts[contracts.StatusNoData],
		"data_error":  counts[contracts.StatusDataError],
		"duration":    report.Duration(),
	}
	j.logger.WithFields(fields).Info("Scheduled scan completed")

	for _, row := range report.Top(j.topN) {
		j.logger.WithFields(map[string]interface{}{
			"rank":   row.Rank,
			"symbol": row.Symbol,
			"name":   row.Name,
			"total":  row.Total,
			"signal": row.Signal.String(),
		}).Info("Top pick")
	}

	return nil
}
