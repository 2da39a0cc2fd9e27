package store

import (
	"context"
	"sort"
	"sync"

	"github.com/wonny/swingscan/internal/contracts"
)

// DefaultMemoryCapacity bounds the in-memory history
const DefaultMemoryCapacity = 50

var _ contracts.ReportRepository = (*Memory)(nil)

// Memory keeps the most recent reports in process. Used when no database
// is configured.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	reports  []*contracts.ScanReport // oldest first
}

// NewMemory creates a store that keeps at most capacity reports
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{capacity: capacity}
}

// SaveReport stores a copy of report, replacing one with the same ID
func (m *Memory) SaveReport(_ context.Context, report *contracts.ScanReport) error {
	cp := clone(report)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reports {
		if r.ID == cp.ID {
			m.reports[i] = cp
			return nil
		}
	}
	m.reports = append(m.reports, cp)
	if len(m.reports) > m.capacity {
		m.reports = m.reports[len(m.reports)-m.capacity:]
	}
	return nil
}

// LatestReport returns the report with the latest start time
func (m *Memory) LatestReport(_ context.Context) (*contracts.ScanReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *contracts.ScanReport
	for _, r := range m.reports {
		if latest == nil || !r.StartedAt.Before(latest.StartedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, contracts.ErrNotFound
	}
	return clone(latest), nil
}

// GetReport returns a report by ID
func (m *Memory) GetReport(_ context.Context, id string) (*contracts.ScanReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reports {
		if r.ID == id {
			return clone(r), nil
		}
	}
	return nil, contracts.ErrNotFound
}

// ListReports returns summaries newest first
func (m *Memory) ListReports(_ context.Context, limit int) ([]contracts.ReportSummary, error) {
	m.mu.RLock()
	out := make([]contracts.ReportSummary, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, summarize(r))
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func summarize(r *contracts.ScanReport) contracts.ReportSummary {
	return contracts.ReportSummary{
		ID:              r.ID,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		Benchmark:       r.Benchmark,
		Environment:     r.Environment,
		StrategyHash:    r.StrategyHash,
		InstrumentCount: len(r.Results),
	}
}

// clone copies the row slice so callers cannot mutate stored reports
func clone(r *contracts.ScanReport) *contracts.ScanReport {
	cp := *r
	cp.Results = append([]contracts.ScanResult(nil), r.Results...)
	return &cp
}
