// Package scanner runs the swing pipeline over an instrument list.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/market"
	"github.com/wonny/swingscan/internal/universe"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/metrics"
)

// ErrEmptyUniverse is returned when there is nothing to scan
var ErrEmptyUniverse = errors.New("empty instrument list")

// Deps are the collaborators of a Scanner. Only History is required.
type Deps struct {
	History      contracts.HistoryProvider
	Fundamentals contracts.FundamentalsProvider
	Names        contracts.NameLookup
	Sectors      contracts.SectorLookup
	Metrics      *metrics.Recorder
	Logger       *logger.Logger
}

// Scanner scores instruments concurrently
// ⭐ SSOT: the only place the per-instrument pipeline is assembled
type Scanner struct {
	deps   Deps
	opts   Options
	filter *universe.Filter
	log    *logger.Logger
	newID  func() string
	now    func() time.Time
}

// New validates opts and builds a scanner
func New(deps Deps, opts Options) (*Scanner, error) {
	if deps.History == nil {
		return nil, fmt.Errorf("history provider is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan options: %w", err)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Scanner{
		deps:   deps,
		opts:   opts,
		filter: universe.NewFilter(opts.Filters, deps.Fundamentals),
		log:    log.WithField("module", "scanner"),
		newID:  func() string { return uuid.NewString() },
		now:    time.Now,
	}, nil
}

// Options returns the active options
func (s *Scanner) Options() Options {
	return s.opts
}

// Scan processes every instrument and returns rows sorted by total score
// descending, ties in input order. On cancellation the rows finished so
// far are returned together with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, instruments []universe.Instrument, progress contracts.ProgressFunc) (*contracts.ScanReport, error) {
	if len(instruments) == 0 {
		s.deps.Metrics.RecordScan("empty", 0)
		return nil, ErrEmptyUniverse
	}

	report := &contracts.ScanReport{
		ID:           s.newID(),
		StartedAt:    s.now(),
		Benchmark:    s.opts.Benchmark,
		StrategyHash: s.opts.StrategyHash,
	}

	bench := s.fetchBenchmark(ctx)
	report.Environment = market.Classify(bench).Environment
	var benchBars []contracts.Bar
	if bench != nil {
		benchBars = bench.Bars
	}

	s.log.WithFields(map[string]interface{}{
		"scan_id":     report.ID,
		"instruments": len(instruments),
		"workers":     s.opts.Workers,
		"environment": report.Environment,
	}).Info("Starting scan")

	slots := make([]contracts.ScanResult, len(instruments))
	filled := make([]bool, len(instruments))

	var (
		mu   sync.Mutex
		done int
	)
	notify := func(symbol string) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		progress(done, len(instruments), symbol)
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)

	for i := range instruments {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			row, ok := s.safeProcess(ctx, instruments[i], benchBars)
			if !ok {
				return nil
			}
			slots[i] = row
			filled[i] = true
			notify(row.Symbol)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]contracts.ScanResult, 0, len(instruments))
	for i, row := range slots {
		if filled[i] {
			results = append(results, row)
		}
	}
	sort.SliceStable(results, func(a, b int) bool { return results[a].Total > results[b].Total })
	for i := range results {
		results[i].Rank = i + 1
	}

	report.Results = results
	report.FinishedAt = s.now()

	outcome := "completed"
	if ctx.Err() != nil {
		outcome = "canceled"
	}
	s.deps.Metrics.RecordScan(outcome, report.Duration())

	s.log.WithFields(map[string]interface{}{
		"scan_id":  report.ID,
		"rows":     len(results),
		"outcome":  outcome,
		"duration": report.Duration(),
	}).Info("Scan finished")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Scanner) fetchBenchmark(ctx context.Context) *contracts.BarSeries {
	if s.opts.Benchmark == "" {
		return nil
	}
	fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	bench, err := s.deps.History.FetchHistory(fctx, s.opts.Benchmark, s.opts.LookbackYears)
	if err != nil {
		s.log.WithError(err).WithField("symbol", s.opts.Benchmark).Warn("Benchmark unavailable, relative strength is neutral")
		return nil
	}
	return bench
}

// safeProcess converts a panic into a data error row. ok is false when the
// scan was cancelled while this instrument was in flight.
func (s *Scanner) safeProcess(ctx context.Context, inst universe.Instrument, bench []contracts.Bar) (row contracts.ScanResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(map[string]interface{}{
				"symbol": inst.Symbol,
				"panic":  fmt.Sprint(r),
				"stack":  string(debug.Stack()),
			}).Error("Instrument processing panicked")
			row = terminal(s.baseRow(inst), contracts.StatusDataError, contracts.ReasonDataError)
			ok = true
		}
	}()
	return s.process(ctx, inst, bench)
}

func (s *Scanner) process(ctx context.Context, inst universe.Instrument, bench []contracts.Bar) (contracts.ScanResult, bool) {
	row := s.baseRow(inst)
	log := s.log.WithField("symbol", inst.Symbol)

	if reason := s.filter.Static(inst); reason != "" {
		return s.finish(terminal(row, contracts.StatusFiltered, reason)), true
	}

	series, err := s.fetch(ctx, inst.Symbol)
	if err != nil && ctx.Err() != nil {
		return row, false
	}
	if err != nil || !series.Sufficient() {
		if err != nil && !errors.Is(err, contracts.ErrNotFound) {
			log.WithError(err).Warn("History fetch failed")
		}
		if latest, ok := series.Latest(); ok {
			row.Price = latest.Close
			row.AsOf = latest.Date
		}
		return s.finish(terminal(row, contracts.StatusNoData, contracts.ReasonNoData)), true
	}

	latest, _ := series.Latest()
	row.Price = latest.Close
	row.AsOf = latest.Date

	if reason := s.filter.Liquidity(series); reason != "" {
		return s.finish(terminal(row, contracts.StatusFiltered, reason)), true
	}

	fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	reason, note := s.filter.Fundamentals(fctx, inst.Symbol)
	cancel()
	if note != "" {
		log.Debug(note)
	}
	if reason != "" {
		return s.finish(terminal(row, contracts.StatusFiltered, reason)), true
	}

	out := Evaluate(row, series, bench, s.opts)
	if out.Status == contracts.StatusDataError {
		log.Warn("Latest bar has undefined indicators")
	}
	return s.finish(out), true
}

func (s *Scanner) fetch(ctx context.Context, symbol string) (*contracts.BarSeries, error) {
	fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	series, err := s.deps.History.FetchHistory(fctx, symbol, s.opts.LookbackYears)
	result := "ok"
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	s.deps.Metrics.RecordFetch(result, time.Since(start))
	return series, err
}

func (s *Scanner) baseRow(inst universe.Instrument) contracts.ScanResult {
	row := contracts.ScanResult{
		Symbol: inst.Symbol,
		Name:   inst.Name,
		Sector: inst.Sector,
		Phase:  contracts.PhaseNotQualified,
	}
	if row.Name == "" {
		row.Name = inst.Symbol
		if s.deps.Names != nil {
			row.Name = s.deps.Names.Name(inst.Symbol)
		}
	}
	if row.Sector == "" {
		row.Sector = universe.DefaultSector
		if s.deps.Sectors != nil {
			row.Sector = s.deps.Sectors.Sector(inst.Symbol)
		}
	}
	return row
}

func (s *Scanner) finish(row contracts.ScanResult) contracts.ScanResult {
	s.deps.Metrics.RecordRow(string(row.Status), row.Symbol, row.Total)
	return row
}
