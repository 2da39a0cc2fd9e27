package commands

import (
	"context"
	"fmt"
	"math"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/external/twse"
	"github.com/wonny/swingscan/internal/external/yahoo"
	"github.com/wonny/swingscan/internal/history"
	"github.com/wonny/swingscan/internal/scanner"
	"github.com/wonny/swingscan/internal/store"
	"github.com/wonny/swingscan/internal/strategyconfig"
	"github.com/wonny/swingscan/internal/universe"
	"github.com/wonny/swingscan/pkg/config"
	"github.com/wonny/swingscan/pkg/database"
	"github.com/wonny/swingscan/pkg/httputil"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/metrics"
	"github.com/wonny/swingscan/pkg/redis"
)

const keyPrefix = "swingscan"

// app holds everything a command needs. Build with newApp, release with close.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	universe *universe.Universe
	taxonomy *universe.Taxonomy
	metrics  *metrics.Recorder
	listings *twse.Client
	repo     contracts.ReportRepository
	db       *database.DB
	service  *scanner.Service

	closers []func()
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.Scan.StrategyFile = strategyFile
	}
	if universeFile != "" {
		cfg.Scan.UniverseFile = universeFile
	}
	if scanWorkers > 0 {
		cfg.Scan.Workers = scanWorkers
	}
	if scanLookback > 0 {
		cfg.Scan.LookbackYears = scanLookback
	}
	return cfg, nil
}

// newApp wires config → logger → redis → providers → scanner → store
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	a.strategy, _, err = strategyconfig.Load(cfg.Scan.StrategyFile)
	if err != nil {
		return nil, err
	}
	for _, w := range strategyconfig.Suggestions(a.strategy.Scoring.Weights) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	a.universe, err = universe.Load(cfg.Scan.UniverseFile)
	if err != nil {
		return nil, err
	}
	a.taxonomy = a.universe.Taxonomy()

	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rc = redis.Disabled()
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	cache := redis.NewCache(rc, keyPrefix)

	yahooHTTP := httputil.New(log).WithPacing(cfg.Yahoo.RatePerSec, cfg.Yahoo.Burst)
	twseHTTP := httputil.New(log)
	if rc.Enabled() {
		// shared across processes, same per-second budget as the local pacer
		limiter := redis.NewRateLimiter(rc, keyPrefix)
		yahooLimit := redis.YahooRateLimit
		if n := int(math.Round(cfg.Yahoo.RatePerSec)); n > 0 {
			yahooLimit.Limit = n
		}
		yahooHTTP.WithRateLimiter(limiter, yahooLimit)
		twseHTTP.WithRateLimiter(limiter, redis.TWSERateLimit)
	}
	yc := yahoo.NewClient(yahooHTTP, log, cfg.Yahoo.BaseURL)

	var hist contracts.HistoryProvider = history.NewSuffixFallback(yc)
	var fund contracts.FundamentalsProvider = yc
	a.listings = twse.NewClient(twseHTTP, log, cfg.TWSE.ListedURL, cfg.TWSE.OTCURL)
	if rc.Enabled() {
		hist = history.NewCached(hist, cache, log)
		fund = history.NewCachedFundamentals(yc, cache, log)
		a.listings.WithCache(cache)
	}

	opts, err := scanner.FromStrategy(a.strategy)
	if err != nil {
		return nil, err
	}
	opts.Workers = cfg.Scan.Workers
	opts.LookbackYears = cfg.Scan.LookbackYears
	opts.FetchTimeout = cfg.Scan.FetchTimeout
	if cfg.Scan.Benchmark != "" {
		opts.Benchmark = cfg.Scan.Benchmark
	}

	sc, err := scanner.New(scanner.Deps{
		History:      hist,
		Fundamentals: fund,
		Names:        a.taxonomy,
		Sectors:      a.taxonomy,
		Metrics:      a.metrics,
		Logger:       log,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("create scanner: %w", err)
	}

	a.repo, err = a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.service = scanner.NewService(sc, a.universe, a.repo, log)

	log.WithFields(map[string]interface{}{
		"strategy":    a.strategy.Meta.StrategyID,
		"universe":    a.universe.Name,
		"instruments": len(a.universe.Instruments),
		"benchmark":   opts.Benchmark,
		"workers":     opts.Workers,
		"redis":       rc.Enabled(),
		"database":    cfg.Database.Enabled(),
	}).Debug("Application wired")

	return a, nil
}

// openStore uses PostgreSQL when DATABASE_URL is set, memory otherwise
func (a *app) openStore(ctx context.Context) (contracts.ReportRepository, error) {
	if !a.cfg.Database.Enabled() {
		return store.NewMemory(store.DefaultMemoryCapacity), nil
	}

	db, err := database.New(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	a.db = db

	pg := store.NewPostgres(db.Pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	a.log.Info("Connected to database")
	return pg, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
