// Package store persists scan reports.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/swingscan/internal/contracts"
)

//go:embed schema.sql
var schema string

var _ contracts.ReportRepository = (*Postgres)(nil)

// Postgres stores reports in scan_runs / scan_results
// ⭐ SSOT: scan persistence SQL lives here only
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a repository on pool
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the tables if missing
func (r *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveReport writes the run and all rows in one transaction
func (r *Postgres) SaveReport(ctx context.Context, report *contracts.ScanReport) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO scan_runs (
			id, started_at, finished_at, benchmark, environment, strategy_hash, instrument_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			environment = EXCLUDED.environment,
			instrument_count = EXCLUDED.instrument_count
	`, report.ID, report.StartedAt, report.FinishedAt, report.Benchmark,
		string(report.Environment), report.StrategyHash, len(report.Results))
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM scan_results WHERE run_id = $1`, report.ID); err != nil {
		return fmt.Errorf("clear scan results: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range report.Results {
		scoreJSON, err := json.Marshal(row.Score)
		if err != nil {
			return fmt.Errorf("marshal score %s: %w", row.Symbol, err)
		}
		indJSON, err := json.Marshal(row.Indicators)
		if err != nil {
			return fmt.Errorf("marshal indicators %s: %w", row.Symbol, err)
		}
		riskJSON, err := json.Marshal(row.Risk)
		if err != nil {
			return fmt.Errorf("marshal risk %s: %w", row.Symbol, err)
		}

		batch.Queue(`
			INSERT INTO scan_results (
				run_id, rank, symbol, name, sector, price, as_of, status, reason,
				total, signal, phase, holding_days, relative_strength,
				entry_trigger, pullback_watch, above_min_score, score, indicators, risk
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		`, report.ID, row.Rank, row.Symbol, row.Name, row.Sector, row.Price, nullTime(row.AsOf),
			string(row.Status), row.Reason, row.Total, row.Signal.String(), row.Phase.String(),
			row.HoldingDays, row.RelativeStrength, row.EntryTrigger, row.PullbackWatch,
			row.AboveMinScore, scoreJSON, indJSON, riskJSON)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert scan results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const runColumns = `id::text, started_at, finished_at, benchmark, environment, strategy_hash, instrument_count`

// LatestReport returns the most recently started run
func (r *Postgres) LatestReport(ctx context.Context) (*contracts.ScanReport, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM scan_runs ORDER BY started_at DESC LIMIT 1`)
	return r.loadReport(ctx, row)
}

// GetReport returns one run by id
func (r *Postgres) GetReport(ctx context.Context, id string) (*contracts.ScanReport, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM scan_runs WHERE id::text = $1`, id)
	return r.loadReport(ctx, row)
}

// ListReports returns run summaries, newest first
func (r *Postgres) ListReports(ctx context.Context, limit int) ([]contracts.ReportSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+runColumns+` FROM scan_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.ReportSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan runs: %w", err)
	}
	return out, nil
}

func scanSummary(row pgx.Row) (contracts.ReportSummary, error) {
	var s contracts.ReportSummary
	var env string
	err := row.Scan(&s.ID, &s.StartedAt, &s.FinishedAt, &s.Benchmark, &env, &s.StrategyHash, &s.InstrumentCount)
	if err != nil {
		return s, err
	}
	s.Environment = contracts.MarketEnvironment(env)
	return s, nil
}

func (r *Postgres) loadReport(ctx context.Context, row pgx.Row) (*contracts.ScanReport, error) {
	s, err := scanSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scan run: %w", err)
	}

	report := &contracts.ScanReport{
		ID:           s.ID,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
		Benchmark:    s.Benchmark,
		Environment:  s.Environment,
		StrategyHash: s.StrategyHash,
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rank, symbol, name, sector, price, as_of, status, reason,
			total, signal, phase, holding_days, relative_strength,
			entry_trigger, pullback_watch, above_min_score, score, indicators, risk
		FROM scan_results
		WHERE run_id::text = $1
		ORDER BY rank ASC
	`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("query scan results: %w", err)
	}
	defer rows.Close()

	report.Results = make([]contracts.ScanResult, 0, s.InstrumentCount)
	for rows.Next() {
		var (
			res                          contracts.ScanResult
			asOf                         *time.Time
			status, signal, phase        string
			scoreJSON, indJSON, riskJSON []byte
		)
		err := rows.Scan(&res.Rank, &res.Symbol, &res.Name, &res.Sector, &res.Price, &asOf,
			&status, &res.Reason, &res.Total, &signal, &phase, &res.HoldingDays, &res.RelativeStrength,
			&res.EntryTrigger, &res.PullbackWatch, &res.AboveMinScore, &scoreJSON, &indJSON, &riskJSON)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}

		res.Status = contracts.RowStatus(status)
		if asOf != nil {
			res.AsOf = asOf.UTC()
		}
		if res.Signal, err = contracts.ParseSignal(signal); err != nil {
			return nil, err
		}
		if res.Phase, err = contracts.ParseSwingPhase(phase); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(scoreJSON, &res.Score); err != nil {
			return nil, fmt.Errorf("unmarshal score: %w", err)
		}
		if err := json.Unmarshal(indJSON, &res.Indicators); err != nil {
			return nil, fmt.Errorf("unmarshal indicators: %w", err)
		}
		if err := json.Unmarshal(riskJSON, &res.Risk); err != nil {
			return nil, fmt.Errorf("unmarshal risk: %w", err)
		}
		report.Results = append(report.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan results: %w", err)
	}
	return report, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
