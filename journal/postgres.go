package journal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores runs in the same tables as SQLite.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Journal = (*Postgres)(nil)

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func (j *Postgres) RecordRun(ctx context.Context, r Run) error {
	_, err := j.pool.Exec(ctx, `
		INSERT INTO runs
		(run_id, ticker, mode, created, min_days, max_days, chains, trades, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.RunID, r.Ticker, r.Mode, r.Created.UTC(), r.MinDays, r.MaxDays,
		r.Chains, r.Trades, durationMillis(r.Duration),
	)
	return err
}

// RecordTrades sends every insert in one batch inside a transaction.
func (j *Postgres) RecordTrades(ctx context.Context, rows []TradeRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := j.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, t := range rows {
		batch.Queue(`
			INSERT INTO run_trades
			(run_id, expiry, rank, score, probability, annualized, hundred_trades,
			 max_profit, max_loss, ratio, lower_sd, upper_sd, contracts, legs)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			t.RunID, t.Expiry.UTC(), t.Rank, t.Score, t.Probability, t.Annualized, t.HundredTrades,
			t.MaxProfit, t.MaxLoss, t.Ratio, t.LowerSD, t.UpperSD, t.Contracts, t.Legs,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, t := range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert trade %d of %s: %w", t.Rank, t.RunID, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (j *Postgres) GetRun(ctx context.Context, runID string) (Run, error) {
	r, err := scanRun(j.pool.QueryRow(ctx, selectRun+` WHERE run_id = $1`, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return r, err
}

func (j *Postgres) ListRuns(ctx context.Context, f RunFilter) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if f.Ticker != "" {
		args = append(args, strings.ToUpper(f.Ticker))
		where = append(where, "ticker = $"+strconv.Itoa(len(args)))
	}

	q := selectRun
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created DESC, run_id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := j.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *Postgres) ListTrades(ctx context.Context, runID string) ([]TradeRow, error) {
	rows, err := j.pool.Query(ctx, selectTrades+` WHERE run_id = $1 ORDER BY expiry ASC, rank ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRow
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *Postgres) Close() error {
	j.pool.Close()
	return nil
}
