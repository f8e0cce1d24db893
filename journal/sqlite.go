package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(SQLiteSchema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(ctx context.Context, r Run) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, ticker, mode, created, min_days, max_days, chains, trades, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Ticker, r.Mode, r.Created.UTC(), r.MinDays, r.MaxDays,
		r.Chains, r.Trades, durationMillis(r.Duration),
	)
	return err
}

// RecordTrades inserts rows in one transaction.
func (j *SQLite) RecordTrades(ctx context.Context, rows []TradeRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_trades
		(run_id, expiry, rank, score, probability, annualized, hundred_trades,
		 max_profit, max_loss, ratio, lower_sd, upper_sd, contracts, legs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range rows {
		if _, err := stmt.ExecContext(ctx,
			t.RunID, t.Expiry.UTC(), t.Rank, t.Score, t.Probability, t.Annualized, t.HundredTrades,
			t.MaxProfit, t.MaxLoss, t.Ratio, t.LowerSD, t.UpperSD, t.Contracts, t.Legs,
		); err != nil {
			return fmt.Errorf("insert trade %d of %s: %w", t.Rank, t.RunID, err)
		}
	}
	return tx.Commit()
}

func (j *SQLite) GetRun(ctx context.Context, runID string) (Run, error) {
	row := j.db.QueryRowContext(ctx, selectRun+` WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns runs newest first.
func (j *SQLite) ListRuns(ctx context.Context, f RunFilter) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if f.Ticker != "" {
		where = append(where, "ticker = ?")
		args = append(args, strings.ToUpper(f.Ticker))
	}

	q := selectRun
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created DESC, run_id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrades returns the trades of a run by expiry, then rank.
func (j *SQLite) ListTrades(ctx context.Context, runID string) ([]TradeRow, error) {
	rows, err := j.db.QueryContext(ctx, selectTrades+` WHERE run_id = ? ORDER BY expiry ASC, rank ASC`, runID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
