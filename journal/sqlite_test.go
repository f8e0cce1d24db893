package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/optionometer/config"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func testRun(id, ticker string, created time.Time) Run {
	return Run{
		RunID:    id,
		Ticker:   ticker,
		Mode:     config.ModeStrategyOptimizer,
		Created:  created,
		MinDays:  20,
		MaxDays:  60,
		Chains:   2,
		Trades:   3,
		Duration: 1500 * time.Millisecond,
	}
}

func testRows(runID string) []TradeRow {
	e1 := time.Date(2025, 10, 17, 20, 0, 0, 0, time.UTC)
	e2 := e1.AddDate(0, 0, 7)
	row := func(expiry time.Time, rank, score int) TradeRow {
		return TradeRow{
			RunID:         runID,
			Expiry:        expiry,
			Rank:          rank,
			Score:         score,
			Probability:   76.81,
			Annualized:    899.46,
			HundredTrades: 77,
			MaxProfit:     102,
			MaxLoss:       -98,
			Ratio:         1.04,
			LowerSD:       91.4,
			UpperSD:       108.6,
			Contracts:     40,
			Legs:          "BUY [PUT 90] - SELL [PUT 95]",
		}
	}
	// deliberately out of order
	return []TradeRow{row(e2, 1, 300), row(e1, 2, 150), row(e1, 1, 400)}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','run_trades')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["run_trades"])
}

func TestNewSQLiteCreatesDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "journal.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	assert.NoError(t, j.Close())
	assert.FileExists(t, path)
}

func TestSQLiteRecordAndGetRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)

	created := time.Date(2025, 9, 17, 15, 4, 5, 0, time.UTC)
	run := testRun("01K5BQ3R4Z0000000000000000", "QQQ", created)
	require.NoError(t, j.RecordRun(ctx, run))

	got, err := j.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, "QQQ", got.Ticker)
	assert.Equal(t, run.Mode, got.Mode)
	assert.True(t, got.Created.Equal(created))
	assert.Equal(t, 20, got.MinDays)
	assert.Equal(t, 60, got.MaxDays)
	assert.Equal(t, 2, got.Chains)
	assert.Equal(t, 3, got.Trades)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)

	// duplicate ids are rejected
	assert.Error(t, j.RecordRun(ctx, run))
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	_, err := j.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)

	base := time.Date(2025, 9, 17, 15, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordRun(ctx, testRun("A", "QQQ", base)))
	require.NoError(t, j.RecordRun(ctx, testRun("B", "SPY", base.Add(time.Minute))))
	require.NoError(t, j.RecordRun(ctx, testRun("C", "QQQ", base.Add(2*time.Minute))))

	all, err := j.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "C", all[0].RunID)
	assert.Equal(t, "B", all[1].RunID)
	assert.Equal(t, "A", all[2].RunID)

	qqq, err := j.ListRuns(ctx, RunFilter{Ticker: "qqq"})
	require.NoError(t, err)
	require.Len(t, qqq, 2)
	assert.Equal(t, "C", qqq[0].RunID)

	limited, err := j.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "C", limited[0].RunID)

	none, err := j.ListRuns(ctx, RunFilter{Ticker: "IWM"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteRecordTrades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)

	run := testRun("R1", "QQQ", time.Now())
	require.NoError(t, j.RecordRun(ctx, run))
	require.NoError(t, j.RecordTrades(ctx, testRows(run.RunID)))
	require.NoError(t, j.RecordTrades(ctx, nil))

	got, err := j.ListTrades(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// expiry then rank
	assert.Equal(t, 400, got[0].Score)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 150, got[1].Score)
	assert.Equal(t, 300, got[2].Score)
	assert.True(t, got[2].Expiry.After(got[0].Expiry))

	first := got[0]
	assert.Equal(t, "R1", first.RunID)
	assert.Equal(t, time.Date(2025, 10, 17, 20, 0, 0, 0, time.UTC), first.Expiry)
	assert.InDelta(t, 76.81, first.Probability, 1e-9)
	assert.InDelta(t, 899.46, first.Annualized, 1e-9)
	assert.Equal(t, 77, first.HundredTrades)
	assert.InDelta(t, 102, first.MaxProfit, 1e-9)
	assert.InDelta(t, -98, first.MaxLoss, 1e-9)
	assert.InDelta(t, 1.04, first.Ratio, 1e-9)
	assert.InDelta(t, 91.4, first.LowerSD, 1e-9)
	assert.InDelta(t, 108.6, first.UpperSD, 1e-9)
	assert.Equal(t, 40, first.Contracts)
	assert.Equal(t, "BUY [PUT 90] - SELL [PUT 95]", first.Legs)

	other, err := j.ListTrades(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteRecordTradesIsAtomic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)

	rows := testRows("R1")
	rows = append(rows, rows[0]) // duplicate primary key

	assert.Error(t, j.RecordTrades(ctx, rows))

	got, err := j.ListTrades(ctx, "R1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	j, err := Open(ctx, config.JournalConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, j)

	j, err = Open(ctx, config.JournalConfig{})
	require.NoError(t, err)
	assert.Nil(t, j)

	j, err = Open(ctx, config.JournalConfig{Type: "sqlite", DBPath: filepath.Join(t.TempDir(), "j.sqlite")})
	require.NoError(t, err)
	require.IsType(t, &SQLite{}, j)
	assert.NoError(t, j.Close())

	_, err = Open(ctx, config.JournalConfig{Type: "mongo"})
	assert.ErrorContains(t, err, `unknown journal type "mongo"`)
}
