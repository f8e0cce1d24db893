// journal/journal.go
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/optionometer/config"
)

var ErrNotFound = errors.New("not found")

// Run is one screen of a ticker.
type Run struct {
	RunID    string
	Ticker   string
	Mode     string
	Created  time.Time
	MinDays  int
	MaxDays  int
	Chains   int
	Trades   int
	Duration time.Duration
}

// TradeRow is one ranked trade of a run. Rank starts at 1 within each
// expiry.
type TradeRow struct {
	RunID         string
	Expiry        time.Time
	Rank          int
	Score         int
	Probability   float64
	Annualized    float64
	HundredTrades int
	MaxProfit     float64
	MaxLoss       float64
	Ratio         float64
	LowerSD       float64
	UpperSD       float64
	Contracts     int
	Legs          string
}

// RunFilter narrows ListRuns. Zero values match everything.
type RunFilter struct {
	Ticker string
	Limit  int
}

type Journal interface {
	RecordRun(ctx context.Context, r Run) error
	RecordTrades(ctx context.Context, rows []TradeRow) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, f RunFilter) ([]Run, error)
	ListTrades(ctx context.Context, runID string) ([]TradeRow, error)
	Close() error
}

// Open returns the journal selected by cfg, or nil when journaling is off.
func Open(ctx context.Context, cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

func durationMillis(d time.Duration) int64 {
	return d.Milliseconds()
}

func millisDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
