package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/optionometer/screener"
)

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 9, 17, 15, 4, 5, 0, time.UTC)
	run := testRun("01K5BQ3R4Z0000000000000000", "QQQ", created)
	rows := testRows(run.RunID)

	result := FormatRunOrg(run, []TradeRow{rows[2], rows[1], rows[0]})

	// Check heading
	assert.Contains(t, result, "* SCREEN: QQQ STRATEGY_OPTIMIZER (01K5BQ3R)")

	// Check properties drawer
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":RUN_ID:   01K5BQ3R4Z0000000000000000")
	assert.Contains(t, result, ":WINDOW:   20-60 days")
	assert.Contains(t, result, ":CHAINS:   2")
	assert.Contains(t, result, ":TRADES:   3")
	assert.Contains(t, result, ":DURATION: 1.5s")
	assert.Contains(t, result, ":CREATED:  [2025-09-17 Wed 15:04]")
	assert.Contains(t, result, ":END:")

	// One table per expiry
	assert.Equal(t, 1, strings.Count(result, "** Expiry 2025-10-17"))
	assert.Equal(t, 1, strings.Count(result, "** Expiry 2025-10-24"))
	assert.Contains(t, result, "| 1 | 400 | 76.81 | 899.46 | 1.04 | 40 | BUY [PUT 90] - SELL [PUT 95] |")
}

func TestFormatRunOrgNoTrades(t *testing.T) {
	t.Parallel()

	result := FormatRunOrg(testRun("short", "SPY", time.Now()), nil)
	assert.Contains(t, result, "* SCREEN: SPY STRATEGY_OPTIMIZER (short)")
	assert.Contains(t, result, "# no trades recorded")
	assert.NotContains(t, result, "** Expiry")
}

func TestFormatRunsOrg(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 9, 17, 15, 0, 0, 0, time.UTC)
	runs := []Run{testRun("A", "QQQ", base), testRun("B", "SPY", base.Add(time.Hour))}

	result := FormatRunsOrg(runs)
	lines := strings.Split(strings.TrimSpace(result), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| A | 2025-09-17T15:00:00Z | QQQ | STRATEGY_OPTIMIZER | 2 | 3 | 1.5s |", lines[2])
	assert.Contains(t, lines[3], "| B |")

	assert.Empty(t, FormatRunsOrg(nil))
}

func TestFromResult(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 9, 17, 15, 0, 0, 0, time.UTC)
	e1 := time.Date(2025, 10, 17, 20, 0, 0, 0, time.UTC)
	trade := func(score int) screener.ScoredTrade {
		return screener.ScoredTrade{
			Score:         score,
			Probability:   60,
			SDPrices:      screener.NewSDPrices(100, 8),
			Contracts:     1,
			MaxProfitLoss: screener.MaxProfitLoss{MaxProfit: 2, MaxLoss: -3, Ratio: 0.67},
		}
	}

	res := &screener.Result{
		Ticker:  "QQQ",
		Mode:    screener.BullPutSpreadScreener,
		MinDays: 20,
		MaxDays: 60,
		Started: started,
		Elapsed: 2 * time.Second,
		Chains: []screener.ChainResult{
			{Expiry: e1, DTE: 30, Trades: []screener.ScoredTrade{trade(300), trade(200), trade(100)}},
			{Expiry: e1.AddDate(0, 0, 7), DTE: 37},
		},
	}

	run, rows := FromResult("R1", res, 2)
	assert.Equal(t, "R1", run.RunID)
	assert.Equal(t, "QQQ", run.Ticker)
	assert.Equal(t, "BULL_PUT_SPREAD_SCREENER", run.Mode)
	assert.Equal(t, started, run.Created)
	assert.Equal(t, 2, run.Chains)
	assert.Equal(t, 3, run.Trades)
	assert.Equal(t, 2*time.Second, run.Duration)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 300, rows[0].Score)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, e1, rows[0].Expiry)
	assert.InDelta(t, 92, rows[0].LowerSD, 1e-9)
	assert.InDelta(t, 108, rows[0].UpperSD, 1e-9)
	assert.Equal(t, "BUY [] - SELL []", rows[0].Legs)

	_, all := FromResult("R1", res, 0)
	assert.Len(t, all, 3)
}
