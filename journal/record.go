package journal

import (
	"time"

	"github.com/rustyeddy/optionometer/screener"
)

// FromResult converts a screen result into a run and up to top trades per
// expiry. top <= 0 keeps every trade.
func FromResult(runID string, res *screener.Result, top int) (Run, []TradeRow) {
	run := Run{
		RunID:    runID,
		Ticker:   res.Ticker,
		Mode:     string(res.Mode),
		Created:  res.Started.UTC(),
		MinDays:  res.MinDays,
		MaxDays:  res.MaxDays,
		Chains:   len(res.Chains),
		Trades:   res.NumTrades(),
		Duration: res.Elapsed,
	}

	var rows []TradeRow
	for _, c := range res.Chains {
		trades := c.Trades
		if top > 0 && len(trades) > top {
			trades = trades[:top]
		}
		for i, st := range trades {
			rows = append(rows, tradeRow(runID, c.Expiry, i+1, st))
		}
	}
	return run, rows
}

func tradeRow(runID string, expiry time.Time, rank int, st screener.ScoredTrade) TradeRow {
	return TradeRow{
		RunID:         runID,
		Expiry:        expiry.UTC(),
		Rank:          rank,
		Score:         st.Score,
		Probability:   st.Probability,
		Annualized:    st.AnnualReturn,
		HundredTrades: st.HundredTrades,
		MaxProfit:     st.MaxProfitLoss.MaxProfit,
		MaxLoss:       st.MaxProfitLoss.MaxLoss,
		Ratio:         st.MaxProfitLoss.Ratio,
		LowerSD:       st.SDPrices.OneSDDown(),
		UpperSD:       st.SDPrices.OneSDUp(),
		Contracts:     st.Contracts,
		Legs:          st.Trade.String(),
	}
}
