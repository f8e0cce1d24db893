package journal

const selectRun = `
	SELECT run_id, ticker, mode, created, min_days, max_days, chains, trades, duration_ms
	FROM runs`

const selectTrades = `
	SELECT run_id, expiry, rank, score, probability, annualized, hundred_trades,
	       max_profit, max_loss, ratio, lower_sd, upper_sd, contracts, legs
	FROM run_trades`

// scanner is satisfied by database/sql and pgx rows alike.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r  Run
		ms int64
	)
	err := s.Scan(
		&r.RunID,
		&r.Ticker,
		&r.Mode,
		&r.Created,
		&r.MinDays,
		&r.MaxDays,
		&r.Chains,
		&r.Trades,
		&ms,
	)
	if err != nil {
		return Run{}, err
	}
	r.Created = r.Created.UTC()
	r.Duration = millisDuration(ms)
	return r, nil
}

func scanTrade(s scanner) (TradeRow, error) {
	var t TradeRow
	err := s.Scan(
		&t.RunID,
		&t.Expiry,
		&t.Rank,
		&t.Score,
		&t.Probability,
		&t.Annualized,
		&t.HundredTrades,
		&t.MaxProfit,
		&t.MaxLoss,
		&t.Ratio,
		&t.LowerSD,
		&t.UpperSD,
		&t.Contracts,
		&t.Legs,
	)
	if err != nil {
		return TradeRow{}, err
	}
	t.Expiry = t.Expiry.UTC()
	return t, nil
}
