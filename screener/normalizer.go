package screener

import (
	"sort"
)

// Percentiles ranks values against each other. The lowest value gets 0 and
// the highest 100, evenly spaced by sorted position. With ignoreNonPositive,
// values <= 0 always get 0. Output is in input order.
func Percentiles(values []float64, ignoreNonPositive bool) []float64 {
	out := make([]float64, len(values))
	if len(values) < 2 {
		return out
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	interval := 100.0 / float64(len(values)-1)
	for rank, idx := range order {
		if ignoreNonPositive && values[idx] <= 0 {
			continue
		}
		out[idx] = float64(rank) * interval
	}
	return out
}

// normalize ranks every metric across the cohort and combines the ranks
// with weigh. Trades with the same legs are scored once; the last one wins.
func normalize(raws []rawScore, hundredIgnoresNegative bool, weigh func(Score) float64) []ScoredTrade {
	cohort := dedupe(raws)
	if len(cohort) == 0 {
		return nil
	}

	metric := func(get func(Score) float64, ignore bool) []float64 {
		vals := make([]float64, len(cohort))
		for i, r := range cohort {
			vals[i] = get(r.score)
		}
		return Percentiles(vals, ignore)
	}

	pricePoint := metric(func(s Score) float64 { return s.PricePoint }, true)
	profitPoints := metric(func(s Score) float64 { return s.ProfitPoints }, true)
	probability := metric(func(s Score) float64 { return s.Probability }, true)
	profitLoss := metric(func(s Score) float64 { return s.ProfitLoss }, true)
	annual := metric(func(s Score) float64 { return s.AnnualReturn }, true)
	delta := metric(func(s Score) float64 { return s.Delta }, true)
	hundred := metric(func(s Score) float64 { return s.HundredTrades }, hundredIgnoresNegative)

	out := make([]ScoredTrade, len(cohort))
	for i, r := range cohort {
		total := weigh(Score{
			PricePoint:    pricePoint[i],
			ProfitPoints:  profitPoints[i],
			Probability:   probability[i],
			ProfitLoss:    profitLoss[i],
			AnnualReturn:  annual[i],
			Delta:         delta[i],
			HundredTrades: hundred[i],
		})
		out[i] = ScoredTrade{
			Score:         toInt(total),
			Trade:         r.trade,
			Probability:   r.eval.probability,
			AnnualReturn:  r.score.AnnualReturn,
			HundredTrades: toInt(r.score.HundredTrades),
			MaxProfitLoss: r.maxPL,
			SDPrices:      r.eval.prices,
			TradeDelta:    r.delta,
			Contracts:     max(r.contracts, 1),
			ProfitLoss:    r.eval.pl,
		}
	}
	return out
}

func dedupe(raws []rawScore) []rawScore {
	pos := make(map[string]int, len(raws))
	out := make([]rawScore, 0, len(raws))
	for _, r := range raws {
		k := r.trade.Key()
		if i, ok := pos[k]; ok {
			out[i] = r
			continue
		}
		pos[k] = len(out)
		out = append(out, r)
	}
	return out
}

// rank sorts by score, highest first, drops non-positive scores and keeps
// at most limit trades.
func rank(trades []ScoredTrade, limit int) []ScoredTrade {
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Score > trades[j].Score })

	n := 0
	for n < len(trades) && trades[n].Score > 0 {
		n++
	}
	trades = trades[:n]
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades
}
