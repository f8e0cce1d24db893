package screener

import (
	"math"

	"github.com/rs/zerolog"
)

// OptimizerScorer ranks arbitrary multi-leg trades on seven metrics.
type OptimizerScorer struct {
	baseScorer
	weigher    Weigher
	maxResults int
}

var _ Scorer = (*OptimizerScorer)(nil)

func NewOptimizerScorer(th Thresholds, w Weigher, maxResults int, log zerolog.Logger) *OptimizerScorer {
	return &OptimizerScorer{
		baseScorer: baseScorer{th: th, log: log},
		weigher:    w,
		maxResults: maxResults,
	}
}

func (s *OptimizerScorer) Score(trades []Trade, underlyingPrice float64) []ScoredTrade {
	s.log.Debug().Int("trades", len(trades)).Msg("scoring trades")

	raws := make([]rawScore, 0, len(trades)/4)
	for _, t := range trades {
		if r, ok := s.score(t, underlyingPrice); ok {
			raws = append(raws, r)
		}
	}

	hundredIgnoresNegative := s.weigher.HundredTrades <= 1
	return rank(normalize(raws, hundredIgnoresNegative, s.weigher.Weigh), s.maxResults)
}

func (s *OptimizerScorer) score(t Trade, underlyingPrice float64) (rawScore, bool) {
	sd := meanImpliedSD(t, underlyingPrice)
	ev, ok := s.evaluate(t, underlyingPrice, sd)
	if !ok {
		return rawScore{}, false
	}

	delta, deltaScore := deltas(t)
	mpl := s.maxProfitLoss(ev.pl, ev.prices)
	return rawScore{
		score: Score{
			PricePoint:    pricePointScore(ev.pl, underlyingPrice, sd),
			ProfitPoints:  s.profitablePoints(ev.pl, ev.prices),
			Probability:   ev.probability,
			ProfitLoss:    mpl.Score,
			AnnualReturn:  ev.annualReturn,
			Delta:         deltaScore,
			HundredTrades: float64(s.hundredTrades(ev.pl, ev.probability)),
		},
		trade: t,
		eval:  ev,
		maxPL: mpl,
		delta: delta,
	}, true
}

func meanImpliedSD(t Trade, underlyingPrice float64) float64 {
	legs := t.Legs()
	if len(legs) == 0 {
		return 0
	}
	var sum float64
	for _, o := range legs {
		sum += o.ImpliedSD(underlyingPrice)
	}
	return sum / float64(len(legs))
}

// pricePointScore sums P/L across the range, weighting prices near the
// underlying more heavily.
func pricePointScore(pl []PricePoint, underlyingPrice, sd float64) float64 {
	var total float64
	for _, p := range pl {
		diff := math.Abs(underlyingPrice - float64(p.Price))
		var multiple float64
		if diff < sd {
			multiple = 2 + sd/math.Max(diff, 1)
		} else {
			multiple = 1 + sd/diff
		}
		total += p.PL * multiple
	}
	return total
}

// deltas returns the net delta of the trade and a score favoring trades
// that buy more delta than they sell.
func deltas(t Trade) (net, score float64) {
	for _, o := range t.Legs() {
		net += o.Delta
	}
	for _, o := range t.Buys {
		score += math.Abs(o.Delta)
	}
	for _, o := range t.Sells {
		score -= math.Abs(o.Delta)
	}
	return net, score
}

// hundredTrades estimates the P/L, in cents per share, of placing the trade
// one hundred times.
func (s *OptimizerScorer) hundredTrades(pl []PricePoint, probability float64) int {
	maxProfit, maxLoss := maxPL(pl), minPL(pl)

	var numMaxProfit, numProfitable, numMaxLoss, numLosses, numBelowMin int
	var profitSum, belowMinSum float64
	for _, p := range pl {
		if equivalent(p.PL, maxProfit) {
			numMaxProfit++
		}
		if equivalent(p.PL, maxLoss) {
			numMaxLoss++
		}
		if p.PL > s.th.MinProfitAmount {
			numProfitable++
			profitSum += p.PL
		}
		if p.PL < 0 {
			numLosses++
		}
		if p.PL < s.th.MinProfitAmount {
			numBelowMin++
			belowMinSum += p.PL
		}
	}

	targetProfit := maxProfit
	if numMaxProfit <= numProfitable/2 {
		targetProfit = average(profitSum, numProfitable)
	}
	typicalLoss := maxLoss
	if numMaxLoss <= numLosses/2 {
		typicalLoss = average(belowMinSum, numBelowMin)
	}

	wins := toInt(probability)
	losses := 100 - wins
	return toInt((float64(losses)*typicalLoss + float64(wins)*targetProfit) * 100)
}
