package screener

import (
	"github.com/rs/zerolog"

	"github.com/rustyeddy/optionometer/market"
)

// BullPutScorer ranks credit put spreads sized to a fixed margin budget.
type BullPutScorer struct {
	baseScorer
	weigher    Weigher
	maxMargin  float64
	maxResults int
}

var _ Scorer = (*BullPutScorer)(nil)

func NewBullPutScorer(th Thresholds, w Weigher, maxMargin float64, maxResults int, log zerolog.Logger) *BullPutScorer {
	return &BullPutScorer{
		baseScorer: baseScorer{th: th, log: log},
		weigher:    w,
		maxMargin:  maxMargin,
		maxResults: maxResults,
	}
}

func (s *BullPutScorer) Score(trades []Trade, underlyingPrice float64) []ScoredTrade {
	s.log.Debug().Int("trades", len(trades)).Msg("scoring bull put spreads")

	raws := make([]rawScore, 0, len(trades))
	for _, t := range trades {
		if r, ok := s.score(t, underlyingPrice); ok {
			raws = append(raws, r)
		}
	}
	return rank(normalize(raws, true, s.weigher.WeighBullPut), s.maxResults)
}

// IsBullPutSpread reports whether t sells one put and buys one lower
// strike put.
func IsBullPutSpread(t Trade) bool {
	if len(t.Sells) != 1 || len(t.Buys) != 1 {
		return false
	}
	sell, buy := t.Sells[0], t.Buys[0]
	return sell.Side == market.Put && buy.Side == market.Put && buy.Strike < sell.Strike
}

func (s *BullPutScorer) score(t Trade, underlyingPrice float64) (rawScore, bool) {
	if !IsBullPutSpread(t) {
		return rawScore{}, false
	}
	short, long := t.Sells[0], t.Buys[0]

	sd := short.ImpliedSD(underlyingPrice)
	ev, ok := s.evaluate(t, underlyingPrice, sd)
	if !ok {
		return rawScore{}, false
	}

	credit := short.Bid - long.Ask
	maxLoss := (short.Strike - long.Strike) - credit
	if maxLoss <= 0 {
		return rawScore{}, false
	}
	ratio := credit / maxLoss

	var numProfit int
	for _, p := range ev.pl {
		if p.PL > 0 {
			numProfit++
		}
	}

	contracts := int(s.maxMargin / (maxLoss * 100))
	if contracts < 1 {
		return rawScore{}, false
	}

	mpl := MaxProfitLoss{
		Ratio:        ratio,
		NumMaxProfit: numProfit,
		MaxProfit:    credit * float64(contracts),
		NumMaxLoss:   len(ev.pl) - numProfit,
		MaxLoss:      -maxLoss * float64(contracts),
		Score:        (ratio*100 + ev.probability) * (float64(numProfit) / float64(len(ev.pl))),
	}

	return rawScore{
		score: Score{
			PricePoint:    underlyingPrice - short.Strike,
			ProfitPoints:  float64(numProfit),
			Probability:   ev.probability,
			ProfitLoss:    ratio,
			AnnualReturn:  s.annualReturn(short, long, mpl, ev.probability),
			HundredTrades: float64(toInt(ev.probability)),
		},
		trade:     t,
		eval:      ev,
		maxPL:     mpl,
		contracts: contracts,
	}, true
}

// annualReturn assumes a losing trade is closed early: at 30% of max loss
// for narrow spreads and 15% otherwise.
func (s *BullPutScorer) annualReturn(short, long market.Option, mpl MaxProfitLoss, probability float64) float64 {
	spread := short.Strike - long.Strike
	multiplier := 0.15
	if spread/short.Strike < 0.01 {
		multiplier = 0.3
	}
	typicalLoss := mpl.MaxLoss * multiplier

	perYear := float64(tradesPerYear(short.DTE))
	profit := perYear * (probability / 100) * mpl.MaxProfit
	loss := perYear * ((100 - probability) / 100) * typicalLoss
	return ((profit + loss) * 100 / s.maxMargin) * 100
}

// FilterBullPuts keeps spreads whose short strike is at least minPercentBelow
// percent under the underlying price.
func FilterBullPuts(trades []Trade, underlyingPrice, minPercentBelow float64) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if len(t.Sells) == 0 {
			continue
		}
		shortStrike := t.Sells[0].Strike
		if shortStrike > underlyingPrice {
			continue
		}
		if (underlyingPrice-shortStrike)/underlyingPrice*100 >= minPercentBelow {
			out = append(out, t)
		}
	}
	return out
}
