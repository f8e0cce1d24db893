package screener

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Thresholds reject trades before they are ranked.
type Thresholds struct {
	MinAnnualReturn float64 // percent
	MinProbability  float64 // percent
	MinProfitAmount float64 // per share
}

// Score holds the raw, un-normalized metrics of a trade.
type Score struct {
	PricePoint    float64
	ProfitPoints  float64
	Probability   float64
	ProfitLoss    float64
	AnnualReturn  float64
	Delta         float64
	HundredTrades float64
}

type MaxProfitLoss struct {
	Ratio        float64
	NumMaxProfit int
	MaxProfit    float64
	NumMaxLoss   int
	MaxLoss      float64
	Score        float64
}

// PricePoint is the trade's profit or loss at one whole-dollar settlement
// price.
type PricePoint struct {
	Price int
	PL    float64
}

// ScoredTrade is a trade that passed every threshold, with its final
// weighted score.
type ScoredTrade struct {
	Score         int
	Trade         Trade
	Probability   float64
	AnnualReturn  float64
	HundredTrades int
	MaxProfitLoss MaxProfitLoss
	SDPrices      SDPrices
	TradeDelta    float64
	Contracts     int
	ProfitLoss    []PricePoint
}

func (s ScoredTrade) String() string {
	return fmt.Sprintf("score=%d prob=%.2f%% annual=%.2f%% contracts=%d %s",
		s.Score, s.Probability, s.AnnualReturn, s.Contracts, s.Trade)
}

// Scorer ranks a set of trades on one chain. Results are sorted by score,
// highest first, and contain only positive scores.
type Scorer interface {
	Score(trades []Trade, underlyingPrice float64) []ScoredTrade
}

// rawScore is a trade scored on its own, before ranking against the cohort.
type rawScore struct {
	score     Score
	trade     Trade
	eval      evaluation
	maxPL     MaxProfitLoss
	delta     float64
	contracts int
}

type evaluation struct {
	sd           float64
	prices       SDPrices
	pl           []PricePoint
	probability  float64
	annualReturn float64
}

type baseScorer struct {
	th  Thresholds
	log zerolog.Logger
}

// evaluate applies the shared thresholds. ok is false when the trade should
// be dropped.
func (b baseScorer) evaluate(t Trade, underlyingPrice, sd float64) (ev evaluation, ok bool) {
	legs := t.Legs()
	if len(legs) == 0 || underlyingPrice <= 0 || !(sd > 0) || math.IsInf(sd, 0) {
		return ev, false
	}

	prices := NewSDPrices(underlyingPrice, sd)
	pl := profitLossByPrice(t, prices)
	if len(pl) == 0 {
		return ev, false
	}

	anyProfit := false
	for _, p := range pl {
		if p.PL >= b.th.MinProfitAmount {
			anyProfit = true
			break
		}
	}
	if !anyProfit {
		return ev, false
	}

	probability := b.successProbability(pl, underlyingPrice, sd)
	if probability < b.th.MinProbability {
		return ev, false
	}

	annualReturn := b.annualReturn(legs[0].DTE, probability, pl, prices, t.RequiredMargin())
	if annualReturn < b.th.MinAnnualReturn {
		return ev, false
	}

	return evaluation{
		sd:           sd,
		prices:       prices,
		pl:           pl,
		probability:  probability,
		annualReturn: annualReturn,
	}, true
}

func profitLossByPrice(t Trade, prices SDPrices) []PricePoint {
	lo, hi := int(prices.Lower), int(prices.Upper)
	if hi < lo {
		return nil
	}
	out := make([]PricePoint, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		out = append(out, PricePoint{Price: p, PL: t.ProfitLossAt(float64(p))})
	}
	return out
}

// successProbability sums the normal distribution over every run of
// consecutive profitable prices, as a percent.
func (b baseScorer) successProbability(pl []PricePoint, underlyingPrice, sd float64) float64 {
	var total float64
	start := -1
	for i, p := range pl {
		profitable := p.PL > b.th.MinProfitAmount
		if profitable && start < 0 {
			start = i
		}
		last := i == len(pl)-1
		if start >= 0 && (!profitable || last) {
			end := i - 1
			if profitable {
				end = i
			}
			total += probabilityBetween(float64(pl[start].Price), float64(pl[end].Price), underlyingPrice, sd)
			start = -1
		}
	}
	return total * 100
}

// maxProfitLoss compares the best profit within one SD to the worst loss
// within two SD.
func (b baseScorer) maxProfitLoss(pl []PricePoint, prices SDPrices) MaxProfitLoss {
	maxProfit, minLoss := math.Inf(-1), math.Inf(1)
	for _, p := range pl {
		band := prices.Band(float64(p.Price))
		if band < 2 {
			maxProfit = math.Max(maxProfit, p.PL)
		}
		if band < 3 {
			minLoss = math.Min(minLoss, p.PL)
		}
	}
	if math.IsInf(maxProfit, -1) {
		maxProfit = maxPL(pl)
	}
	if math.IsInf(minLoss, 1) {
		minLoss = minPL(pl)
	}

	ratio := maxProfit
	if minLoss < 0 {
		ratio = maxProfit / math.Abs(minLoss)
	}

	var numLosses, numAtMaxLoss, numAtMaxProfit int
	for _, p := range pl {
		if p.PL < b.th.MinProfitAmount {
			numLosses++
			if equivalent(p.PL, minLoss) {
				numAtMaxLoss++
			}
		} else if equivalent(p.PL, maxProfit) {
			numAtMaxProfit++
		}
	}

	// Trades whose losses all sit at the floor have limited downside.
	score := float64(max(numAtMaxLoss, 1)) / float64(max(numLosses, 1))

	return MaxProfitLoss{
		Ratio:        ratio,
		NumMaxProfit: numAtMaxProfit,
		MaxProfit:    maxProfit,
		NumMaxLoss:   numAtMaxLoss,
		MaxLoss:      minLoss,
		Score:        score,
	}
}

// annualReturn projects the expected return on margin, as a percent, of
// repeating the trade for a year.
func (b baseScorer) annualReturn(dte int, probability float64, pl []PricePoint, prices SDPrices, margin float64) float64 {
	if margin <= 0 {
		return 0
	}

	var profitSum, lossSum float64
	var profitN, lossN int
	for _, p := range pl {
		weighted := b.bandMultiplier(prices.Band(float64(p.Price)), p.PL) * p.PL
		if p.PL > b.th.MinProfitAmount {
			profitSum += weighted
			profitN++
		} else {
			lossSum += weighted
			lossN++
		}
	}

	perYear := float64(tradesPerYear(dte))
	profit := perYear * (probability / 100) * average(profitSum, profitN)
	loss := perYear * ((100 - probability) / 100) * average(lossSum, lossN)
	return ((profit + loss) * 100 / margin) * 100
}

// bandMultiplier discounts profits that need a move beyond one SD and
// ignores everything past two.
func (b baseScorer) bandMultiplier(band int, pl float64) float64 {
	switch band {
	case 0, 1:
		return 1
	case 2:
		if pl < b.th.MinProfitAmount {
			return 1
		}
		return 0.5
	default:
		return 0
	}
}

// profitablePoints weights each profitable price by how likely it is.
func (b baseScorer) profitablePoints(pl []PricePoint, prices SDPrices) float64 {
	var weighted int
	for _, p := range pl {
		if p.PL <= b.th.MinProfitAmount {
			continue
		}
		switch prices.Band(float64(p.Price)) {
		case 0, 1:
			weighted += 4
		case 2:
			weighted += 2
		case 3:
			weighted++
		}
	}
	return float64(weighted) / float64(len(pl)) * 100
}

func tradesPerYear(dte int) int {
	return max(365/max(dte, 7), 1)
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func maxPL(pl []PricePoint) float64 {
	m := math.Inf(-1)
	for _, p := range pl {
		m = math.Max(m, p.PL)
	}
	return m
}

func minPL(pl []PricePoint) float64 {
	m := math.Inf(1)
	for _, p := range pl {
		m = math.Min(m, p.PL)
	}
	return m
}

func equivalent(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// toInt truncates like a float to int conversion but maps NaN to 0.
func toInt(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}
