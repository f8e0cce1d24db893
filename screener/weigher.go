package screener

import "github.com/rustyeddy/optionometer/config"

// Weigher combines normalized metric scores into a single score.
type Weigher struct {
	config.WeightsConfig
}

func NewWeigher(w config.WeightsConfig) Weigher {
	return Weigher{WeightsConfig: w}
}

// Weigh uses all seven metrics.
func (w Weigher) Weigh(s Score) float64 {
	return s.PricePoint*float64(w.PricePoint) +
		s.ProfitPoints*float64(w.ProfitPoints) +
		s.Probability*float64(w.Probability) +
		s.ProfitLoss*float64(w.ProfitLoss) +
		s.AnnualReturn*float64(w.AnnualReturn) +
		s.Delta*float64(w.Delta) +
		s.HundredTrades*float64(w.HundredTrades)
}

// WeighBullPut uses profitable points, probability, profit/loss and annual
// return.
func (w Weigher) WeighBullPut(s Score) float64 {
	return s.ProfitPoints*float64(w.ProfitPoints) +
		s.Probability*float64(w.Probability) +
		s.ProfitLoss*float64(w.ProfitLoss) +
		s.AnnualReturn*float64(w.AnnualReturn)
}
