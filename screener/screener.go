package screener

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/optionometer/config"
	"github.com/rustyeddy/optionometer/market"
	"github.com/rustyeddy/optionometer/marketdata"
	"github.com/rustyeddy/optionometer/metrics"
)

var (
	ErrInvalidWindow = errors.New("minimum days to expiration must be less than maximum days")
	ErrUnknownMode   = errors.New("unknown screener mode")
)

type Mode string

const (
	StrategyOptimizer     Mode = config.ModeStrategyOptimizer
	BullPutSpreadScreener Mode = config.ModeBullPutScreener
)

// ParseMode accepts any case and '-' in place of '_'.
func ParseMode(s string) (Mode, error) {
	m, err := config.NormalizeMode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return Mode(m), nil
}

// Options configures a Screener.
type Options struct {
	MinDays               int
	MaxDays               int
	Legs                  []string
	Workers               int
	Thresholds            Thresholds
	Weights               config.WeightsConfig
	CommissionPerShare    float64
	MaxMargin             float64
	MinBullPutStrikeBelow float64
	MaxResults            int
}

func OptionsFromConfig(cfg *config.Config) Options {
	s := cfg.Screener
	return Options{
		MinDays: s.MinDays,
		MaxDays: s.MaxDays,
		Legs:    append([]string(nil), s.Legs...),
		Workers: s.Workers,
		Thresholds: Thresholds{
			MinAnnualReturn: s.MinAnnualReturn,
			MinProbability:  s.MinProbability,
			MinProfitAmount: s.MinProfitAmount,
		},
		Weights:               cfg.Weights,
		CommissionPerShare:    cfg.Trade.CommissionPerShare(),
		MaxMargin:             s.MaxMargin,
		MinBullPutStrikeBelow: s.MinBullPutStrikeBelow,
		MaxResults:            s.MaxResults,
	}
}

// ChainResult holds the ranked trades of one expiration.
type ChainResult struct {
	Expiry time.Time
	DTE    int
	Trades []ScoredTrade
}

// Best returns the highest scored trade, if any.
func (c ChainResult) Best() (ScoredTrade, bool) {
	if len(c.Trades) == 0 {
		return ScoredTrade{}, false
	}
	return c.Trades[0], true
}

type Result struct {
	Ticker          string
	Mode            Mode
	UnderlyingPrice float64
	MinDays         int
	MaxDays         int
	Started         time.Time
	Elapsed         time.Duration
	Chains          []ChainResult
}

// TradeLists returns the trades of each chain, in expiry order.
func (r *Result) TradeLists() [][]ScoredTrade {
	out := make([][]ScoredTrade, len(r.Chains))
	for i, c := range r.Chains {
		out[i] = c.Trades
	}
	return out
}

// NumTrades is the total number of ranked trades across chains.
func (r *Result) NumTrades() int {
	n := 0
	for _, c := range r.Chains {
		n += len(c.Trades)
	}
	return n
}

type Screener struct {
	importer marketdata.Importer
	opts     Options
	log      zerolog.Logger
}

func New(importer marketdata.Importer, opts Options, log zerolog.Logger) *Screener {
	return &Screener{importer: importer, opts: opts, log: log}
}

// Screen imports the option chains for ticker and ranks trades on each
// expiration according to mode.
func (s *Screener) Screen(ctx context.Context, ticker string, mode Mode) (*Result, error) {
	start := time.Now()
	res := &Result{
		Ticker:  ticker,
		Mode:    mode,
		MinDays: s.opts.MinDays,
		MaxDays: s.opts.MaxDays,
		Started: start,
	}

	if s.opts.MinDays >= s.opts.MaxDays {
		return nil, fmt.Errorf("%w (%d >= %d)", ErrInvalidWindow, s.opts.MinDays, s.opts.MaxDays)
	}
	if mode != StrategyOptimizer && mode != BullPutSpreadScreener {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	s.log.Info().
		Str("ticker", ticker).
		Int("min_days", s.opts.MinDays).
		Int("max_days", s.opts.MaxDays).
		Msg("screening option trades")

	chains, err := s.importer.FetchOptionChains(ctx, ticker, s.opts.MinDays, s.opts.MaxDays)
	if errors.Is(err, marketdata.ErrNoData) {
		chains, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch option chains: %w", err)
	}
	if len(chains) == 0 {
		s.log.Warn().Str("ticker", ticker).Msg("no options matching criteria")
		res.Elapsed = time.Since(start)
		return res, nil
	}
	res.UnderlyingPrice = chains[0].UnderlyingPrice

	results := make([]ChainResult, len(chains))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, ch := range chains {
		i, ch := i, ch
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trades, err := s.screenChain(ch, mode)
			if err != nil {
				return err
			}
			results[i] = ChainResult{Expiry: ch.Expiry, DTE: chainDTE(ch), Trades: trades}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.Chains = results
	res.Elapsed = time.Since(start)
	metrics.ScreenDuration.WithLabelValues(string(mode)).Observe(res.Elapsed.Seconds())

	if res.NumTrades() == 0 {
		s.log.Warn().Str("ticker", ticker).Msg("no trades found with a positive score for selected criteria")
		return res, nil
	}

	for _, c := range res.Chains {
		if best, ok := c.Best(); ok {
			s.log.Info().
				Time("expiry", c.Expiry).
				Int("score", best.Score).
				Float64("probability", best.Probability).
				Float64("annualized", best.AnnualReturn).
				Str("trade", best.Trade.Symbols()).
				Msg("highest score trade")
		}
	}
	return res, nil
}

func (s *Screener) workers() int {
	if s.opts.Workers > 0 {
		return s.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (s *Screener) screenChain(ch market.OptionChain, mode Mode) ([]ScoredTrade, error) {
	b := NewBuilder(ch, s.opts.CommissionPerShare)
	w := NewWeigher(s.opts.Weights)

	switch mode {
	case BullPutSpreadScreener:
		scorer := NewBullPutScorer(s.opts.Thresholds, w, s.opts.MaxMargin, s.opts.MaxResults, s.log)
		candidates := FilterBullPuts(b.BullPutSpreads(), b.UnderlyingPrice(), s.opts.MinBullPutStrikeBelow)
		metrics.TradesScoredTotal.WithLabelValues(string(mode)).Add(float64(len(candidates)))
		return scorer.Score(candidates, b.UnderlyingPrice()), nil
	default:
		scorer := NewOptimizerScorer(s.opts.Thresholds, w, s.opts.MaxResults, s.log)
		return s.optimize(b, scorer, mode)
	}
}

// optimize scores each requested leg type. "2", "3" and "4" are built from
// spreads; "N+" adds a leg to the best scored N-leg trades; "condors" and
// "bullputspreads" are named strategies.
func (s *Screener) optimize(b *Builder, scorer Scorer, mode Mode) ([]ScoredTrade, error) {
	price := b.UnderlyingPrice()
	scored := map[string][]ScoredTrade{}
	count := 0

	scoreType := func(typ string) ([]ScoredTrade, error) {
		if got, ok := scored[typ]; ok {
			return got, nil
		}
		var trades []Trade
		switch typ {
		case "2":
			trades = b.Spreads()
		case "3":
			trades = b.ThreeLegTrades()
		case "4":
			trades = b.FourLegTrades()
		case "condors":
			trades = b.Condors()
		case "bullputspreads":
			trades = b.BullPutSpreads()
		default:
			return nil, fmt.Errorf("unknown leg type %q", typ)
		}
		count += len(trades)
		out := scorer.Score(trades, price)
		scored[typ] = out
		return out, nil
	}

	var all []ScoredTrade
	for _, typ := range s.opts.Legs {
		if base, ok := strings.CutSuffix(typ, "+"); ok {
			baseScored, err := scoreType(base)
			if err != nil {
				return nil, err
			}
			enhanced := b.Enhanced(tradesOf(baseScored))
			count += len(enhanced)
			all = append(all, scorer.Score(enhanced, price)...)
			continue
		}
		got, err := scoreType(typ)
		if err != nil {
			return nil, err
		}
		all = append(all, got...)
	}
	metrics.TradesScoredTotal.WithLabelValues(string(mode)).Add(float64(count))

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	return all, nil
}

func tradesOf(scored []ScoredTrade) []Trade {
	out := make([]Trade, len(scored))
	for i, st := range scored {
		out[i] = st.Trade
	}
	return out
}

func chainDTE(ch market.OptionChain) int {
	all := ch.All()
	if len(all) == 0 {
		return 0
	}
	return all[0].DTE
}
