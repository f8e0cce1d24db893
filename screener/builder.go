package screener

import (
	"github.com/rustyeddy/optionometer/market"
)

// Builder enumerates candidate trades from one option chain.
type Builder struct {
	chain      market.OptionChain
	commission float64
	spreads    []Trade
}

func NewBuilder(chain market.OptionChain, commissionPerShare float64) *Builder {
	return &Builder{chain: chain, commission: commissionPerShare}
}

func (b *Builder) Chain() market.OptionChain {
	return b.chain
}

func (b *Builder) UnderlyingPrice() float64 {
	return b.chain.UnderlyingPrice
}

func (b *Builder) trade(buys, sells []market.Option) Trade {
	return Trade{Buys: buys, Sells: sells, CommissionPerShare: b.commission}
}

// Spreads returns every one-by-one pairing of a sold and a bought option
// with different strikes, across call/call, put/put, call/put and put/call.
func (b *Builder) Spreads() []Trade {
	if b.spreads != nil {
		return b.spreads
	}
	c, p := b.chain.Calls, b.chain.Puts
	out := b.buildSpreads(c, c)
	out = append(out, b.buildSpreads(p, p)...)
	out = append(out, b.buildSpreads(c, p)...)
	out = append(out, b.buildSpreads(p, c)...)
	b.spreads = out
	return out
}

func (b *Builder) buildSpreads(sells, buys []market.Option) []Trade {
	out := make([]Trade, 0, len(sells)*len(buys))
	for _, sell := range sells {
		for _, buy := range buys {
			if buy.Strike == sell.Strike {
				continue
			}
			out = append(out, b.trade([]market.Option{buy}, []market.Option{sell}))
		}
	}
	return out
}

// ThreeLegTrades adds a third option to every spread, first as a buy and
// then as a sell. Options already in the spread are skipped.
func (b *Builder) ThreeLegTrades() []Trade {
	spreads := b.Spreads()
	thirds := b.chain.All()

	var buys, sells []Trade
	for _, s := range spreads {
		for _, o := range thirds {
			if s.Has(o.Symbol) {
				continue
			}
			buys = append(buys, b.trade(with(s.Buys, o), s.Sells))
			sells = append(sells, b.trade(s.Buys, with(s.Sells, o)))
		}
	}
	return append(buys, sells...)
}

// FourLegTrades joins pairs of spreads that share no strike.
func (b *Builder) FourLegTrades() []Trade {
	spreads := b.Spreads()

	var out []Trade
	for _, base := range spreads {
		for _, s := range spreads {
			bb, bs := base.Buys[0].Strike, base.Sells[0].Strike
			nb, ns := s.Buys[0].Strike, s.Sells[0].Strike
			if nb == bb || nb == bs || ns == bb || ns == bs {
				continue
			}
			out = append(out, b.trade(concat(base.Buys, s.Buys), concat(base.Sells, s.Sells)))
		}
	}
	return out
}

// BullPutSpreads sells a put and buys a lower strike put.
func (b *Builder) BullPutSpreads() []Trade {
	puts := b.chain.Puts
	var out []Trade
	for _, sell := range puts {
		for _, buy := range puts {
			if buy.Strike < sell.Strike {
				out = append(out, b.trade([]market.Option{buy}, []market.Option{sell}))
			}
		}
	}
	return out
}

// Condors returns iron condors: a bull put spread below a bear call spread.
func (b *Builder) Condors() []Trade {
	puts, calls := b.chain.Puts, b.chain.Calls
	var out []Trade
	for i, longPut := range puts {
		for _, shortPut := range puts[i+1:] {
			if shortPut.Strike <= longPut.Strike {
				continue
			}
			for j, shortCall := range calls {
				if shortCall.Strike <= shortPut.Strike {
					continue
				}
				for _, longCall := range calls[j+1:] {
					if longCall.Strike <= shortCall.Strike {
						continue
					}
					out = append(out, b.trade(
						[]market.Option{longPut, longCall},
						[]market.Option{shortPut, shortCall},
					))
				}
			}
		}
	}
	return out
}

// Enhanced adds one more leg, bought or sold, to each trade. Options already
// in a trade are skipped.
func (b *Builder) Enhanced(trades []Trade) []Trade {
	all := b.chain.All()
	var out []Trade
	for _, t := range trades {
		for _, o := range all {
			if t.Has(o.Symbol) {
				continue
			}
			out = append(out,
				b.trade(with(t.Buys, o), t.Sells),
				b.trade(t.Buys, with(t.Sells, o)),
			)
		}
	}
	return out
}
