package screener

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rustyeddy/optionometer/market"
)

// Trade is a combination of options bought and sold to open, held to
// expiration.
type Trade struct {
	Buys               []market.Option
	Sells              []market.Option
	CommissionPerShare float64
}

// Legs returns sells followed by buys.
func (t Trade) Legs() []market.Option {
	out := make([]market.Option, 0, len(t.Buys)+len(t.Sells))
	out = append(out, t.Sells...)
	return append(out, t.Buys...)
}

// Has reports whether an option with symbol is already a leg.
func (t Trade) Has(symbol string) bool {
	for _, o := range t.Buys {
		if o.Symbol == symbol {
			return true
		}
	}
	for _, o := range t.Sells {
		if o.Symbol == symbol {
			return true
		}
	}
	return false
}

// ProfitLossAt is the per-share profit or loss if the underlying settles at
// price on expiration. Long legs pay the ask and short legs collect the bid,
// each net of commission.
func (t Trade) ProfitLossAt(price float64) float64 {
	c := t.CommissionPerShare
	var pl float64

	for _, o := range t.Buys {
		cost := o.Ask + c
		switch {
		case o.Side == market.Call && o.Strike > price:
			pl -= cost
		case o.Side == market.Call:
			pl += price - o.Strike - cost
		case o.Strike < price:
			pl -= cost
		default:
			pl += o.Strike - price - cost
		}
	}

	for _, o := range t.Sells {
		credit := o.Bid - c
		switch {
		case o.Side == market.Call && o.Strike > price:
			pl += credit
		case o.Side == market.Call:
			pl += -(price - o.Strike) + credit
		case o.Strike < price:
			pl += credit
		default:
			pl += -(o.Strike - price) + credit
		}
	}

	return pl
}

// RequiredMargin is the buying power needed to open one of this trade.
// Calls and puts are margined separately.
func (t Trade) RequiredMargin() float64 {
	var callBuys, callSells, putBuys, putSells []market.Option
	for _, o := range t.Buys {
		if o.Side == market.Call {
			callBuys = append(callBuys, o)
		} else {
			putBuys = append(putBuys, o)
		}
	}
	for _, o := range t.Sells {
		if o.Side == market.Call {
			callSells = append(callSells, o)
		} else {
			putSells = append(putSells, o)
		}
	}
	return sideMargin(callBuys, callSells) + sideMargin(putBuys, putSells)
}

// sideMargin pairs buys with sells in strike order; unpaired buys cost their
// ask and unpaired sells are treated as cash secured.
func sideMargin(buys, sells []market.Option) float64 {
	if len(buys) == 0 && len(sells) == 0 {
		return 0
	}
	if len(sells) == 0 {
		var sum float64
		for _, o := range buys {
			sum += o.Ask
		}
		return sum * 100
	}
	if len(buys) == 0 {
		var sum float64
		for _, o := range sells {
			sum += (o.Strike - o.Bid) * 100
		}
		return sum
	}

	buys = byStrike(buys)
	sells = byStrike(sells)
	n := min(len(buys), len(sells))

	var margin float64
	for i := 0; i < n; i++ {
		margin += pairMargin(buys[i], sells[i])
	}
	return margin + sideMargin(buys[n:], nil) + sideMargin(nil, sells[n:])
}

func pairMargin(buy, sell market.Option) float64 {
	if buy.Ask >= sell.Bid {
		return (buy.Ask - sell.Bid) * 100
	}
	return (math.Abs(buy.Strike-sell.Strike) - (sell.Bid - buy.Ask)) * 100
}

func byStrike(opts []market.Option) []market.Option {
	out := append([]market.Option(nil), opts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// Key identifies a trade by its legs. Two trades with the same buys and
// sells in the same order share a key.
func (t Trade) Key() string {
	return uuid.NewMD5(uuid.Nil, []byte("B"+symbolList(t.Buys)+"-S"+symbolList(t.Sells))).String()
}

func symbolList(opts []market.Option) string {
	syms := make([]string, len(opts))
	for i, o := range opts {
		syms[i] = o.Symbol
	}
	return "[" + strings.Join(syms, ", ") + "]"
}

func labelList(opts []market.Option) string {
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label()
	}
	return "[" + strings.Join(labels, ", ") + "]"
}

// String renders the legs, e.g. "BUY [PUT 95] - SELL [PUT 100]".
func (t Trade) String() string {
	return fmt.Sprintf("BUY %s - SELL %s", labelList(t.Buys), labelList(t.Sells))
}

// Symbols renders the leg symbols for logs.
func (t Trade) Symbols() string {
	return fmt.Sprintf("BUY to open %s, SELL to open %s", symbolList(t.Buys), symbolList(t.Sells))
}

func with(opts []market.Option, o market.Option) []market.Option {
	out := make([]market.Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, o)
}

func concat(a, b []market.Option) []market.Option {
	out := make([]market.Option, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
