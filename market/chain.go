// market/chain.go
package market

import (
	"sort"
	"time"
)

// OptionChain holds every option of one underlying for one expiration.
// Calls and Puts are sorted by strike.
type OptionChain struct {
	Underlying      string
	UnderlyingPrice float64
	Expiry          time.Time
	Calls           []Option
	Puts            []Option
}

// All returns puts followed by calls.
func (c OptionChain) All() []Option {
	out := make([]Option, 0, len(c.Puts)+len(c.Calls))
	out = append(out, c.Puts...)
	return append(out, c.Calls...)
}

func (c OptionChain) Len() int {
	return len(c.Calls) + len(c.Puts)
}

// GroupChains splits options into one chain per expiry, sorted by expiry.
// Options with zero implied volatility carry no usable quote and are dropped.
func GroupChains(underlying string, price float64, options []Option) []OptionChain {
	byExpiry := map[int64]*OptionChain{}
	for _, o := range options {
		if o.IV == 0 {
			continue
		}
		ch, ok := byExpiry[o.Expiry]
		if !ok {
			ch = &OptionChain{
				Underlying:      underlying,
				UnderlyingPrice: price,
				Expiry:          time.Unix(o.Expiry, 0).UTC(),
			}
			byExpiry[o.Expiry] = ch
		}
		if o.Side == Call {
			ch.Calls = append(ch.Calls, o)
		} else {
			ch.Puts = append(ch.Puts, o)
		}
	}

	chains := make([]OptionChain, 0, len(byExpiry))
	for _, ch := range byExpiry {
		sort.SliceStable(ch.Calls, func(i, j int) bool { return ch.Calls[i].Strike < ch.Calls[j].Strike })
		sort.SliceStable(ch.Puts, func(i, j int) bool { return ch.Puts[i].Strike < ch.Puts[j].Strike })
		chains = append(chains, *ch)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i].Expiry.Before(chains[j].Expiry) })
	return chains
}
