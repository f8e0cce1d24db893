package screener

import (
	"fmt"

	"github.com/rustyeddy/optionometer/market"
)

const testExpiry = 1760731200 // 2025-10-17

func option(side market.Side, strike, bid, ask float64) market.Option {
	return market.Option{
		Symbol: fmt.Sprintf("%s-%g", side.String()[:1], strike),
		Strike: strike,
		Side:   side,
		Expiry: testExpiry,
		DTE:    30,
		Bid:    bid,
		Ask:    ask,
		IV:     0.3,
		Delta:  0.5,
	}
}

func call(strike, bid, ask float64) market.Option {
	return option(market.Call, strike, bid, ask)
}

func put(strike, bid, ask float64) market.Option {
	return option(market.Put, strike, bid, ask)
}

// testChain is a 100 strike underlying with five strikes each side, priced
// roughly like a 30 day, 30% IV chain.
func testChain() market.OptionChain {
	return market.OptionChain{
		Underlying:      "TEST",
		UnderlyingPrice: 100,
		Calls: []market.Option{
			withDelta(call(90, 10.60, 10.80), 0.85),
			withDelta(call(95, 6.60, 6.80), 0.70),
			withDelta(call(100, 3.40, 3.50), 0.51),
			withDelta(call(105, 1.40, 1.50), 0.30),
			withDelta(call(110, 0.45, 0.50), 0.13),
		},
		Puts: []market.Option{
			withDelta(put(90, 0.40, 0.45), -0.12),
			withDelta(put(95, 1.25, 1.35), -0.28),
			withDelta(put(100, 3.10, 3.20), -0.49),
			withDelta(put(105, 6.20, 6.40), -0.70),
			withDelta(put(110, 10.20, 10.40), -0.86),
		},
	}
}

func withDelta(o market.Option, d float64) market.Option {
	o.Delta = d
	return o
}
