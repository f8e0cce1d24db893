package marketdata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rustyeddy/optionometer/market"
)

var (
	// ErrNoData means the vendor has no options for the request.
	ErrNoData = errors.New("no option data")
	// ErrBadResponse means the body parsed but is not a usable chain.
	ErrBadResponse = errors.New("malformed option chain response")
)

// chainResponse is the column oriented body of /v1/options/chain. Row i of
// the chain is element i of every slice.
type chainResponse struct {
	S               string    `json:"s"`
	Errmsg          string    `json:"errmsg,omitempty"`
	OptionSymbol    []string  `json:"optionSymbol"`
	Underlying      []string  `json:"underlying,omitempty"`
	Expiration      []int64   `json:"expiration"`
	Side            []string  `json:"side"`
	Strike          []float64 `json:"strike"`
	DTE             []int     `json:"dte"`
	Bid             []float64 `json:"bid"`
	Ask             []float64 `json:"ask"`
	IntrinsicValue  []float64 `json:"intrinsicValue,omitempty"`
	ExtrinsicValue  []float64 `json:"extrinsicValue,omitempty"`
	UnderlyingPrice []float64 `json:"underlyingPrice"`
	IV              []float64 `json:"iv"`
	Delta           []float64 `json:"delta"`
	Gamma           []float64 `json:"gamma,omitempty"`
	Theta           []float64 `json:"theta,omitempty"`
	Vega            []float64 `json:"vega,omitempty"`
}

func decodeResponse(body []byte) (*chainResponse, error) {
	var r chainResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch r.S {
	case "ok":
	case "no_data":
		return nil, ErrNoData
	default:
		msg := r.Errmsg
		if msg == "" {
			msg = fmt.Sprintf("status %q", r.S)
		}
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, msg)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *chainResponse) validate() error {
	n := len(r.OptionSymbol)
	if n == 0 {
		return fmt.Errorf("%w: no options", ErrBadResponse)
	}
	cols := []struct {
		name string
		len  int
	}{
		{"expiration", len(r.Expiration)},
		{"side", len(r.Side)},
		{"strike", len(r.Strike)},
		{"dte", len(r.DTE)},
		{"bid", len(r.Bid)},
		{"ask", len(r.Ask)},
		{"underlyingPrice", len(r.UnderlyingPrice)},
		{"iv", len(r.IV)},
		{"delta", len(r.Delta)},
	}
	for _, c := range cols {
		if c.len != n {
			return fmt.Errorf("%w: column %s has %d rows, want %d", ErrBadResponse, c.name, c.len, n)
		}
	}
	return nil
}

func (r *chainResponse) options() ([]market.Option, error) {
	out := make([]market.Option, 0, len(r.OptionSymbol))
	for i, sym := range r.OptionSymbol {
		side, err := market.ParseSide(r.Side[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadResponse, i, err)
		}
		out = append(out, market.Option{
			Symbol: sym,
			Strike: r.Strike[i],
			Side:   side,
			Expiry: r.Expiration[i],
			DTE:    r.DTE[i],
			Bid:    r.Bid[i],
			Ask:    r.Ask[i],
			IV:     r.IV[i],
			Delta:  r.Delta[i],
		})
	}
	return out, nil
}

// chains converts the response into per-expiry chains for ticker. The first
// underlyingPrice is used for every chain.
func (r *chainResponse) chains(ticker string) ([]market.OptionChain, error) {
	opts, err := r.options()
	if err != nil {
		return nil, err
	}
	return market.GroupChains(ticker, r.UnderlyingPrice[0], opts), nil
}

type summary struct {
	count                int
	minStrike, maxStrike float64
	nearest, farthest    int64
}

func (r *chainResponse) summarize() summary {
	s := summary{
		count:     len(r.OptionSymbol),
		minStrike: r.Strike[0],
		maxStrike: r.Strike[0],
		nearest:   r.Expiration[0],
		farthest:  r.Expiration[0],
	}
	for i := range r.OptionSymbol {
		s.minStrike = min(s.minStrike, r.Strike[i])
		s.maxStrike = max(s.maxStrike, r.Strike[i])
		s.nearest = min(s.nearest, r.Expiration[i])
		s.farthest = max(s.farthest, r.Expiration[i])
	}
	return s
}

// ParseChains converts a raw option chain body into chains for ticker.
func ParseChains(ticker string, body []byte) ([]market.OptionChain, error) {
	r, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}
	return r.chains(ticker)
}
