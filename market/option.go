// market/option.go
package market

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Side int

const (
	Call Side = iota
	Put
)

func (s Side) String() string {
	switch s {
	case Call:
		return "CALL"
	case Put:
		return "PUT"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide accepts "call" or "put" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL":
		return Call, nil
	case "PUT":
		return Put, nil
	}
	return 0, fmt.Errorf("unknown option side %q", s)
}

// Option is a single listed contract as quoted by the data vendor.
type Option struct {
	Symbol string
	Strike float64
	Side   Side
	Expiry int64 // unix seconds
	DTE    int
	Bid    float64
	Ask    float64
	IV     float64
	Delta  float64
}

// ImpliedSD is the one standard deviation move implied by the option's IV
// over its remaining life.
func (o Option) ImpliedSD(underlyingPrice float64) float64 {
	return underlyingPrice * o.IV * math.Sqrt(float64(o.DTE)/365.0)
}

// Label renders the side and strike, e.g. "PUT 95.5".
func (o Option) Label() string {
	return o.Side.String() + " " + strconv.FormatFloat(o.Strike, 'f', -1, 64)
}
