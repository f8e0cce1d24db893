package screener

import (
	"fmt"
	"math"
)

const numStandardDeviations = 2

// SDPrices is the price range the underlying is expected to settle in,
// two standard deviations either side of the current price. Lower never
// drops below 1.
type SDPrices struct {
	Underlying float64
	SD         float64
	Lower      float64
	Upper      float64
}

func NewSDPrices(underlyingPrice, sd float64) SDPrices {
	return SDPrices{
		Underlying: underlyingPrice,
		SD:         sd,
		Upper:      underlyingPrice + sd*numStandardDeviations,
		Lower:      math.Max(underlyingPrice-sd*numStandardDeviations, 1),
	}
}

// Band is 1 for prices within one SD of the underlying, 2 within two, and
// so on.
func (p SDPrices) Band(price float64) int {
	return int(math.Abs(p.Underlying-price)/p.SD) + 1
}

func (p SDPrices) OneSDDown() float64 {
	return math.Max(p.Underlying-p.SD, 1)
}

func (p SDPrices) OneSDUp() float64 {
	return p.Underlying + p.SD
}

func (p SDPrices) String() string {
	return fmt.Sprintf("%.2f [%.2f - %.2f]", p.SD, p.Lower, p.Upper)
}

// normalCDF is the cumulative normal distribution with the given mean and
// standard deviation.
func normalCDF(x, mean, sd float64) float64 {
	return 0.5 * math.Erfc(-(x-mean)/(sd*math.Sqrt2))
}

// probabilityBetween is the chance a normally distributed price settles in
// [lo, hi].
func probabilityBetween(lo, hi, mean, sd float64) float64 {
	return normalCDF(hi, mean, sd) - normalCDF(lo, mean, sd)
}
