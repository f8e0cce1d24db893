package screener

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSDPricesBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		underlying, sd float64
		lower, upper   float64
	}{
		{10, 1, 8, 12},
		{10, 2, 6, 14},
		{10, 3, 4, 16},
		{1, 3.5, 1, 8},
		{1, 5, 1, 11},
		{1, 20, 1, 41},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g/%g", tt.underlying, tt.sd), func(t *testing.T) {
			p := NewSDPrices(tt.underlying, tt.sd)
			assert.InDelta(t, tt.lower, p.Lower, 1e-9)
			assert.InDelta(t, tt.upper, p.Upper, 1e-9)
		})
	}
}

func TestSDPricesBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		underlying, sd, price float64
		want                  int
	}{
		{10, 1, 10, 1},
		{10, 1, 9.01, 1},
		{10, 1, 10.99, 1},
		{10, 1, 9, 2},
		{10, 1, 11, 2},
		{10, 1, 8.01, 2},
		{10, 1, 11.59, 2},
		{10, 1, 7.01, 3},
		{10, 1, 12.99, 3},
		{10, 1, 7, 4},
		{10, 1, 13, 4},
		{50, 2, 45, 3},
		{50, 2, 55, 3},
		{4, 1.5, 3, 1},
		{4, 1.5, 2.5, 2},
		{4, 1.5, 1, 3},
		{4, 1.5, 0, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g/%g/%g", tt.underlying, tt.sd, tt.price), func(t *testing.T) {
			assert.Equal(t, tt.want, NewSDPrices(tt.underlying, tt.sd).Band(tt.price))
		})
	}
}

func TestOneSD(t *testing.T) {
	t.Parallel()

	p := NewSDPrices(100, 5)
	assert.Equal(t, 95.0, p.OneSDDown())
	assert.Equal(t, 105.0, p.OneSDUp())
	assert.Equal(t, 1.0, NewSDPrices(3, 5).OneSDDown())
	assert.Equal(t, "5.00 [90.00 - 110.00]", p.String())
}

func TestProbabilityBetween(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, normalCDF(100, 100, 10), 1e-12)
	assert.InDelta(t, 0.6827, probabilityBetween(90, 110, 100, 10), 1e-4)
	assert.InDelta(t, 0.9545, probabilityBetween(80, 120, 100, 10), 1e-4)
	assert.Equal(t, 0.0, probabilityBetween(105, 105, 100, 10))
}
