package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optrisk/internal/contracts"
)

func TestImpliedVolatility_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		option contracts.EuropeanOption
		spot   float64
		vol    float64
	}{
		{"atm call", contracts.Call(100, 1, "X"), 100, 0.2},
		{"otm put", contracts.Put(90, 0.5, "X"), 100, 0.45},
		{"itm call", contracts.Call(80, 2, "X"), 100, 0.15},
		{"high vol put", contracts.Put(110, 1, "X"), 100, 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := contracts.NewMarketData("X", tt.spot, 0.03, tt.vol)
			g, err := Price(tt.option, md)
			require.NoError(t, err)

			iv, err := ImpliedVolatility(tt.option, md, g.PV, DefaultIVOptions())
			require.NoError(t, err)
			assert.InDelta(t, tt.vol, iv, 1e-4)
		})
	}
}

func TestImpliedVolatility_IgnoresQuotedVolatility(t *testing.T) {
	opt := contracts.Call(100, 1, "X")
	g, err := Price(opt, contracts.NewMarketData("X", 100, 0.05, 0.25))
	require.NoError(t, err)

	// 입력 변동성은 무시 (음수여도 검증되지 않음)
	iv, err := ImpliedVolatility(opt, contracts.NewMarketData("X", 100, 0.05, -1), g.PV, DefaultIVOptions())
	require.NoError(t, err)
	assert.InDelta(t, 0.25, iv, 1e-4)
}

func TestImpliedVolatility_OutOfBounds(t *testing.T) {
	md := contracts.NewMarketData("X", 100, 0.05, 0)

	tests := []struct {
		name   string
		option contracts.EuropeanOption
		price  float64
	}{
		{"call above spot", contracts.Call(100, 1, "X"), 100},
		{"call below intrinsic", contracts.Call(50, 1, "X"), 40},
		{"put above discounted strike", contracts.Put(100, 1, "X"), 99},
		{"negative price", contracts.Put(100, 1, "X"), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImpliedVolatility(tt.option, md, tt.price, DefaultIVOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPriceOutOfBounds)
		})
	}
}

func TestImpliedVolatility_InvalidInputs(t *testing.T) {
	md := contracts.NewMarketData("X", 100, 0.05, 0.2)

	_, err := ImpliedVolatility(contracts.Call(100, 0, "X"), md, 5, DefaultIVOptions())
	assert.ErrorIs(t, err, contracts.ErrInvalidInstrument)

	_, err = ImpliedVolatility(contracts.Call(-1, 1, "X"), md, 5, DefaultIVOptions())
	assert.ErrorIs(t, err, contracts.ErrInvalidInstrument)

	_, err = ImpliedVolatility(contracts.Call(100, 1, "X"), contracts.NewMarketData("X", 0, 0.05, 0.2), 5, DefaultIVOptions())
	assert.ErrorIs(t, err, contracts.ErrInvalidMarketData)
}

func TestImpliedVolatility_IterationLimit(t *testing.T) {
	opt := contracts.Call(100, 1, "X")
	md := contracts.NewMarketData("X", 100, 0.05, 0.8)
	g, err := Price(opt, md)
	require.NoError(t, err)

	opts := DefaultIVOptions()
	opts.MaxIterations = 1
	_, err = ImpliedVolatility(opt, md, g.PV, opts)
	assert.ErrorIs(t, err, ErrNotConverged)
}
