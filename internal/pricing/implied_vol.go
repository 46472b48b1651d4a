package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/optrisk/internal/contracts"
)

// Implied volatility search errors
var (
	ErrPriceOutOfBounds = errors.New("option price outside no-arbitrage bounds")
	ErrVegaTooSmall     = errors.New("vega too small for newton-raphson")
	ErrNotConverged     = errors.New("implied volatility did not converge")
)

// IVOptions controls the Newton-Raphson implied volatility search
type IVOptions struct {
	InitialGuess  float64
	Tolerance     float64 // |model - market| 허용 오차
	MaxIterations int
	MinVol        float64
	MaxVol        float64
}

// DefaultIVOptions returns the standard search settings
func DefaultIVOptions() IVOptions {
	return IVOptions{
		InitialGuess:  0.3,
		Tolerance:     1e-6,
		MaxIterations: 100,
		MinVol:        0.01,
		MaxVol:        10.0,
	}
}

// ImpliedVolatility solves for σ such that the model PV equals price.
// market.Volatility is ignored.
func ImpliedVolatility(option contracts.EuropeanOption, market contracts.MarketData, price float64, opts IVOptions) (float64, error) {
	if err := ValidateOption(option); err != nil {
		return 0, err
	}
	if option.Expired() {
		return 0, &contracts.InvalidInstrumentError{
			AssetID: option.AssetID,
			Field:   "expiry",
			Value:   option.TimeToExpiry,
			Reason:  "must be positive to imply volatility",
		}
	}

	market.Volatility = opts.InitialGuess
	if err := ValidateMarketData(option.AssetID, market); err != nil {
		return 0, err
	}

	lower, upper := priceBounds(option, market)
	if !isFinite(price) || price < lower-1e-10 || price >= upper {
		return 0, fmt.Errorf("%w: price %g not in [%g, %g)", ErrPriceOutOfBounds, price, lower, upper)
	}

	sigma := opts.InitialGuess
	for i := 0; i < opts.MaxIterations; i++ {
		market.Volatility = sigma
		g, err := Price(option, market)
		if err != nil {
			return 0, err
		}

		diff := g.PV - price
		if math.Abs(diff) < opts.Tolerance {
			return sigma, nil
		}
		if g.Vega < 1e-10 {
			return 0, fmt.Errorf("%w: vega %g at sigma %g", ErrVegaTooSmall, g.Vega, sigma)
		}

		sigma -= diff / g.Vega
		if sigma < opts.MinVol {
			sigma = opts.MinVol
		}
		if sigma > opts.MaxVol {
			sigma = opts.MaxVol
		}
	}

	return 0, fmt.Errorf("%w: %d iterations, last sigma %g", ErrNotConverged, opts.MaxIterations, sigma)
}

// priceBounds returns the no-arbitrage range of a European option price
// 콜: [max(S-Ke^-rT, 0), S), 풋: [max(Ke^-rT-S, 0), Ke^-rT)
func priceBounds(option contracts.EuropeanOption, market contracts.MarketData) (float64, float64) {
	s := market.SpotPrice
	pvStrike := option.Strike * math.Exp(-market.RiskFreeRate*option.TimeToExpiry)
	if option.Type.IsCall() {
		return math.Max(s-pvStrike, 0), s
	}
	return math.Max(pvStrike-s, 0), pvStrike
}
