package pricing

import (
	"math"

	"github.com/wonny/optrisk/internal/contracts"
)

// Finite-difference bump sizes
const (
	spotBumpRatio = 0.01        // S × 1%
	volBump       = 0.01        // σ 절대값 1%p
	rateBump      = 1e-4        // 1bp
	thetaBump     = 1.0 / 365.0 // 하루
)

// valueFunc prices one unit for the given spot, rate, time to expiry and volatility.
// tau <= 0 이면 내재가치
type valueFunc func(spot, rate, tau, sigma float64) float64

// numericalGreeks values option with value and estimates the Greeks by
// bumping one input at a time. Inputs must already be validated.
func numericalGreeks(option contracts.EuropeanOption, market contracts.MarketData, value valueFunc) Greeks {
	s := market.SpotPrice
	r := market.RiskFreeRate
	tau := option.TimeToExpiry
	sigma := effectiveVolatility(market.Volatility)

	pv := value(s, r, tau, sigma)

	// Delta, Gamma: 중심 차분
	hs := s * spotBumpRatio
	up := value(s+hs, r, tau, sigma)
	down := value(s-hs, r, tau, sigma)

	// Vega: σ - h 가 0 밑으로 내려가지 않도록 h 축소
	hv := math.Min(volBump, sigma/2)
	vega := (value(s, r, tau, sigma+hv) - value(s, r, tau, sigma-hv)) / (2 * hv)

	// Theta: 하루 (또는 잔존 만기) 경과 후 가치 변화, 연 단위
	ht := math.Min(thetaBump, tau)
	theta := (value(s, r, tau-ht, sigma) - pv) / ht

	rho := (value(s, r+rateBump, tau, sigma) - value(s, r-rateBump, tau, sigma)) / (2 * rateBump)

	return Greeks{
		PV:    math.Max(pv, 0),
		Delta: (up - down) / (2 * hs),
		Gamma: (up - 2*pv + down) / (hs * hs),
		Vega:  vega,
		Theta: theta,
		Rho:   rho,
	}
}

// intrinsic is the payoff at expiry
func intrinsic(optionType contracts.OptionType, spot, strike float64) float64 {
	if optionType.IsCall() {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// blackScholesValue is the closed-form PV with the volatility floor applied
func blackScholesValue(optionType contracts.OptionType, spot, strike, rate, tau, sigma float64) float64 {
	if tau <= 0 {
		return intrinsic(optionType, spot, strike)
	}
	opt := contracts.NewEuropeanOption(optionType, strike, tau, "")
	return closedForm(opt, contracts.MarketData{SpotPrice: spot, RiskFreeRate: rate, Volatility: sigma}).PV
}
