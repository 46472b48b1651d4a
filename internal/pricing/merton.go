package pricing

import (
	"fmt"
	"math"

	"github.com/wonny/optrisk/internal/contracts"
)

// Poisson series truncation
const (
	mertonMaxTerms  = 200
	mertonWeightEps = 1e-16
)

// MertonJump prices with Merton's jump-diffusion: a Poisson-weighted sum of
// Black-Scholes prices. Log jump sizes are normal with mean Mean and
// standard deviation Vol; Lambda is the annual jump intensity.
type MertonJump struct {
	Lambda float64
	Mean   float64
	Vol    float64
}

// NewMertonJump returns a jump-diffusion pricer
func NewMertonJump(lambda, mean, vol float64) (MertonJump, error) {
	m := MertonJump{Lambda: lambda, Mean: mean, Vol: vol}
	if err := m.validate(""); err != nil {
		return MertonJump{}, err
	}
	return m, nil
}

// String names the model for cache keys and reports
func (m MertonJump) String() string {
	return fmt.Sprintf("merton_jump(lambda=%g,mean=%g,vol=%g)", m.Lambda, m.Mean, m.Vol)
}

func (m MertonJump) validate(assetID string) error {
	switch {
	case !isFinite(m.Lambda) || m.Lambda < 0:
		return &contracts.InvalidInstrumentError{AssetID: assetID, Field: "jump_intensity", Value: m.Lambda, Reason: "must be finite and non-negative"}
	case !isFinite(m.Mean):
		return &contracts.InvalidInstrumentError{AssetID: assetID, Field: "jump_mean", Value: m.Mean, Reason: "must be finite"}
	case !isFinite(m.Vol) || m.Vol < 0:
		return &contracts.InvalidInstrumentError{AssetID: assetID, Field: "jump_vol", Value: m.Vol, Reason: "must be finite and non-negative"}
	}
	return nil
}

// Price implements Pricer
func (m MertonJump) Price(option contracts.EuropeanOption, market contracts.MarketData) (Greeks, error) {
	if err := ValidateOption(option); err != nil {
		return Greeks{}, err
	}
	if err := m.validate(option.AssetID); err != nil {
		return Greeks{}, err
	}
	if err := ValidateMarketData(option.AssetID, market); err != nil {
		return Greeks{}, err
	}

	if option.Expired() {
		return expired(option, market.SpotPrice), nil
	}

	g := numericalGreeks(option, market, func(spot, rate, tau, sigma float64) float64 {
		return m.value(option.Type, spot, option.Strike, rate, tau, sigma)
	})
	if err := checkFinite(option.AssetID, g); err != nil {
		return Greeks{}, err
	}
	return g, nil
}

// value sums the Poisson-weighted Black-Scholes prices conditional on n jumps
func (m MertonJump) value(optionType contracts.OptionType, spot, strike, rate, tau, sigma float64) float64 {
	if tau <= 0 {
		return intrinsic(optionType, spot, strike)
	}
	if m.Lambda == 0 {
		return blackScholesValue(optionType, spot, strike, rate, tau, sigma)
	}

	k := math.Exp(m.Mean+0.5*m.Vol*m.Vol) - 1 // 평균 점프 크기 E[J-1]
	lambdaTau := m.Lambda * (1 + k) * tau

	weight := math.Exp(-lambdaTau) // n = 0
	var total float64
	for n := 0; n < mertonMaxTerms; n++ {
		fn := float64(n)
		sigmaN := math.Sqrt(sigma*sigma + fn*m.Vol*m.Vol/tau)
		rateN := rate - m.Lambda*k + fn*math.Log(1+k)/tau
		total += weight * blackScholesValue(optionType, spot, strike, rateN, tau, sigmaN)

		weight *= lambdaTau / (fn + 1)
		// 가중치가 정점(n ≈ λτ)을 지나 무시할 수준이면 종료
		if fn+1 > lambdaTau && weight < mertonWeightEps {
			break
		}
	}
	return total
}
