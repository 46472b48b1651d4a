package pricing

import (
	"fmt"
	"math"

	"github.com/wonny/optrisk/internal/contracts"
)

// Binomial step limits
const (
	MinBinomialSteps     = 1
	MaxBinomialSteps     = 10000
	DefaultBinomialSteps = 500
)

// Binomial is a Cox-Ross-Rubinstein tree pricer for European exercise.
// Greeks come from finite differences on the tree price.
type Binomial struct {
	Steps int
}

// NewBinomial returns a tree pricer with the given number of steps
func NewBinomial(steps int) (Binomial, error) {
	b := Binomial{Steps: steps}
	if err := b.validate(""); err != nil {
		return Binomial{}, err
	}
	return b, nil
}

// String names the model for cache keys and reports
func (b Binomial) String() string {
	return fmt.Sprintf("binomial(steps=%d)", b.Steps)
}

func (b Binomial) validate(assetID string) error {
	if b.Steps < MinBinomialSteps || b.Steps > MaxBinomialSteps {
		return &contracts.InvalidInstrumentError{
			AssetID: assetID,
			Field:   "binomial_steps",
			Value:   float64(b.Steps),
			Reason:  fmt.Sprintf("must be between %d and %d", MinBinomialSteps, MaxBinomialSteps),
		}
	}
	return nil
}

// Price implements Pricer
func (b Binomial) Price(option contracts.EuropeanOption, market contracts.MarketData) (Greeks, error) {
	if err := ValidateOption(option); err != nil {
		return Greeks{}, err
	}
	if err := b.validate(option.AssetID); err != nil {
		return Greeks{}, err
	}
	if err := ValidateMarketData(option.AssetID, market); err != nil {
		return Greeks{}, err
	}

	if option.Expired() {
		return expired(option, market.SpotPrice), nil
	}

	// 위험중립 확률이 [0,1] 을 벗어나면 트리가 성립하지 않음
	dt := option.TimeToExpiry / float64(b.Steps)
	if p := riskNeutralProbability(market.RiskFreeRate, effectiveVolatility(market.Volatility), dt); p < 0 || p > 1 || !isFinite(p) {
		return Greeks{}, &contracts.NumericalInstabilityError{AssetID: option.AssetID, Quantity: "tree_probability", Value: p}
	}

	g := numericalGreeks(option, market, func(spot, rate, tau, sigma float64) float64 {
		return b.value(option.Type, spot, option.Strike, rate, tau, sigma)
	})
	if err := checkFinite(option.AssetID, g); err != nil {
		return Greeks{}, err
	}
	return g, nil
}

func riskNeutralProbability(rate, sigma, dt float64) float64 {
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	return (math.Exp(rate*dt) - d) / (u - d)
}

// value rolls the tree back from the terminal payoffs
func (b Binomial) value(optionType contracts.OptionType, spot, strike, rate, tau, sigma float64) float64 {
	if tau <= 0 {
		return intrinsic(optionType, spot, strike)
	}

	n := b.Steps
	dt := tau / float64(n)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp(rate*dt) - d) / (u - d)
	discount := math.Exp(-rate * dt)

	values := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		st := spot * math.Pow(u, float64(n-i)) * math.Pow(d, float64(i))
		values[i] = intrinsic(optionType, st, strike)
	}
	for step := n - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			values[i] = discount * (p*values[i] + (1-p)*values[i+1])
		}
	}
	return values[0]
}
