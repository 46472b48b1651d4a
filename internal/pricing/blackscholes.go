// Package pricing values European options with the Black-Scholes-Merton closed form,
// a Cox-Ross-Rubinstein tree or Merton's jump-diffusion.
//
// All outputs are per one unit of the instrument. The package is a pure
// calculator: no logging, no shared state, safe for concurrent use.
package pricing

import (
	"math"

	"github.com/wonny/optrisk/internal/contracts"
)

// VolatilityFloor replaces a zero volatility so that d1/d2 stay finite.
// σ → 0 is a removable singularity of the closed form.
const VolatilityFloor = 1e-6

// Greeks is the per-unit valuation of one option
type Greeks struct {
	PV    float64 `json:"pv"`
	Delta float64 `json:"delta"` // ∂PV/∂S
	Gamma float64 `json:"gamma"` // ∂²PV/∂S²
	Vega  float64 `json:"vega"`  // ∂PV/∂σ (σ 1.0 단위)
	Theta float64 `json:"theta"` // 연간 가치 감소 (롱 옵션은 보통 음수)
	Rho   float64 `json:"rho"`   // ∂PV/∂r (r 1.0 단위)
}

// Scale multiplies every field by quantity
func (g Greeks) Scale(quantity float64) Greeks {
	return Greeks{
		PV:    g.PV * quantity,
		Delta: g.Delta * quantity,
		Gamma: g.Gamma * quantity,
		Vega:  g.Vega * quantity,
		Theta: g.Theta * quantity,
		Rho:   g.Rho * quantity,
	}
}

// Add returns the field-wise sum
func (g Greeks) Add(o Greeks) Greeks {
	return Greeks{
		PV:    g.PV + o.PV,
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Vega:  g.Vega + o.Vega,
		Theta: g.Theta + o.Theta,
		Rho:   g.Rho + o.Rho,
	}
}

// Pricer values a single option against one market data record
type Pricer interface {
	Price(option contracts.EuropeanOption, market contracts.MarketData) (Greeks, error)
}

// BlackScholes is the closed-form Pricer (no dividend yield)
type BlackScholes struct{}

// NewBlackScholes returns the closed-form pricer
func NewBlackScholes() BlackScholes {
	return BlackScholes{}
}

// String names the model for cache keys and reports
func (BlackScholes) String() string {
	return string(ModelBlackScholes)
}

// Price computes PV and Greeks for one unit of option
func Price(option contracts.EuropeanOption, market contracts.MarketData) (Greeks, error) {
	return BlackScholes{}.Price(option, market)
}

// Price implements Pricer
func (BlackScholes) Price(option contracts.EuropeanOption, market contracts.MarketData) (Greeks, error) {
	if err := ValidateOption(option); err != nil {
		return Greeks{}, err
	}
	if err := ValidateMarketData(option.AssetID, market); err != nil {
		return Greeks{}, err
	}

	var g Greeks
	if option.Expired() {
		g = expired(option, market.SpotPrice)
	} else {
		g = closedForm(option, market)
	}

	if err := checkFinite(option.AssetID, g); err != nil {
		return Greeks{}, err
	}
	return g, nil
}

// expired values an option at or past expiry: intrinsic value only.
// ATM 은 delta 0 으로 처리
func expired(option contracts.EuropeanOption, spot float64) Greeks {
	k := option.Strike
	if option.Type.IsCall() {
		g := Greeks{PV: math.Max(spot-k, 0)}
		if spot > k {
			g.Delta = 1
		}
		return g
	}

	g := Greeks{PV: math.Max(k-spot, 0)}
	if spot < k {
		g.Delta = -1
	}
	return g
}

func closedForm(option contracts.EuropeanOption, market contracts.MarketData) Greeks {
	s := market.SpotPrice
	k := option.Strike
	r := market.RiskFreeRate
	tau := option.TimeToExpiry
	sigma := effectiveVolatility(market.Volatility)

	sqrtT := math.Sqrt(tau)
	sigmaSqrtT := sigma * sqrtT
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*tau) / sigmaSqrtT
	d2 := d1 - sigmaSqrtT

	discount := math.Exp(-r * tau)
	pdf := NormPDF(d1)
	decay := -(s * pdf * sigma) / (2 * sqrtT)

	g := Greeks{
		Gamma: pdf / (s * sigmaSqrtT),
		Vega:  s * pdf * sqrtT,
	}

	if option.Type.IsCall() {
		nd2 := NormCDF(d2)
		g.PV = s*NormCDF(d1) - k*discount*nd2
		g.Delta = NormCDF(d1)
		g.Theta = decay - r*k*discount*nd2
		g.Rho = k * tau * discount * nd2
	} else {
		nmd2 := NormCDF(-d2)
		g.PV = k*discount*nmd2 - s*NormCDF(-d1)
		g.Delta = NormCDF(d1) - 1
		g.Theta = decay + r*k*discount*nmd2
		g.Rho = -k * tau * discount * nmd2
	}

	// 옵션 가치는 음수가 될 수 없음 (부동소수점 상쇄 잔차 제거)
	if g.PV < 0 {
		g.PV = 0
	}
	return g
}

func effectiveVolatility(sigma float64) float64 {
	if sigma <= 0 {
		return VolatilityFloor
	}
	return sigma
}

// ValidateOption checks the instrument fields the pricer depends on
func ValidateOption(option contracts.EuropeanOption) error {
	switch {
	case option.AssetID == "":
		return &contracts.InvalidInstrumentError{Field: "asset_id", Reason: "must not be empty"}
	case !option.Type.Valid():
		return &contracts.InvalidInstrumentError{AssetID: option.AssetID, Field: "type", Reason: "must be call or put"}
	case !isFinite(option.Strike):
		return &contracts.InvalidInstrumentError{AssetID: option.AssetID, Field: "strike", Value: option.Strike, Reason: "must be finite"}
	case option.Strike <= 0:
		return &contracts.InvalidInstrumentError{AssetID: option.AssetID, Field: "strike", Value: option.Strike, Reason: "must be positive"}
	case !isFinite(option.TimeToExpiry):
		return &contracts.InvalidInstrumentError{AssetID: option.AssetID, Field: "expiry", Value: option.TimeToExpiry, Reason: "must be finite"}
	}
	return nil
}

// ValidateMarketData checks the market fields the pricer depends on
func ValidateMarketData(assetID string, md contracts.MarketData) error {
	switch {
	case !isFinite(md.SpotPrice):
		return &contracts.InvalidMarketDataError{AssetID: assetID, Field: "spot", Value: md.SpotPrice, Reason: "must be finite"}
	case md.SpotPrice <= 0:
		return &contracts.InvalidMarketDataError{AssetID: assetID, Field: "spot", Value: md.SpotPrice, Reason: "must be positive"}
	case !isFinite(md.RiskFreeRate):
		return &contracts.InvalidMarketDataError{AssetID: assetID, Field: "rate", Value: md.RiskFreeRate, Reason: "must be finite"}
	case !isFinite(md.Volatility):
		return &contracts.InvalidMarketDataError{AssetID: assetID, Field: "vol", Value: md.Volatility, Reason: "must be finite"}
	case md.Volatility < 0:
		return &contracts.InvalidMarketDataError{AssetID: assetID, Field: "vol", Value: md.Volatility, Reason: "must not be negative"}
	}
	return nil
}

func checkFinite(assetID string, g Greeks) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"pv", g.PV},
		{"delta", g.Delta},
		{"gamma", g.Gamma},
		{"vega", g.Vega},
		{"theta", g.Theta},
		{"rho", g.Rho},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return &contracts.NumericalInstabilityError{AssetID: assetID, Quantity: f.name, Value: f.value}
		}
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
