// Package request decodes and validates boundary records (JSON bodies, YAML
// files) and converts them into engine types.
//
// Validation here is structural only: required fields, non-empty ids, a known
// option type. Economic checks (strike > 0, spot > 0, vol >= 0) stay in the
// engine so that their error kinds reach the caller unchanged.
package request

// PositionRecord is one portfolio entry
// {"type": "call", "strike": 100, "expiry": 1.0, "asset_id": "X", "quantity": 10}
type PositionRecord struct {
	Type     string   `json:"type" yaml:"type" validate:"required,optiontype"`
	Strike   *float64 `json:"strike" yaml:"strike" validate:"required"`
	Expiry   *float64 `json:"expiry" yaml:"expiry" validate:"required"`
	AssetID  string   `json:"asset_id" yaml:"asset_id" validate:"required"`
	Quantity *int64   `json:"quantity" yaml:"quantity" validate:"required"` // 0 은 유효, 생략은 오류
}

// MarketRecord is one asset's market data {"spot": 100, "rate": 0.05, "vol": 0.2}
type MarketRecord struct {
	Spot *float64 `json:"spot" yaml:"spot" validate:"required"`
	Rate *float64 `json:"rate" yaml:"rate" validate:"required"`
	Vol  *float64 `json:"vol" yaml:"vol" validate:"required"`
}

// RiskRequest is the body of POST /calculate_risk
// market_data 값 레코드는 validateRecords 에서 검사 (map 값은 태그로 dive 안 됨)
type RiskRequest struct {
	Portfolio  []PositionRecord        `json:"portfolio" yaml:"portfolio" validate:"dive"`
	MarketData map[string]MarketRecord `json:"market_data" yaml:"market_data" validate:"dive,keys,required,endkeys"`
	Model      *ModelRecord            `json:"model,omitempty" yaml:"model" validate:"omitempty"` // 생략 시 서버 기본 모델
}

// PortfolioRequest is a portfolio priced against the server-held snapshot
type PortfolioRequest struct {
	Portfolio []PositionRecord `json:"portfolio" yaml:"portfolio" validate:"dive"`
	Model     *ModelRecord     `json:"model,omitempty" yaml:"model" validate:"omitempty"`
}

// OptionRequest prices a single option
type OptionRequest struct {
	Type    string       `json:"type" validate:"required,optiontype"`
	Strike  *float64     `json:"strike" validate:"required"`
	Expiry  *float64     `json:"expiry" validate:"required"`
	AssetID string       `json:"asset_id"`
	Market  MarketRecord `json:"market"`
	Model   *ModelRecord `json:"model,omitempty" validate:"omitempty"`
}

// ImpliedVolRequest solves for σ given an observed option price
type ImpliedVolRequest struct {
	Type    string   `json:"type" validate:"required,optiontype"`
	Strike  *float64 `json:"strike" validate:"required"`
	Expiry  *float64 `json:"expiry" validate:"required"`
	AssetID string   `json:"asset_id"`
	Spot    *float64 `json:"spot" validate:"required"`
	Rate    *float64 `json:"rate" validate:"required"`
	Price   *float64 `json:"price" validate:"required"`
}

// Float returns a pointer to v, for building records in code
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for building records in code
func Int(v int64) *int64 {
	return &v
}
