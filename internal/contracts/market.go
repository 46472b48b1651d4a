package contracts

// MarketData is the per-asset pricing input
type MarketData struct {
	AssetID      string  `json:"asset_id" yaml:"asset_id"`
	SpotPrice    float64 `json:"spot" yaml:"spot"`
	RiskFreeRate float64 `json:"rate" yaml:"rate"` // 음수 허용
	Volatility   float64 `json:"vol" yaml:"vol"`   // 연율화 σ
}

// NewMarketData builds a market data record
func NewMarketData(assetID string, spot, rate, vol float64) MarketData {
	return MarketData{
		AssetID:      assetID,
		SpotPrice:    spot,
		RiskFreeRate: rate,
		Volatility:   vol,
	}
}

// MarketDataSource resolves market data by asset id
// ⭐ 엔진은 이 인터페이스만 의존 (marketdata.Store, Snapshot 모두 구현)
type MarketDataSource interface {
	Get(assetID string) (MarketData, bool)
}
