package request

import (
	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/marketdata"
)

// Option converts the record into an instrument
func (p PositionRecord) Option() (contracts.EuropeanOption, error) {
	return buildOption(p.Type, p.Strike, p.Expiry, p.AssetID)
}

// Portfolio builds an immutable portfolio in request order
func Portfolio(records []PositionRecord) (contracts.Portfolio, error) {
	positions := make([]contracts.Position, 0, len(records))
	for _, rec := range records {
		opt, err := rec.Option()
		if err != nil {
			return contracts.Portfolio{}, err
		}
		positions = append(positions, contracts.Position{Instrument: opt, Quantity: derefInt(rec.Quantity)})
	}
	return contracts.NewPortfolio(positions...), nil
}

// MarketData converts one record keyed by assetID
func (m MarketRecord) MarketData(assetID string) contracts.MarketData {
	return contracts.NewMarketData(assetID, deref(m.Spot), deref(m.Rate), deref(m.Vol))
}

// Store builds the market data store; the map key is the asset id
func Store(records map[string]MarketRecord) *marketdata.Store {
	data := make(map[string]contracts.MarketData, len(records))
	for id, rec := range records {
		data[id] = rec.MarketData(id)
	}
	return marketdata.FromMap(data)
}

// Inputs converts a risk request into engine inputs
func (r *RiskRequest) Inputs() (contracts.Portfolio, *marketdata.Store, error) {
	portfolio, err := Portfolio(r.Portfolio)
	if err != nil {
		return contracts.Portfolio{}, nil, err
	}
	return portfolio, Store(r.MarketData), nil
}

// Option converts the pricing request
func (r *OptionRequest) Option() (contracts.EuropeanOption, error) {
	return buildOption(r.Type, r.Strike, r.Expiry, assetOrDefault(r.AssetID))
}

// MarketData returns the pricing request's market data
func (r *OptionRequest) MarketData() contracts.MarketData {
	return r.Market.MarketData(assetOrDefault(r.AssetID))
}

// Option converts the implied volatility request
func (r *ImpliedVolRequest) Option() (contracts.EuropeanOption, error) {
	return buildOption(r.Type, r.Strike, r.Expiry, assetOrDefault(r.AssetID))
}

// MarketData returns spot and rate; volatility is solved for
func (r *ImpliedVolRequest) MarketData() contracts.MarketData {
	return contracts.NewMarketData(assetOrDefault(r.AssetID), deref(r.Spot), deref(r.Rate), 0)
}

func buildOption(typ string, strike, expiry *float64, assetID string) (contracts.EuropeanOption, error) {
	t, err := contracts.ParseOptionType(typ)
	if err != nil {
		return contracts.EuropeanOption{}, &contracts.InvalidInstrumentError{AssetID: assetID, Field: "type", Reason: "must be call or put"}
	}
	return contracts.NewEuropeanOption(t, deref(strike), deref(expiry), assetID), nil
}

// 단일 옵션 요청은 asset_id 생략 가능
func assetOrDefault(id string) string {
	if id == "" {
		return "default"
	}
	return id
}

func derefInt(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
