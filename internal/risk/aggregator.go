package risk

import (
	"math"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
)

// TradingDaysPerYear 연환산 변동성 → 일간 변동성 변환
const TradingDaysPerYear = 252

// =============================================================================
// PortfolioAggregator
// =============================================================================

// Aggregator 포지션별 가격 계산 후 수량 가중 합산
// ⭐ SSOT: all-or-nothing. 첫 에러에서 중단, 부분 결과 없음
type Aggregator struct {
	pricer pricing.Pricer
}

// NewAggregator returns an aggregator using pricer for per-unit valuation
func NewAggregator(pricer pricing.Pricer) *Aggregator {
	if pricer == nil {
		pricer = pricing.NewBlackScholes()
	}
	return &Aggregator{pricer: pricer}
}

// Aggregate prices every position and sums the scaled results in portfolio order.
// Errors from the source lookup or the pricer are returned unchanged.
func (a *Aggregator) Aggregate(portfolio contracts.Portfolio, source contracts.MarketDataSource) (*Aggregation, error) {
	n := portfolio.Len()
	agg := &Aggregation{
		Positions: make([]PositionContribution, 0, n),
	}

	// 자산별 net delta (최초 등장 순서 유지)
	exposureIdx := make(map[string]int)

	for i := 0; i < n; i++ {
		pos := portfolio.At(i)
		assetID := pos.Instrument.AssetID

		var (
			md contracts.MarketData
			ok bool
		)
		if source != nil {
			md, ok = source.Get(assetID)
		}
		if !ok {
			return nil, &contracts.MissingMarketDataError{AssetID: assetID}
		}

		unit, err := a.pricer.Price(pos.Instrument, md)
		if err != nil {
			return nil, err
		}

		scaled := unit.Scale(float64(pos.Quantity))
		agg.Totals = agg.Totals.Add(scaled)
		agg.Positions = append(agg.Positions, PositionContribution{
			Index:      i,
			Instrument: pos.Instrument,
			Quantity:   pos.Quantity,
			Unit:       unit,
			Scaled:     scaled,
		})

		j, seen := exposureIdx[assetID]
		if !seen {
			j = len(agg.Exposures)
			exposureIdx[assetID] = j
			agg.Exposures = append(agg.Exposures, AssetExposure{
				AssetID:    assetID,
				Spot:       md.SpotPrice,
				Volatility: md.Volatility,
			})
		}
		agg.Exposures[j].NetDelta += scaled.Delta
	}

	for i := range agg.Exposures {
		finishExposure(&agg.Exposures[i])
	}

	return agg, nil
}

func finishExposure(e *AssetExposure) {
	e.DollarDelta = e.NetDelta * e.Spot
	e.DailyVolatility = e.Volatility / math.Sqrt(TradingDaysPerYear)
	e.StdDev = math.Abs(e.DollarDelta) * e.DailyVolatility
}

// Result converts aggregated totals into a RiskResult without VaR
func (a *Aggregation) Result() contracts.RiskResult {
	return contracts.RiskResult{
		TotalPV:    a.Totals.PV,
		TotalDelta: a.Totals.Delta,
		TotalGamma: a.Totals.Gamma,
		TotalVega:  a.Totals.Vega,
		TotalTheta: a.Totals.Theta,
	}
}
