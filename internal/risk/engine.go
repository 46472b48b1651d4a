package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
)

// =============================================================================
// RiskEngine - 순수 계산기
// =============================================================================

// Engine 리스크 엔진 (순수 계산기)
// ⭐ SSOT: 시장 데이터 수집/요청 파싱/상태 코드 매핑은 경계 레이어(api, cmd)에서 조립
// internal/risk는 순수 계산만 담당. 로그 없음, 호출 간 상태 없음
type Engine struct {
	aggregator *Aggregator
	estimator  Estimator
	now        func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithPricer replaces the closed-form pricer (pricing.NewPricer 로 모델 선택)
func WithPricer(p pricing.Pricer) Option {
	return func(e *Engine) {
		e.aggregator = NewAggregator(p)
	}
}

// WithEstimator replaces the 1-day 95% estimator.
// CalculatePortfolioRisk still reports the result as ValueAtRisk95.
func WithEstimator(est Estimator) Option {
	return func(e *Engine) {
		e.estimator = est
	}
}

// WithClock sets the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine 새 리스크 엔진 생성
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		aggregator: NewAggregator(nil),
		estimator:  DefaultEstimator(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.estimator.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustNewEngine is NewEngine that panics on invalid options
func MustNewEngine(opts ...Option) *Engine {
	e, err := NewEngine(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// CalculatePortfolioRisk aggregates PV and Greeks over the portfolio and adds the VaR.
// Errors are returned unchanged from the aggregator, pricer or estimator.
func (e *Engine) CalculatePortfolioRisk(portfolio contracts.Portfolio, source contracts.MarketDataSource) (contracts.RiskResult, error) {
	agg, err := e.aggregator.Aggregate(portfolio, source)
	if err != nil {
		return contracts.RiskResult{}, err
	}

	v, err := e.estimator.Estimate(agg.Exposures)
	if err != nil {
		return contracts.RiskResult{}, err
	}

	result := agg.Result()
	result.ValueAtRisk95 = v.VaR
	return result, nil
}

// CalculateReport is CalculatePortfolioRisk with per-position and per-asset detail
func (e *Engine) CalculateReport(portfolio contracts.Portfolio, source contracts.MarketDataSource) (*Report, error) {
	agg, err := e.aggregator.Aggregate(portfolio, source)
	if err != nil {
		return nil, err
	}

	v, err := e.estimator.Estimate(agg.Exposures)
	if err != nil {
		return nil, err
	}

	result := agg.Result()
	result.ValueAtRisk95 = v.VaR

	return &Report{
		ID:           uuid.New(),
		Model:        e.Model(),
		Result:       result,
		TotalRho:     agg.Totals.Rho,
		VaR:          v,
		Positions:    agg.Positions,
		Exposures:    agg.Exposures,
		CalculatedAt: e.now(),
	}, nil
}

// Model names the pricer, e.g. "black_scholes" or "binomial(steps=500)".
// 결과 캐시 키에 포함 (모델이 다르면 같은 입력도 다른 결과)
func (e *Engine) Model() string {
	return pricing.Describe(e.aggregator.pricer)
}

// WithModel returns a copy of the engine that prices with p; nil returns e itself.
// 추정기/시계는 공유
func (e *Engine) WithModel(p pricing.Pricer) *Engine {
	if p == nil {
		return e
	}
	clone := *e
	clone.aggregator = NewAggregator(p)
	return &clone
}

// Estimator returns the configured VaR estimator
func (e *Engine) Estimator() Estimator {
	return e.estimator
}
