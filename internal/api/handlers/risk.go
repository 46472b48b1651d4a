package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/marketdata"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/internal/risk"
	"github.com/wonny/optrisk/pkg/logger"
	"github.com/wonny/optrisk/pkg/metrics"
	"github.com/wonny/optrisk/pkg/redis"
)

// SnapshotVersionHeader carries the market data generation a snapshot result was computed on
const SnapshotVersionHeader = "X-Snapshot-Version"

// RiskHandler handles portfolio risk endpoints
// ⭐ SSOT: 요청 → 엔진 입력 조립은 이 구조체에서만 (엔진은 순수 계산기)
type RiskHandler struct {
	engine   *risk.Engine
	cache    *redis.Cache
	ttl      time.Duration
	snapshot *marketdata.Snapshot // nil = 스냅샷 모드 비활성
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(engine *risk.Engine, cache *redis.Cache, ttl time.Duration, snapshot *marketdata.Snapshot, m *metrics.Metrics, log *logger.Logger) *RiskHandler {
	return &RiskHandler{
		engine:   engine,
		cache:    cache,
		ttl:      ttl,
		snapshot: snapshot,
		metrics:  m,
		logger:   log,
	}
}

// Calculate prices a portfolio against market data supplied in the body
// POST /calculate_risk
// POST /api/risk/calculate
func (h *RiskHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req request.RiskRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, "calculate", 0, start, err)
		return
	}

	portfolio, store, err := req.Inputs()
	if err != nil {
		h.fail(w, r, "calculate", len(req.Portfolio), start, err)
		return
	}
	engine, err := h.engineFor(req.Model)
	if err != nil {
		h.fail(w, r, "calculate", portfolio.Len(), start, err)
		return
	}

	key := redis.RiskResultKey(engine.Model(), request.CacheKey(portfolio, store))
	result, cached, err := h.compute(r.Context(), key, func() (contracts.RiskResult, error) {
		return engine.CalculatePortfolioRisk(portfolio, store)
	})
	if err != nil {
		h.fail(w, r, "calculate", portfolio.Len(), start, err)
		return
	}

	h.observe("calculate", portfolio.Len(), start, cached)
	respondJSON(w, http.StatusOK, result)
}

// CalculateSnapshot prices a portfolio against the server-held snapshot
// POST /api/risk/calculate/snapshot
func (h *RiskHandler) CalculateSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, KindUnavailable, "market data snapshot is not enabled (MARKET_DATA_SOURCE=request)")
		return
	}

	var req request.PortfolioRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, "snapshot", 0, start, err)
		return
	}

	portfolio, err := request.Portfolio(req.Portfolio)
	if err != nil {
		h.fail(w, r, "snapshot", len(req.Portfolio), start, err)
		return
	}
	engine, err := h.engineFor(req.Model)
	if err != nil {
		h.fail(w, r, "snapshot", portfolio.Len(), start, err)
		return
	}

	// 요청 전체에서 같은 세대 사용
	view := h.snapshot.View()
	if view.Version == 0 {
		respondError(w, http.StatusServiceUnavailable, KindUnavailable, "market data snapshot not loaded yet")
		return
	}

	// 버전이 시장 데이터를 식별하므로 키에는 포트폴리오만
	key := redis.SnapshotResultKey(view.Version, engine.Model(), request.CacheKey(portfolio, nil))
	result, cached, err := h.compute(r.Context(), key, func() (contracts.RiskResult, error) {
		return engine.CalculatePortfolioRisk(portfolio, view.Store)
	})
	if err != nil {
		h.fail(w, r, "snapshot", portfolio.Len(), start, err)
		return
	}

	h.observe("snapshot", portfolio.Len(), start, cached)
	w.Header().Set(SnapshotVersionHeader, strconv.FormatInt(view.Version, 10))
	respondJSON(w, http.StatusOK, result)
}

// Report returns the detailed per-position and per-asset breakdown
// POST /api/risk/report
func (h *RiskHandler) Report(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req request.RiskRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, "report", 0, start, err)
		return
	}

	portfolio, store, err := req.Inputs()
	if err != nil {
		h.fail(w, r, "report", len(req.Portfolio), start, err)
		return
	}

	engine, err := h.engineFor(req.Model)
	if err != nil {
		h.fail(w, r, "report", portfolio.Len(), start, err)
		return
	}

	// 리포트는 ID/시각이 매번 달라 캐시하지 않음
	report, err := engine.CalculateReport(portfolio, store)
	if err != nil {
		h.fail(w, r, "report", portfolio.Len(), start, err)
		return
	}

	h.observe("report", portfolio.Len(), start, false)
	respondJSON(w, http.StatusOK, report)
}

// engineFor applies a per-request model override
func (h *RiskHandler) engineFor(model *request.ModelRecord) (*risk.Engine, error) {
	p, err := model.Pricer()
	if err != nil {
		return nil, err
	}
	return h.engine.WithModel(p), nil
}

// compute runs fn through the result cache when it is enabled
func (h *RiskHandler) compute(ctx context.Context, key string, fn func() (contracts.RiskResult, error)) (contracts.RiskResult, bool, error) {
	if !h.cache.Enabled() {
		result, err := fn()
		return result, false, err
	}

	var result contracts.RiskResult
	hit, err := h.cache.GetOrSet(ctx, key, &result, h.ttl, func() (interface{}, error) {
		computed, err := fn()
		if err != nil {
			return nil, err
		}
		return computed, nil
	})
	if err != nil {
		return contracts.RiskResult{}, false, err
	}
	h.metrics.ObserveCache(hit)
	return result, hit, nil
}

func (h *RiskHandler) observe(operation string, positions int, start time.Time, cached bool) {
	result := metrics.OutcomeOK
	if cached {
		result = metrics.OutcomeCached
	}
	h.metrics.ObserveCalculation(operation, result, positions, time.Since(start))
}

func (h *RiskHandler) fail(w http.ResponseWriter, r *http.Request, operation string, positions int, start time.Time, err error) {
	status := respondFailure(w, err)
	h.metrics.ObserveCalculation(operation, outcome(err), positions, time.Since(start))

	log := logger.FromContext(r.Context(), h.logger).WithError(err).WithFields(map[string]interface{}{
		"operation": operation,
		"status":    status,
		"positions": positions,
	})
	if status >= http.StatusInternalServerError {
		log.Error("Risk calculation failed")
		return
	}
	log.Debug("Risk calculation rejected")
}
