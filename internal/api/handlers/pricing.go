package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/pkg/logger"
	"github.com/wonny/optrisk/pkg/metrics"
)

// PricingHandler handles single-option endpoints
type PricingHandler struct {
	pricer  pricing.Pricer
	ivOpts  pricing.IVOptions
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewPricingHandler creates a new pricing handler; a nil pricer means Black-Scholes.
// 내재 변동성은 모델과 무관하게 Black-Scholes 기준
func NewPricingHandler(pricer pricing.Pricer, m *metrics.Metrics, log *logger.Logger) *PricingHandler {
	if pricer == nil {
		pricer = pricing.NewBlackScholes()
	}
	return &PricingHandler{
		pricer:  pricer,
		ivOpts:  pricing.DefaultIVOptions(),
		metrics: m,
		logger:  log,
	}
}

// OptionResponse is one priced option (per unit, rho included)
type OptionResponse struct {
	Model  string                   `json:"model"`
	Option contracts.EuropeanOption `json:"option"`
	Market contracts.MarketData     `json:"market"`
	Greeks pricing.Greeks           `json:"greeks"`
}

// ImpliedVolResponse is the solved volatility
type ImpliedVolResponse struct {
	Option     contracts.EuropeanOption `json:"option"`
	Price      float64                  `json:"price"`
	ImpliedVol float64                  `json:"implied_vol"`
}

// PriceOption returns PV and Greeks for one option
// POST /api/pricing/option
func (h *PricingHandler) PriceOption(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req request.OptionRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, "price", start, err)
		return
	}

	opt, err := req.Option()
	if err != nil {
		h.fail(w, r, "price", start, err)
		return
	}
	md := req.MarketData()

	pricer, err := req.Model.Pricer()
	if err != nil {
		h.fail(w, r, "price", start, err)
		return
	}
	if pricer == nil {
		pricer = h.pricer
	}

	greeks, err := pricer.Price(opt, md)
	if err != nil {
		h.fail(w, r, "price", start, err)
		return
	}

	h.metrics.ObserveCalculation("price", metrics.OutcomeOK, 1, time.Since(start))
	respondJSON(w, http.StatusOK, OptionResponse{
		Model:  pricing.Describe(pricer),
		Option: opt,
		Market: md,
		Greeks: greeks,
	})
}

// ImpliedVol solves for σ from an observed price
// POST /api/pricing/implied-vol
func (h *PricingHandler) ImpliedVol(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req request.ImpliedVolRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, "implied_vol", start, err)
		return
	}

	opt, err := req.Option()
	if err != nil {
		h.fail(w, r, "implied_vol", start, err)
		return
	}

	price := *req.Price
	sigma, err := pricing.ImpliedVolatility(opt, req.MarketData(), price, h.ivOpts)
	if err != nil {
		h.fail(w, r, "implied_vol", start, err)
		return
	}

	h.metrics.ObserveCalculation("implied_vol", metrics.OutcomeOK, 1, time.Since(start))
	respondJSON(w, http.StatusOK, ImpliedVolResponse{
		Option:     opt,
		Price:      price,
		ImpliedVol: sigma,
	})
}

func (h *PricingHandler) fail(w http.ResponseWriter, r *http.Request, operation string, start time.Time, err error) {
	status := respondFailure(w, err)

	kind := outcome(err)
	if status == http.StatusUnprocessableEntity && !contracts.IsEngineError(err) {
		kind = KindImpliedVol
	}
	h.metrics.ObserveCalculation(operation, kind, 1, time.Since(start))

	logger.FromContext(r.Context(), h.logger).WithError(err).WithFields(map[string]interface{}{
		"operation": operation,
		"status":    status,
	}).Debug("Pricing request rejected")
}
