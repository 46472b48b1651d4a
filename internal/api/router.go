package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/optrisk/internal/api/handlers"
	"github.com/wonny/optrisk/pkg/logger"
	"github.com/wonny/optrisk/pkg/metrics"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Risk      *handlers.RiskHandler
	Pricing   *handlers.PricingHandler
	Market    *handlers.MarketHandler
	Scheduler *handlers.SchedulerHandler // nil 이면 라우트 없음
	Health    *handlers.HealthHandler
}

// NewRouter creates and configures the HTTP router.
// limiter and m may be nil (rate limiting / metrics off).
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, limiter *RateLimiter, m *metrics.Metrics, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Health).Methods("GET")

	// Prometheus
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	// Original route (기존 클라이언트 호환)
	r.HandleFunc("/calculate_risk", h.Risk.Calculate).Methods("POST")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Risk endpoints
	api.HandleFunc("/risk/calculate", h.Risk.Calculate).Methods("POST")
	api.HandleFunc("/risk/calculate/snapshot", h.Risk.CalculateSnapshot).Methods("POST")
	api.HandleFunc("/risk/report", h.Risk.Report).Methods("POST")

	// Pricing endpoints
	api.HandleFunc("/pricing/option", h.Pricing.PriceOption).Methods("POST")
	api.HandleFunc("/pricing/implied-vol", h.Pricing.ImpliedVol).Methods("POST")

	// Market data endpoints
	api.HandleFunc("/market/snapshot", h.Market.GetSnapshot).Methods("GET")

	// Scheduler endpoints
	if h.Scheduler != nil {
		api.HandleFunc("/scheduler/jobs", h.Scheduler.ListJobs).Methods("GET")
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path)
	})

	// Apply middleware (바깥 → 안쪽 순서)
	r.Use(requestIDMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware(m))
	r.Use(recoveryMiddleware(log))
	r.Use(rateLimitMiddleware(limiter, m))

	return r
}
