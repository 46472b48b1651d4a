// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "optrisk"

// Calculation outcomes
const (
	OutcomeOK     = "ok"
	OutcomeCached = "cached"
)

// Metrics groups every collector on a private registry
// ⭐ SSOT: 전역 레지스트리 대신 인스턴스별 레지스트리 (테스트 격리)
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	portfolioPositions  prometheus.Histogram

	cacheLookups *prometheus.CounterVec
	rateLimited  prometheus.Counter

	snapshotAssets    prometheus.Gauge
	snapshotLoadedAt  prometheus.Gauge
	snapshotRefreshes *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),

		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		calculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "calculations_total",
			Help:      "Risk calculations by outcome (ok, cached or error kind)",
		}, []string{"outcome"}),

		calculationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "calculation_duration_seconds",
			Help:      "Engine time per calculation",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"operation"}),

		portfolioPositions: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "portfolio_positions",
			Help:      "Positions per calculated portfolio",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by result (hit, miss)",
		}, []string{"result"}),

		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected with 429",
		}),

		snapshotAssets: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "snapshot_assets",
			Help:      "Assets in the current market data snapshot",
		}),

		snapshotLoadedAt: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "snapshot_loaded_timestamp_seconds",
			Help:      "Unix time of the last successful snapshot load",
		}),

		snapshotRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "snapshot_refreshes_total",
			Help:      "Snapshot refresh attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one served request; route is the mux path template.
// All Observe methods are no-ops on a nil *Metrics (METRICS_ENABLED=false).
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveCalculation records one engine call; outcome is OutcomeOK, OutcomeCached or an error kind
func (m *Metrics) ObserveCalculation(operation, outcome string, positions int, d time.Duration) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCached {
		return
	}
	m.calculationDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.portfolioPositions.Observe(float64(positions))
}

// ObserveCache records a result cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// IncRateLimited counts a rejected request
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// ObserveSnapshot records a snapshot refresh
func (m *Metrics) ObserveSnapshot(assets int, loadedAt time.Time, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.snapshotRefreshes.WithLabelValues("error").Inc()
		return
	}
	m.snapshotRefreshes.WithLabelValues("ok").Inc()
	m.snapshotAssets.Set(float64(assets))
	m.snapshotLoadedAt.Set(float64(loadedAt.Unix()))
}
