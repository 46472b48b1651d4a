package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCalculation(t *testing.T) {
	m := New()

	m.ObserveCalculation("portfolio", OutcomeOK, 3, time.Millisecond)
	m.ObserveCalculation("portfolio", OutcomeOK, 1, time.Millisecond)
	m.ObserveCalculation("portfolio", "missing_market_data", 2, time.Microsecond)
	m.ObserveCalculation("portfolio", OutcomeCached, 3, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calculations.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues("missing_market_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues(OutcomeCached)))
	// 캐시 히트는 엔진 지연/포지션 수에 포함되지 않음
	assert.Equal(t, 1, testutil.CollectAndCount(m.calculationDuration))
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("POST", "/calculate_risk", 200, 5*time.Millisecond)
	m.ObserveHTTP("POST", "/calculate_risk", 422, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/calculate_risk", "422")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpRequests))
}

func TestObserveCacheAndRateLimit(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.IncRateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestObserveSnapshot(t *testing.T) {
	m := New()
	at := time.Unix(1_700_000_000, 0)

	m.ObserveSnapshot(12, at, nil)
	m.ObserveSnapshot(0, time.Time{}, errors.New("db down"))

	assert.Equal(t, 12.0, testutil.ToFloat64(m.snapshotAssets))
	assert.Equal(t, 1.7e9, testutil.ToFloat64(m.snapshotLoadedAt))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotRefreshes.WithLabelValues("error")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCalculation("portfolio", OutcomeOK, 1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `optrisk_engine_calculations_total{outcome="ok"} 1`))
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
