package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optrisk/internal/api"
	"github.com/wonny/optrisk/internal/api/handlers"
	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/marketdata"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/internal/risk"
	"github.com/wonny/optrisk/pkg/httputil"
	"github.com/wonny/optrisk/pkg/logger"
	"github.com/wonny/optrisk/pkg/redis"
)

func newAPI(t *testing.T, snap *marketdata.Snapshot) *Client {
	t.Helper()

	log := logger.Nop()
	engine := risk.MustNewEngine()
	h := api.Handlers{
		Risk:    handlers.NewRiskHandler(engine, redis.NewCache(redis.Disabled(), "test"), time.Minute, snap, nil, log),
		Pricing: handlers.NewPricingHandler(nil, nil, log),
		Market:  handlers.NewMarketHandler(snap),
		Health:  handlers.NewHealthHandler(nil, redis.Disabled(), snap),
	}
	srv := httptest.NewServer(api.NewRouter(h, nil, nil, log))
	t.Cleanup(srv.Close)

	return NewWithHTTP(srv.URL+"/", httputil.New(log).DisableRetry())
}

func referenceRequest() *request.RiskRequest {
	return &request.RiskRequest{
		Portfolio: []request.PositionRecord{
			{Type: "call", Strike: request.Float(100), Expiry: request.Float(1), AssetID: "X", Quantity: request.Int(10)},
		},
		MarketData: map[string]request.MarketRecord{
			"X": {Spot: request.Float(100), Rate: request.Float(0.05), Vol: request.Float(0.2)},
		},
	}
}

func TestClient_CalculateRisk(t *testing.T) {
	c := newAPI(t, nil)

	res, err := c.CalculateRisk(context.Background(), referenceRequest())
	require.NoError(t, err)
	assert.InDelta(t, 104.50584, res.TotalPV, 1e-4)
	assert.InDelta(t, 13.198348, res.ValueAtRisk95, 1e-4)
}

func TestClient_EngineError(t *testing.T) {
	c := newAPI(t, nil)
	req := referenceRequest()
	req.Portfolio[0].AssetID = "AAPL"

	_, err := c.CalculateRisk(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingMarketData)

	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, re.Status)
	assert.Equal(t, contracts.KindMissingMarketData, re.Kind)
}

func TestClient_ValidationError(t *testing.T) {
	c := newAPI(t, nil)
	req := referenceRequest()
	req.Portfolio[0].Strike = nil

	_, err := c.CalculateRisk(context.Background(), req)
	assert.ErrorIs(t, err, request.ErrInvalidRequest)

	re, ok := AsRemote(err)
	require.True(t, ok)
	require.Len(t, re.Fields, 1)
	assert.Equal(t, "portfolio[0].strike", re.Fields[0].Field)
}

func TestClient_Snapshot(t *testing.T) {
	snap := marketdata.NewSnapshot()
	snap.Replace(marketdata.NewStore(contracts.NewMarketData("X", 100, 0.05, 0.2)), time.Now())
	snap.Replace(marketdata.NewStore(contracts.NewMarketData("X", 100, 0.05, 0.2)), time.Now())
	c := newAPI(t, snap)

	res, version, err := c.CalculateSnapshot(context.Background(), &request.PortfolioRequest{
		Portfolio: referenceRequest().Portfolio,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.InDelta(t, 13.198348, res.ValueAtRisk95, 1e-4)
}

func TestClient_ReportAndPricing(t *testing.T) {
	c := newAPI(t, nil)
	ctx := context.Background()

	report, err := c.Report(ctx, referenceRequest())
	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, [16]byte(report.ID))
	require.Len(t, report.Positions, 1)

	priced, err := c.PriceOption(ctx, &request.OptionRequest{
		Type:   "put",
		Strike: request.Float(100),
		Expiry: request.Float(1),
		Market: request.MarketRecord{Spot: request.Float(100), Rate: request.Float(0.05), Vol: request.Float(0.2)},
	})
	require.NoError(t, err)
	assert.InDelta(t, 5.573526, priced.Greeks.PV, 1e-5)
	assert.InDelta(t, -41.890461, priced.Greeks.Rho, 1e-5)

	iv, err := c.ImpliedVol(ctx, &request.ImpliedVolRequest{
		Type:   "put",
		Strike: request.Float(100),
		Expiry: request.Float(1),
		Spot:   request.Float(100),
		Rate:   request.Float(0.05),
		Price:  request.Float(5.573526),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, iv.ImpliedVol, 1e-5)
}

func TestClient_Health(t *testing.T) {
	c := newAPI(t, nil)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestClient_NonJSONError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWithHTTP(srv.URL, httputil.New(logger.Nop()).WithRetry(1, time.Millisecond))
	_, err := c.CalculateRisk(context.Background(), referenceRequest())

	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, re.Status)
	assert.Equal(t, contracts.KindInternal, re.Kind)
	assert.Equal(t, "bad gateway", re.Message)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
