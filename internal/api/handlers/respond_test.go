package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/pkg/metrics"
)

func TestRespondFailure(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", request.Validate(&request.PositionRecord{}), http.StatusBadRequest, KindInvalidRequest},
		{"missing market data", &contracts.MissingMarketDataError{AssetID: "AAPL"}, http.StatusUnprocessableEntity, contracts.KindMissingMarketData},
		{"numerical", &contracts.NumericalInstabilityError{AssetID: "X", Quantity: "pv"}, http.StatusUnprocessableEntity, contracts.KindNumericalInstability},
		{"not converged", fmt.Errorf("%w: 1 iterations", pricing.ErrNotConverged), http.StatusUnprocessableEntity, KindImpliedVol},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, contracts.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			status := respondFailure(rec, tt.err)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Error)
		})
	}
}

func TestRespondFailure_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	respondFailure(rec, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, metrics.OutcomeOK, outcome(nil))
	assert.Equal(t, KindInvalidRequest, outcome(request.Validate(&request.MarketRecord{})))
	assert.Equal(t, contracts.KindInvalidInstrument, outcome(&contracts.InvalidInstrumentError{AssetID: "X"}))
}
