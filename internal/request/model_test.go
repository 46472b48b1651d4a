package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
)

func TestModelRecord_Pricer(t *testing.T) {
	var none *ModelRecord
	p, err := none.Pricer()
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = (&ModelRecord{Name: "binomial"}).Pricer()
	require.NoError(t, err)
	assert.Equal(t, pricing.Binomial{Steps: pricing.DefaultBinomialSteps}, p)

	p, err = (&ModelRecord{Name: "Merton-Jump", JumpIntensity: 0.4, JumpMean: -0.1, JumpVol: 0.2}).Pricer()
	require.NoError(t, err)
	assert.Equal(t, pricing.MertonJump{Lambda: 0.4, Mean: -0.1, Vol: 0.2}, p)

	_, err = (&ModelRecord{Name: "binomial", Steps: -5}).Pricer()
	assert.ErrorIs(t, err, contracts.ErrInvalidInstrument)

	_, err = (&ModelRecord{Name: "heston"}).Pricer()
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDecodeJSON_ModelRecord(t *testing.T) {
	body := `{
		"portfolio": [{"type": "call", "strike": 100, "expiry": 1, "asset_id": "X", "quantity": 1}],
		"market_data": {"X": {"spot": 100, "rate": 0.05, "vol": 0.2}},
		"model": {"name": "binomial", "steps": 250}
	}`
	var req RiskRequest
	require.NoError(t, DecodeJSON(strings.NewReader(body), &req))
	require.NotNil(t, req.Model)
	assert.Equal(t, 250, req.Model.Steps)

	tests := map[string]FieldError{
		`{"portfolio": [], "model": {"steps": 10}}`:      {Field: "model.name", Tag: "required"},
		`{"portfolio": [], "model": {"name": "heston"}}`: {Field: "model.name", Tag: "pricingmodel"},
	}
	for input, want := range tests {
		var pr PortfolioRequest
		err := DecodeJSON(strings.NewReader(input), &pr)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, input)
		assert.Equal(t, []FieldError{want}, verr.Fields, input)
	}
}

func TestDecodeYAML_ModelRecord(t *testing.T) {
	doc := `
portfolio:
  - {type: put, strike: 100, expiry: 1, asset_id: X, quantity: 2}
market_data:
  X: {spot: 100, rate: 0.05, vol: 0.2}
model:
  name: merton_jump
  jump_intensity: 0.5
  jump_mean: -0.1
  jump_vol: 0.15
`
	req, err := DecodeYAML([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, req.Model)
	assert.Equal(t, ModelRecord{Name: "merton_jump", JumpIntensity: 0.5, JumpMean: -0.1, JumpVol: 0.15}, *req.Model)
}
