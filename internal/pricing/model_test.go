package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optrisk/internal/contracts"
)

func TestBinomial_ConvergesToBlackScholes(t *testing.T) {
	tree, err := NewBinomial(2000)
	require.NoError(t, err)

	for _, opt := range []contracts.EuropeanOption{contracts.Call(100, 1, "X"), contracts.Put(100, 1, "X")} {
		t.Run(opt.Type.String(), func(t *testing.T) {
			want, err := Price(opt, atmMarket)
			require.NoError(t, err)
			got, err := tree.Price(opt, atmMarket)
			require.NoError(t, err)

			assert.InDelta(t, want.PV, got.PV, 1e-2)
			assert.InDelta(t, want.Delta, got.Delta, 1e-2)
			assert.Greater(t, got.Gamma, 0.0)
			assert.InDelta(t, want.Vega, got.Vega, 1.0)
			assert.InDelta(t, want.Theta, got.Theta, 0.5)
			assert.InDelta(t, want.Rho, got.Rho, 0.5)
		})
	}
}

func TestBinomial_PutCallParity(t *testing.T) {
	tree, err := NewBinomial(300)
	require.NoError(t, err)

	md := contracts.NewMarketData("X", 90, 0.03, 0.35)
	call, err := tree.Price(contracts.Call(100, 0.75, "X"), md)
	require.NoError(t, err)
	put, err := tree.Price(contracts.Put(100, 0.75, "X"), md)
	require.NoError(t, err)

	assert.InDelta(t, 90-100*math.Exp(-0.03*0.75), call.PV-put.PV, 1e-9)
}

func TestBinomial_StepLimits(t *testing.T) {
	for _, steps := range []int{0, -1, MaxBinomialSteps + 1} {
		_, err := NewBinomial(steps)
		assert.ErrorIs(t, err, contracts.ErrInvalidInstrument, "steps %d", steps)
	}

	_, err := NewBinomial(MaxBinomialSteps)
	assert.NoError(t, err)

	// 제로값 트리도 가격 계산 시 거부
	_, err = Binomial{}.Price(contracts.Call(100, 1, "X"), atmMarket)
	var ie *contracts.InvalidInstrumentError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "binomial_steps", ie.Field)
	assert.Equal(t, "X", ie.AssetID)
}

func TestBinomial_ExpiredAndValidation(t *testing.T) {
	tree, err := NewBinomial(100)
	require.NoError(t, err)

	g, err := tree.Price(contracts.Call(90, 0, "X"), atmMarket)
	require.NoError(t, err)
	assert.Equal(t, Greeks{PV: 10, Delta: 1}, g)

	_, err = tree.Price(contracts.Call(-1, 1, "X"), atmMarket)
	assert.ErrorIs(t, err, contracts.ErrInvalidInstrument)

	_, err = tree.Price(contracts.Call(100, 1, "X"), contracts.NewMarketData("X", 100, 0.05, -0.1))
	assert.ErrorIs(t, err, contracts.ErrInvalidMarketData)
}

func TestBinomial_DegenerateTree(t *testing.T) {
	tree, err := NewBinomial(10)
	require.NoError(t, err)

	// σ→0, r>0: 위험중립 확률 > 1
	_, err = tree.Price(contracts.Call(100, 1, "X"), contracts.NewMarketData("X", 100, 0.05, 0))
	assert.ErrorIs(t, err, contracts.ErrNumericalInstability)
}

func TestMertonJump_NoJumpsMatchesBlackScholes(t *testing.T) {
	merton, err := NewMertonJump(0, -0.1, 0.3)
	require.NoError(t, err)

	for _, opt := range []contracts.EuropeanOption{contracts.Call(100, 1, "X"), contracts.Put(100, 1, "X")} {
		t.Run(opt.Type.String(), func(t *testing.T) {
			want, err := Price(opt, atmMarket)
			require.NoError(t, err)
			got, err := merton.Price(opt, atmMarket)
			require.NoError(t, err)

			assert.InDelta(t, want.PV, got.PV, 1e-12)
			assert.InDelta(t, want.Delta, got.Delta, 1e-4)
			assert.InDelta(t, want.Gamma, got.Gamma, 1e-4)
			assert.InDelta(t, want.Vega, got.Vega, 1e-2)
			assert.InDelta(t, want.Theta, got.Theta, 5e-2)
			assert.InDelta(t, want.Rho, got.Rho, 1e-3)
		})
	}
}

func TestMertonJump_PutCallParity(t *testing.T) {
	merton, err := NewMertonJump(0.8, -0.15, 0.25)
	require.NoError(t, err)

	call, err := merton.Price(contracts.Call(100, 1, "X"), atmMarket)
	require.NoError(t, err)
	put, err := merton.Price(contracts.Put(100, 1, "X"), atmMarket)
	require.NoError(t, err)

	assert.InDelta(t, 100-100*math.Exp(-0.05), call.PV-put.PV, 1e-9)
}

func TestMertonJump_JumpsAddValue(t *testing.T) {
	// mean = -vol²/2 이면 k = 0: 드리프트 보정 없이 분산만 증가
	merton, err := NewMertonJump(1, -0.5*0.2*0.2, 0.2)
	require.NoError(t, err)

	bs, err := Price(contracts.Call(100, 1, "X"), atmMarket)
	require.NoError(t, err)
	jd, err := merton.Price(contracts.Call(100, 1, "X"), atmMarket)
	require.NoError(t, err)

	assert.Greater(t, jd.PV, bs.PV)
	assert.Greater(t, jd.Vega, 0.0)
}

func TestMertonJump_Validation(t *testing.T) {
	tests := []struct {
		name  string
		model MertonJump
		field string
	}{
		{"negative intensity", MertonJump{Lambda: -1}, "jump_intensity"},
		{"nan mean", MertonJump{Mean: math.NaN()}, "jump_mean"},
		{"negative vol", MertonJump{Vol: -0.1}, "jump_vol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMertonJump(tt.model.Lambda, tt.model.Mean, tt.model.Vol)
			var ie *contracts.InvalidInstrumentError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestParseModel(t *testing.T) {
	tests := map[string]Model{
		"":              ModelBlackScholes,
		"BSM":           ModelBlackScholes,
		"black-scholes": ModelBlackScholes,
		"Binomial":      ModelBinomial,
		"merton":        ModelMertonJump,
		"merton_jump":   ModelMertonJump,
	}
	for in, want := range tests {
		got, err := ParseModel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseModel("heston")
	assert.Error(t, err)
}

func TestNewPricer(t *testing.T) {
	p, err := NewPricer(ModelConfig{})
	require.NoError(t, err)
	assert.Equal(t, "black_scholes", Describe(p))

	p, err = NewPricer(ModelConfig{Model: ModelBinomial, BinomialSteps: 250})
	require.NoError(t, err)
	assert.Equal(t, "binomial(steps=250)", Describe(p))

	p, err = NewPricer(ModelConfig{Model: ModelMertonJump, JumpIntensity: 0.5, JumpMean: -0.1, JumpVol: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "merton_jump(lambda=0.5,mean=-0.1,vol=0.2)", Describe(p))

	_, err = NewPricer(ModelConfig{Model: ModelBinomial})
	assert.ErrorIs(t, err, contracts.ErrInvalidInstrument)

	_, err = NewPricer(ModelConfig{Model: "heston"})
	assert.Error(t, err)
}
