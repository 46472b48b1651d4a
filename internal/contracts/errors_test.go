package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"instrument", &InvalidInstrumentError{AssetID: "X", Field: "strike", Reason: "must be positive"}, KindInvalidInstrument},
		{"market", &InvalidMarketDataError{AssetID: "X", Field: "spot", Reason: "must be positive"}, KindInvalidMarketData},
		{"missing", &MissingMarketDataError{AssetID: "AAPL"}, KindMissingMarketData},
		{"numerical", &NumericalInstabilityError{AssetID: "X", Quantity: "gamma"}, KindNumericalInstability},
		{"wrapped", fmt.Errorf("calc: %w", &MissingMarketDataError{AssetID: "AAPL"}), KindMissingMarketData},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestMissingMarketDataError_As(t *testing.T) {
	var err error = &MissingMarketDataError{AssetID: "AAPL"}

	var missing *MissingMarketDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "AAPL", missing.AssetID)
	assert.True(t, errors.Is(err, ErrMissingMarketData))
	assert.False(t, errors.Is(err, ErrInvalidMarketData))
	assert.Contains(t, err.Error(), "AAPL")
}

func TestIsEngineError(t *testing.T) {
	assert.True(t, IsEngineError(&InvalidInstrumentError{}))
	assert.False(t, IsEngineError(errors.New("io")))
	assert.False(t, IsEngineError(nil))
}
