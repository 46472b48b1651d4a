package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionType(t *testing.T) {
	tests := []struct {
		input   string
		want    OptionType
		wantErr bool
	}{
		{"call", OptionCall, false},
		{"CALL", OptionCall, false},
		{"Call", OptionCall, false},
		{" put ", OptionPut, false},
		{"PUT", OptionPut, false},
		{"straddle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOptionType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEuropeanOption_StructuralIdentity(t *testing.T) {
	a := Call(100, 1, "X")
	b := NewEuropeanOption(OptionCall, 100, 1, "X")

	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.NotEqual(t, a, Put(100, 1, "X"))
}

func TestEuropeanOption_Expired(t *testing.T) {
	assert.True(t, Call(100, 0, "X").Expired())
	assert.True(t, Call(100, -0.5, "X").Expired())
	assert.False(t, Call(100, 0.01, "X").Expired())
}

func TestOptionType_Valid(t *testing.T) {
	assert.True(t, OptionCall.Valid())
	assert.True(t, OptionPut.Valid())
	assert.False(t, OptionType("CALL").Valid())
	assert.True(t, OptionCall.IsCall())
	assert.False(t, OptionPut.IsCall())
}
