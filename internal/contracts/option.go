package contracts

import (
	"fmt"
	"strings"
)

// OptionType is the exercise right of a European option
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// ParseOptionType parses "call"/"put" case-insensitively
// ⭐ 경계 레이어에서만 호출 (엔진은 OptionType 값만 받음)
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return OptionCall, nil
	case "put":
		return OptionPut, nil
	default:
		return "", fmt.Errorf("unknown option type %q (expected call or put)", s)
	}
}

// IsCall reports whether the option is a call
func (t OptionType) IsCall() bool {
	return t == OptionCall
}

// Valid reports whether t is one of the known option types
func (t OptionType) Valid() bool {
	return t == OptionCall || t == OptionPut
}

// String returns the lower-case wire name
func (t OptionType) String() string {
	return string(t)
}

// EuropeanOption is an immutable option instrument
// ⭐ 불변 값 객체: 동일 필드면 동일 상품 (구조적 동일성)
type EuropeanOption struct {
	Type         OptionType `json:"type" yaml:"type"`
	Strike       float64    `json:"strike" yaml:"strike"`
	TimeToExpiry float64    `json:"expiry" yaml:"expiry"` // 연 단위, <= 0 이면 만기 도래
	AssetID      string     `json:"asset_id" yaml:"asset_id"`
}

// NewEuropeanOption builds an option value
// Field validation happens when the option is priced, so that the error kind
// surfaces from the pricer like every other pricing failure.
func NewEuropeanOption(optionType OptionType, strike, timeToExpiry float64, assetID string) EuropeanOption {
	return EuropeanOption{
		Type:         optionType,
		Strike:       strike,
		TimeToExpiry: timeToExpiry,
		AssetID:      assetID,
	}
}

// Call is shorthand for a call option
func Call(strike, timeToExpiry float64, assetID string) EuropeanOption {
	return NewEuropeanOption(OptionCall, strike, timeToExpiry, assetID)
}

// Put is shorthand for a put option
func Put(strike, timeToExpiry float64, assetID string) EuropeanOption {
	return NewEuropeanOption(OptionPut, strike, timeToExpiry, assetID)
}

// Expired reports whether the option has reached expiry
func (o EuropeanOption) Expired() bool {
	return o.TimeToExpiry <= 0
}

// String renders the option for logs and CLI output
func (o EuropeanOption) String() string {
	return fmt.Sprintf("%s %s K=%g T=%g", o.AssetID, o.Type, o.Strike, o.TimeToExpiry)
}
