package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is
var (
	ErrInvalidInstrument    = errors.New("invalid instrument")
	ErrInvalidMarketData    = errors.New("invalid market data")
	ErrMissingMarketData    = errors.New("missing market data")
	ErrNumericalInstability = errors.New("numerical instability")
)

// Error kinds reported to the boundary layer
const (
	KindInvalidInstrument    = "invalid_instrument"
	KindInvalidMarketData    = "invalid_market_data"
	KindMissingMarketData    = "missing_market_data"
	KindNumericalInstability = "numerical_instability"
	KindInternal             = "internal"
)

// InvalidInstrumentError is returned for a structurally invalid option
type InvalidInstrumentError struct {
	AssetID string
	Field   string
	Value   float64
	Reason  string
}

func (e *InvalidInstrumentError) Error() string {
	return fmt.Sprintf("invalid instrument on %q: %s %s (got %g)", e.AssetID, e.Field, e.Reason, e.Value)
}

// Is matches ErrInvalidInstrument
func (e *InvalidInstrumentError) Is(target error) bool {
	return target == ErrInvalidInstrument
}

// InvalidMarketDataError is returned for malformed market data
type InvalidMarketDataError struct {
	AssetID string
	Field   string
	Value   float64
	Reason  string
}

func (e *InvalidMarketDataError) Error() string {
	return fmt.Sprintf("invalid market data for %q: %s %s (got %g)", e.AssetID, e.Field, e.Reason, e.Value)
}

// Is matches ErrInvalidMarketData
func (e *InvalidMarketDataError) Is(target error) bool {
	return target == ErrInvalidMarketData
}

// MissingMarketDataError is returned when a position's underlying has no market data
type MissingMarketDataError struct {
	AssetID string
}

func (e *MissingMarketDataError) Error() string {
	return fmt.Sprintf("missing market data for asset %q", e.AssetID)
}

// Is matches ErrMissingMarketData
func (e *MissingMarketDataError) Is(target error) bool {
	return target == ErrMissingMarketData
}

// NumericalInstabilityError is returned when a computed quantity is NaN or infinite
type NumericalInstabilityError struct {
	AssetID  string
	Quantity string // pv, delta, gamma, ...
	Value    float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("numerical instability on %q: %s evaluated to %g", e.AssetID, e.Quantity, e.Value)
}

// Is matches ErrNumericalInstability
func (e *NumericalInstabilityError) Is(target error) bool {
	return target == ErrNumericalInstability
}

// ErrorKind maps an engine error to a stable kind string
// ⭐ 경계 레이어 전용: 상태 코드 매핑은 경계에서 (엔진은 코드 정의 안 함)
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInstrument):
		return KindInvalidInstrument
	case errors.Is(err, ErrInvalidMarketData):
		return KindInvalidMarketData
	case errors.Is(err, ErrMissingMarketData):
		return KindMissingMarketData
	case errors.Is(err, ErrNumericalInstability):
		return KindNumericalInstability
	default:
		return KindInternal
	}
}

// IsEngineError reports whether err belongs to the engine taxonomy
func IsEngineError(err error) bool {
	kind := ErrorKind(err)
	return kind != "" && kind != KindInternal
}
