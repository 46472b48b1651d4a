package request

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
)

// ErrInvalidRequest is matched by every decoding and validation failure
var ErrInvalidRequest = errors.New("invalid request")

// FieldError describes one failed validation rule
type FieldError struct {
	Field string `json:"field"` // json 경로 (예: portfolio[0].strike)
	Tag   string `json:"tag"`
}

// ValidationError is returned for structurally invalid requests
type ValidationError struct {
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.cause != nil {
			return "invalid request: " + e.cause.Error()
		}
		return "invalid request"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Tag))
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

// Is matches ErrInvalidRequest
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// 에러 필드명은 json 태그 기준
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("optiontype", func(fl validator.FieldLevel) bool {
			_, err := contracts.ParseOptionType(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("pricingmodel", func(fl validator.FieldLevel) bool {
			_, err := pricing.ParseModel(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// recordValidator is implemented by requests holding records the struct tags cannot reach
type recordValidator interface {
	validateRecords() []FieldError
}

// Validate runs the struct rules on v
func Validate(v any) error {
	out := &ValidationError{}

	err := validatorInstance().Struct(v)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return &ValidationError{cause: err}
		}
		out.Fields = append(out.Fields, fieldErrors(fieldErrs, "")...)
	}

	if rv, ok := v.(recordValidator); ok {
		out.Fields = appendUnique(out.Fields, rv.validateRecords()...)
	}

	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

// validateRecords checks every market_data value in asset id order
func (r *RiskRequest) validateRecords() []FieldError {
	ids := make([]string, 0, len(r.MarketData))
	for id := range r.MarketData {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []FieldError
	for _, id := range ids {
		rec := r.MarketData[id]
		err := validatorInstance().Struct(&rec)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			out = append(out, FieldError{Field: "market_data[" + id + "]", Tag: "invalid"})
			continue
		}
		out = append(out, fieldErrors(fieldErrs, "market_data["+id+"].")...)
	}
	return out
}

// 같은 필드/규칙은 한 번만 보고
func appendUnique(dst []FieldError, src ...FieldError) []FieldError {
	for _, fe := range src {
		dup := false
		for _, have := range dst {
			if have == fe {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, fe)
		}
	}
	return dst
}

func fieldErrors(errs validator.ValidationErrors, prefix string) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldError{Field: prefix + fieldPath(fe.Namespace()), Tag: fe.Tag()})
	}
	return out
}

// fieldPath drops the root struct name: RiskRequest.portfolio[0].type → portfolio[0].type
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
