package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/pkg/metrics"
)

// Error kinds produced by the boundary itself
// 엔진 에러 kind 는 contracts.ErrorKind 에서
const (
	KindInvalidRequest = "invalid_request"
	KindImpliedVol     = "implied_vol"
	KindUnavailable    = "unavailable"
	KindRateLimited    = "rate_limited"
)

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Fields  []request.FieldError `json:"fields,omitempty"`
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

// RespondError writes the standard error body (used by middleware)
func RespondError(w http.ResponseWriter, status int, kind, message string) {
	respondError(w, status, kind, message)
}

// respondFailure maps an error to its status code
// ⭐ SSOT: 에러 → HTTP 상태 매핑은 여기서만
//   - 구조 검증 실패 → 400 invalid_request
//   - 엔진 에러 → 422 {kind, message}
//   - implied vol 수렴/범위 실패 → 422 implied_vol
//   - 그 외 → 500 internal
func respondFailure(w http.ResponseWriter, err error) int {
	var verr *request.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   KindInvalidRequest,
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
		return http.StatusBadRequest

	case contracts.IsEngineError(err):
		respondError(w, http.StatusUnprocessableEntity, contracts.ErrorKind(err), err.Error())
		return http.StatusUnprocessableEntity

	case errors.Is(err, pricing.ErrPriceOutOfBounds),
		errors.Is(err, pricing.ErrVegaTooSmall),
		errors.Is(err, pricing.ErrNotConverged):
		respondError(w, http.StatusUnprocessableEntity, KindImpliedVol, err.Error())
		return http.StatusUnprocessableEntity

	default:
		respondError(w, http.StatusInternalServerError, contracts.KindInternal, "Internal server error")
		return http.StatusInternalServerError
	}
}

// outcome labels a calculation for metrics
func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	var verr *request.ValidationError
	if errors.As(err, &verr) {
		return KindInvalidRequest
	}
	return contracts.ErrorKind(err)
}
