package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/optrisk/internal/contracts"
)

// =============================================================================
// Delta-normal VaR
// =============================================================================

// DefaultConfidence 95% 단측
const DefaultConfidence = 0.95

// ErrInvalidConfig is returned for an unusable Estimator
var ErrInvalidConfig = errors.New("invalid configuration")

// Estimator parametric delta-normal VaR
// 자산 간 독립 가정: σ_p = √(Σ σ_a²)
type Estimator struct {
	Confidence  float64
	HorizonDays int
}

// DefaultEstimator 1일, 95%
func DefaultEstimator() Estimator {
	return Estimator{Confidence: DefaultConfidence, HorizonDays: 1}
}

// Validate checks the estimator settings
func (e Estimator) Validate() error {
	if e.Confidence <= 0.5 || e.Confidence >= 1 {
		return fmt.Errorf("%w: confidence must be in (0.5, 1), got %g", ErrInvalidConfig, e.Confidence)
	}
	if e.HorizonDays <= 0 {
		return fmt.Errorf("%w: horizon must be > 0 days, got %d", ErrInvalidConfig, e.HorizonDays)
	}
	return nil
}

// Estimate computes VaR from per-asset exposures in the given order
func (e Estimator) Estimate(exposures []AssetExposure) (VaRResult, error) {
	z := NormInv(e.Confidence)
	result := VaRResult{
		Confidence:  e.Confidence,
		ZScore:      z,
		HorizonDays: e.HorizonDays,
		Convention:  VaRConvention,
	}

	var sumSq float64
	for _, exp := range exposures {
		sumSq += exp.StdDev * exp.StdDev
	}

	std := math.Sqrt(sumSq)
	if e.HorizonDays > 1 {
		std *= math.Sqrt(float64(e.HorizonDays))
	}

	varValue := z * std
	if !isFinite(varValue) {
		return VaRResult{}, &contracts.NumericalInstabilityError{Quantity: "value_at_risk_95", Value: varValue}
	}
	// 제곱합 형태라 음수는 나올 수 없지만 부호 규약 보장
	if varValue < 0 {
		varValue = 0
	}

	result.StdDev = std
	result.VaR = varValue
	return result, nil
}

// =============================================================================
// 통계 유틸리티
// =============================================================================

// NormInv 정규분포 역함수 (Quantile Function)
// Acklam rational approximation
func NormInv(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}

	// 일반적인 신뢰수준은 관례적인 z 값 사용
	switch p {
	case 0.99:
		return 2.326
	case 0.95:
		return 1.645
	case 0.90:
		return 1.282
	case 0.975:
		return 1.96
	}

	a := [...]float64{
		-3.969683028665376e+01,
		2.209460984245205e+02,
		-2.759285104469687e+02,
		1.383577518672690e+02,
		-3.066479806614716e+01,
		2.506628277459239e+00,
	}
	b := [...]float64{
		-5.447609879822406e+01,
		1.615858368580409e+02,
		-1.556989798598866e+02,
		6.680131188771972e+01,
		-1.328068155288572e+01,
	}
	c := [...]float64{
		-7.784894002430293e-03,
		-3.223964580411365e-01,
		-2.400758277161838e+00,
		-2.549732539343734e+00,
		4.374664141464968e+00,
		2.938163982698783e+00,
	}
	d := [...]float64{
		7.784695709041462e-03,
		3.224671290700398e-01,
		2.445134137142996e+00,
		3.754408661907416e+00,
	}

	const pLow = 0.02425

	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= 1-pLow:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
