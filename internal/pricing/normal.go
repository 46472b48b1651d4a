package pricing

import "math"

// NormCDF is the standard normal cumulative distribution function
// erfc 기반: 음의 꼬리에서 1+erf 보다 정밀도 손실이 적음
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// NormPDF is the standard normal probability density function
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
