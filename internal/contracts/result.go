package contracts

// RiskResult is the flat aggregate returned for one calculation
// ⭐ SSOT: 경계 레이어로 나가는 유일한 결과 레코드 (6개 필드)
type RiskResult struct {
	TotalPV       float64 `json:"total_pv"`
	TotalDelta    float64 `json:"total_delta"`
	TotalGamma    float64 `json:"total_gamma"`
	TotalVega     float64 `json:"total_vega"`
	TotalTheta    float64 `json:"total_theta"`
	ValueAtRisk95 float64 `json:"value_at_risk_95"` // 손실 크기, 항상 >= 0
}

// IsZero reports whether every field is zero
func (r RiskResult) IsZero() bool {
	return r == RiskResult{}
}
