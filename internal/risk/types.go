package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
)

// VaRConvention VaR 부호 규약
// ⭐ SSOT: Loss를 양수로 표현 (VaR=13.2 → 95% 신뢰수준에서 1일 최대 13.2 손실 가능)
// 전체 시스템에서 이 규약을 일관되게 사용
const VaRConvention = "loss_positive"

// =============================================================================
// Aggregation Types
// =============================================================================

// PositionContribution 포지션 하나의 기여분
type PositionContribution struct {
	Index      int                      `json:"index"` // 포트폴리오 내 순서
	Instrument contracts.EuropeanOption `json:"instrument"`
	Quantity   int64                    `json:"quantity"`
	Unit       pricing.Greeks           `json:"unit"`   // 1계약당
	Scaled     pricing.Greeks           `json:"scaled"` // × quantity
}

// AssetExposure 기초자산별 델타 익스포저
// ⭐ SSOT: VaR 입력. 자산 간 상관은 0으로 가정 (독립)
type AssetExposure struct {
	AssetID         string  `json:"asset_id"`
	NetDelta        float64 `json:"net_delta"`        // Σ delta × quantity
	Spot            float64 `json:"spot"`             //
	Volatility      float64 `json:"volatility"`       // 연환산
	DollarDelta     float64 `json:"dollar_delta"`     // NetDelta × Spot
	DailyVolatility float64 `json:"daily_volatility"` // Volatility / √252
	StdDev          float64 `json:"std_dev"`          // |DollarDelta| × DailyVolatility (1일 P&L 표준편차)
}

// Aggregation PortfolioAggregator 결과 (VaR 제외)
type Aggregation struct {
	Totals    pricing.Greeks
	Positions []PositionContribution
	Exposures []AssetExposure // 최초 등장 순서
}

// =============================================================================
// VaR Types
// =============================================================================

// VaRResult delta-normal VaR 계산 결과
type VaRResult struct {
	Confidence  float64 `json:"confidence"`   // 신뢰수준 (예: 0.95)
	ZScore      float64 `json:"z_score"`      // 단측 z (0.95 → 1.645)
	HorizonDays int     `json:"horizon_days"` // 보유 기간 (일)
	StdDev      float64 `json:"std_dev"`      // 포트폴리오 P&L 표준편차
	VaR         float64 `json:"var"`          // 손실, 양수
	Convention  string  `json:"convention"`   // VaRConvention
}

// =============================================================================
// Report Types
// =============================================================================

// Report 상세 리스크 리포트
// Result 는 CalculatePortfolioRisk 와 비트 단위로 동일
type Report struct {
	ID           uuid.UUID              `json:"id"`
	Model        string                 `json:"model"` // 가격 모델
	Result       contracts.RiskResult   `json:"result"`
	TotalRho     float64                `json:"total_rho"`
	VaR          VaRResult              `json:"var"`
	Positions    []PositionContribution `json:"positions"`
	Exposures    []AssetExposure        `json:"exposures"`
	CalculatedAt time.Time              `json:"calculated_at"`
}
