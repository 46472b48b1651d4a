package request

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/marketdata"
)

// CacheKey returns a SHA-256 over a canonical encoding of the inputs.
// Positions keep portfolio order; market data is sorted by asset id.
// 같은 입력 → 같은 키 → 엔진이 멱등이므로 캐시 결과는 재계산과 비트 단위 동일
func CacheKey(portfolio contracts.Portfolio, store *marketdata.Store) string {
	h := sha256.New()
	buf := make([]byte, 0, 64)

	write := func(parts ...string) {
		for _, p := range parts {
			buf = append(buf[:0], p...)
			buf = append(buf, 0x1f)
			h.Write(buf)
		}
		h.Write([]byte{0x1e})
	}

	for _, pos := range portfolio.Positions() {
		opt := pos.Instrument
		write("p", opt.Type.String(), ff(opt.Strike), ff(opt.TimeToExpiry), opt.AssetID, strconv.FormatInt(pos.Quantity, 10))
	}
	for _, md := range store.Records() {
		write("m", md.AssetID, ff(md.SpotPrice), ff(md.RiskFreeRate), ff(md.Volatility))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// 최단 왕복 표현 (비트 단위 구분)
func ff(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
