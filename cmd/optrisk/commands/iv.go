package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/optrisk/internal/pricing"
	"github.com/wonny/optrisk/internal/request"
)

// ivCmd represents the iv command
var ivCmd = &cobra.Command{
	Use:   "iv",
	Short: "내재 변동성 계산",
	Long: `관측 옵션 가격으로부터 내재 변동성을 Newton-Raphson 으로 계산합니다.

초기값 0.3, 허용오차 1e-6, 최대 100회, σ 범위 [0.01, 10].

Example:
  go run ./cmd/optrisk iv --type call --strike 100 --expiry 1 --spot 100 --rate 0.05 --price 10.4506`,
	RunE: runIV,
}

var (
	ivPos       positionFlags
	ivPrice     float64
	ivPrecision int32
)

func init() {
	rootCmd.AddCommand(ivCmd)

	addPositionFlags(ivCmd, &ivPos)
	ivCmd.Flags().Float64Var(&ivPrice, "price", 0, "관측 옵션 가격")
	ivCmd.Flags().Int32Var(&ivPrecision, "precision", 6, "표시 소수 자릿수")
	_ = ivCmd.MarkFlagRequired("price")
}

func runIV(cmd *cobra.Command, args []string) error {
	return impliedVol(cmd.OutOrStdout(), ivPos, ivPrice, ivPrecision)
}

// impliedVol solves for σ from flags (--vol is ignored)
func impliedVol(w io.Writer, pos positionFlags, price float64, places int32) error {
	req := &request.ImpliedVolRequest{
		Type:    pos.Type,
		Strike:  request.Float(pos.Strike),
		Expiry:  request.Float(pos.Expiry),
		AssetID: pos.AssetID,
		Spot:    request.Float(pos.Spot),
		Rate:    request.Float(pos.Rate),
		Price:   request.Float(price),
	}
	if err := request.Validate(req); err != nil {
		return err
	}

	opt, err := req.Option()
	if err != nil {
		return describeEngineError(err)
	}

	sigma, err := pricing.ImpliedVolatility(opt, req.MarketData(), price, pricing.DefaultIVOptions())
	if err != nil {
		return fmt.Errorf("implied vol: %w", err)
	}

	printHeader(w, fmt.Sprintf("%s  (S=%g r=%g price=%g)", opt, pos.Spot, pos.Rate, price))
	printRow(w, "Implied Vol", fixed(sigma, places))
	printSeparator(w)
	return nil
}
