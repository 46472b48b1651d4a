package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/optrisk/internal/pricing"
	"github.com/wonny/optrisk/internal/request"
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "단일 옵션 가격/Greeks 계산",
	Long: `단일 유럽형 옵션의 1계약당 PV 와 Greeks (Rho 포함) 를 계산합니다.

Theta, Rho 는 연 단위입니다.

Example:
  go run ./cmd/optrisk price --type call --strike 100 --expiry 1 --spot 100 --rate 0.05 --vol 0.2
  go run ./cmd/optrisk price --type put --strike 100 --expiry 0 --spot 90 --json
  go run ./cmd/optrisk price --model binomial --steps 2000`,
	RunE: runPrice,
}

var (
	pricePos    positionFlags
	priceOutput outputOptions
)

func init() {
	rootCmd.AddCommand(priceCmd)

	addPositionFlags(priceCmd, &pricePos)
	addModelFlags(priceCmd, &pricePos)
	priceCmd.Flags().BoolVar(&priceOutput.JSON, "json", false, "JSON 출력")
	priceCmd.Flags().Int32Var(&priceOutput.Precision, "precision", 6, "표시 소수 자릿수")
}

func runPrice(cmd *cobra.Command, args []string) error {
	return priceOption(cmd.OutOrStdout(), pricePos, priceOutput)
}

func (p positionFlags) optionRequest() *request.OptionRequest {
	return &request.OptionRequest{
		Type:    p.Type,
		Strike:  request.Float(p.Strike),
		Expiry:  request.Float(p.Expiry),
		AssetID: p.AssetID,
		Market:  request.MarketRecord{Spot: request.Float(p.Spot), Rate: request.Float(p.Rate), Vol: request.Float(p.Vol)},
		Model:   p.Model.record(),
	}
}

// priceOption prices one option from flags
func priceOption(w io.Writer, pos positionFlags, out outputOptions) error {
	req := pos.optionRequest()
	if err := request.Validate(req); err != nil {
		return err
	}

	opt, err := req.Option()
	if err != nil {
		return describeEngineError(err)
	}

	pricer, err := req.Model.Pricer()
	if err != nil {
		return describeEngineError(err)
	}
	if pricer == nil {
		pricer = pricing.NewBlackScholes()
	}

	greeks, err := pricer.Price(opt, req.MarketData())
	if err != nil {
		return describeEngineError(err)
	}

	if out.JSON {
		return writeJSON(w, greeks)
	}

	printHeader(w, fmt.Sprintf("%s  (S=%g r=%g σ=%g, %s)", opt, pos.Spot, pos.Rate, pos.Vol, pricing.Describe(pricer)))
	printGreeks(w, greeks, out.Precision)
	printSeparator(w)
	return nil
}
