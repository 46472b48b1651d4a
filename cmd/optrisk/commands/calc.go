package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/internal/risk"
)

// calcCmd represents the calc command
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "포트폴리오 리스크 계산 (로컬)",
	Long: `포트폴리오의 PV, Greeks, 1일 95% VaR 를 로컬에서 계산합니다.

입력:
- --file: portfolio + market_data YAML 파일
- 또는 단일 포지션 플래그 (--type, --strike, --expiry, --qty, --spot, --rate, --vol)
- --model 로 가격 모델 선택 (YAML 의 model 블록보다 우선)

YAML 형식:
  portfolio:
    - {type: call, strike: 100, expiry: 1.0, asset_id: X, quantity: 10}
  market_data:
    X: {spot: 100, rate: 0.05, vol: 0.2}
  model: {name: binomial, steps: 800}   # 선택

Example:
  go run ./cmd/optrisk calc --file portfolio.yaml
  go run ./cmd/optrisk calc --file portfolio.yaml --detail
  go run ./cmd/optrisk calc --type put --strike 95 --expiry 0.5 --qty -3 --spot 100 --rate 0.03 --vol 0.25
  go run ./cmd/optrisk calc --file portfolio.yaml --model merton_jump --jump-lambda 0.5 --jump-mean -0.1 --jump-vol 0.2`,
	RunE: runCalc,
}

// outputOptions controls result rendering
type outputOptions struct {
	JSON      bool
	Detail    bool
	Precision int32
}

var (
	calcFile   string
	calcOutput outputOptions
	calcPos    positionFlags
)

// positionFlags describes one option + its market data on the command line
type positionFlags struct {
	Type     string
	Strike   float64
	Expiry   float64
	AssetID  string
	Quantity int64
	Spot     float64
	Rate     float64
	Vol      float64
	Model    modelFlags
}

// modelFlags selects the pricer; an empty Name keeps the default
type modelFlags struct {
	Name       string
	Steps      int
	JumpLambda float64
	JumpMean   float64
	JumpVol    float64
}

func (m modelFlags) record() *request.ModelRecord {
	if m.Name == "" {
		return nil
	}
	return &request.ModelRecord{
		Name:          m.Name,
		Steps:         m.Steps,
		JumpIntensity: m.JumpLambda,
		JumpMean:      m.JumpMean,
		JumpVol:       m.JumpVol,
	}
}

func (p positionFlags) riskRequest() *request.RiskRequest {
	return &request.RiskRequest{
		Portfolio: []request.PositionRecord{{
			Type:     p.Type,
			Strike:   request.Float(p.Strike),
			Expiry:   request.Float(p.Expiry),
			AssetID:  p.AssetID,
			Quantity: &p.Quantity,
		}},
		MarketData: map[string]request.MarketRecord{
			p.AssetID: {Spot: request.Float(p.Spot), Rate: request.Float(p.Rate), Vol: request.Float(p.Vol)},
		},
		Model: p.Model.record(),
	}
}

func init() {
	rootCmd.AddCommand(calcCmd)

	// Flags
	calcCmd.Flags().StringVarP(&calcFile, "file", "f", "", "portfolio YAML 파일")
	addPositionFlags(calcCmd, &calcPos)
	addModelFlags(calcCmd, &calcPos)
	calcCmd.Flags().Int64Var(&calcPos.Quantity, "qty", 1, "계약 수 (음수 = 숏)")
	addOutputFlags(calcCmd, &calcOutput)
}

func addPositionFlags(cmd *cobra.Command, p *positionFlags) {
	cmd.Flags().StringVar(&p.Type, "type", "call", "옵션 타입 (call|put)")
	cmd.Flags().Float64Var(&p.Strike, "strike", 100, "행사가")
	cmd.Flags().Float64Var(&p.Expiry, "expiry", 1, "만기까지 기간 (년)")
	cmd.Flags().StringVar(&p.AssetID, "asset", "default", "기초자산 ID")
	cmd.Flags().Float64Var(&p.Spot, "spot", 100, "기초자산 현재가")
	cmd.Flags().Float64Var(&p.Rate, "rate", 0.05, "무위험 이자율 (연속복리)")
	cmd.Flags().Float64Var(&p.Vol, "vol", 0.2, "연율화 변동성")
}

// implied-vol 은 Black-Scholes 전용이라 제외
func addModelFlags(cmd *cobra.Command, p *positionFlags) {
	cmd.Flags().StringVar(&p.Model.Name, "model", "", "가격 모델 (black_scholes|binomial|merton_jump)")
	cmd.Flags().IntVar(&p.Model.Steps, "steps", 0, "binomial 스텝 수 (기본 500, 최대 10000)")
	cmd.Flags().Float64Var(&p.Model.JumpLambda, "jump-lambda", 0, "merton_jump 연간 점프 강도")
	cmd.Flags().Float64Var(&p.Model.JumpMean, "jump-mean", 0, "merton_jump 로그 점프 평균")
	cmd.Flags().Float64Var(&p.Model.JumpVol, "jump-vol", 0, "merton_jump 로그 점프 표준편차")
}

func addOutputFlags(cmd *cobra.Command, o *outputOptions) {
	cmd.Flags().BoolVar(&o.JSON, "json", false, "JSON 출력")
	cmd.Flags().BoolVar(&o.Detail, "detail", false, "포지션/자산별 상세 리포트")
	cmd.Flags().Int32Var(&o.Precision, "precision", 6, "표시 소수 자릿수")
}

// loadRiskRequest reads --file or falls back to the position flags
func loadRiskRequest(file string, pos positionFlags) (*request.RiskRequest, error) {
	if file != "" {
		req, err := request.LoadYAMLFile(file)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
		if m := pos.Model.record(); m != nil {
			req.Model = m
			if err := request.Validate(req); err != nil {
				return nil, err
			}
		}
		return req, nil
	}

	req := pos.riskRequest()
	if err := request.Validate(req); err != nil {
		return nil, err
	}
	return req, nil
}

func runCalc(cmd *cobra.Command, args []string) error {
	req, err := loadRiskRequest(calcFile, calcPos)
	if err != nil {
		return err
	}
	return calculate(cmd.OutOrStdout(), req, calcOutput)
}

// calculate runs the engine locally and renders the result
func calculate(w io.Writer, req *request.RiskRequest, out outputOptions) error {
	portfolio, store, err := req.Inputs()
	if err != nil {
		return err
	}

	pricer, err := req.Model.Pricer()
	if err != nil {
		return describeEngineError(err)
	}
	engine, err := risk.NewEngine()
	if err != nil {
		return err
	}
	engine = engine.WithModel(pricer)

	if out.Detail {
		report, err := engine.CalculateReport(portfolio, store)
		if err != nil {
			return describeEngineError(err)
		}
		if out.JSON {
			return writeJSON(w, report)
		}
		printHeader(w, fmt.Sprintf("Risk Report  (%d positions, %d assets, %s)", portfolio.Len(), len(report.Exposures), report.Model))
		printReport(w, report, out.Precision)
		printSeparator(w)
		return nil
	}

	result, err := engine.CalculatePortfolioRisk(portfolio, store)
	if err != nil {
		return describeEngineError(err)
	}
	if out.JSON {
		return writeJSON(w, result)
	}

	printHeader(w, fmt.Sprintf("Portfolio Risk  (%d positions, %s)", portfolio.Len(), engine.Model()))
	printRiskResult(w, result, out.Precision)
	printSeparator(w)
	return nil
}

// describeEngineError prefixes the error kind (CLI 종료 메시지용)
func describeEngineError(err error) error {
	return fmt.Errorf("%s: %w", contracts.ErrorKind(err), err)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
