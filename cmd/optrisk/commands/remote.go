package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/optrisk/internal/client"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/pkg/logger"
)

// remoteCmd represents the remote command group
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "원격 API 서버 호출",
	Long: `실행 중인 optrisk API 서버를 호출합니다.

대상 URL: --url 또는 RISK_API_URL (기본 http://localhost:8080)

Example:
  go run ./cmd/optrisk remote health
  go run ./cmd/optrisk remote calc --file portfolio.yaml
  go run ./cmd/optrisk remote calc --file portfolio.yaml --snapshot`,
}

var remoteHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "서버 상태 확인",
	RunE:  runRemoteHealth,
}

var remoteCalcCmd = &cobra.Command{
	Use:   "calc",
	Short: "원격 리스크 계산",
	RunE:  runRemoteCalc,
}

var (
	remoteURL      string
	remoteTimeout  time.Duration
	remoteFile     string
	remoteSnapshot bool
	remotePos      positionFlags
	remoteOutput   outputOptions
)

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteHealthCmd, remoteCalcCmd)

	remoteCmd.PersistentFlags().StringVar(&remoteURL, "url", "", "API 서버 URL (기본: RISK_API_URL)")
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", 30*time.Second, "요청 타임아웃")

	remoteCalcCmd.Flags().StringVarP(&remoteFile, "file", "f", "", "portfolio YAML 파일")
	remoteCalcCmd.Flags().BoolVar(&remoteSnapshot, "snapshot", false, "서버 스냅샷 시장 데이터 사용 (market_data 무시)")
	addPositionFlags(remoteCalcCmd, &remotePos)
	addModelFlags(remoteCalcCmd, &remotePos)
	remoteCalcCmd.Flags().Int64Var(&remotePos.Quantity, "qty", 1, "계약 수 (음수 = 숏)")
	addOutputFlags(remoteCalcCmd, &remoteOutput)
}

func newRemoteClient() (*client.Client, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg)

	url := remoteURL
	if url == "" {
		url = cfg.APIURL
	}
	return client.New(url, log), log, nil
}

func runRemoteHealth(cmd *cobra.Command, args []string) error {
	c, _, err := newRemoteClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	w := cmd.OutOrStdout()
	health, err := c.Health(ctx)
	if health != nil {
		printHeader(w, "Server Health")
		printRow(w, "Status", health.Status)
		for name, comp := range health.Components {
			value := comp.Status
			if comp.Error != "" {
				value += " (" + comp.Error + ")"
			}
			printRow(w, name, value)
		}
		if health.SnapshotVersion > 0 {
			printRow(w, "Snapshot", fmt.Sprintf("v%d, %d assets", health.SnapshotVersion, health.SnapshotAssets))
		}
		printSeparator(w)
	}
	return err
}

func runRemoteCalc(cmd *cobra.Command, args []string) error {
	c, _, err := newRemoteClient()
	if err != nil {
		return err
	}

	req, err := loadRiskRequest(remoteFile, remotePos)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	w := cmd.OutOrStdout()

	switch {
	case remoteSnapshot:
		result, version, err := c.CalculateSnapshot(ctx, &request.PortfolioRequest{Portfolio: req.Portfolio, Model: req.Model})
		if err != nil {
			return err
		}
		if remoteOutput.JSON {
			return writeJSON(w, result)
		}
		printHeader(w, fmt.Sprintf("Portfolio Risk  (%d positions, snapshot v%d)", len(req.Portfolio), version))
		printRiskResult(w, result, remoteOutput.Precision)

	case remoteOutput.Detail:
		report, err := c.Report(ctx, req)
		if err != nil {
			return err
		}
		if remoteOutput.JSON {
			return writeJSON(w, report)
		}
		printHeader(w, fmt.Sprintf("Risk Report  %s", report.ID))
		printReport(w, report, remoteOutput.Precision)

	default:
		result, err := c.CalculateRisk(ctx, req)
		if err != nil {
			return err
		}
		if remoteOutput.JSON {
			return writeJSON(w, result)
		}
		printHeader(w, fmt.Sprintf("Portfolio Risk  (%d positions)", len(req.Portfolio)))
		printRiskResult(w, result, remoteOutput.Precision)
	}

	printSeparator(w)
	return nil
}
