package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/optrisk/pkg/config"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "optrisk",
	Short: "optrisk - 유럽형 옵션 포트폴리오 리스크 엔진",
	Long: `optrisk Unified CLI

Black-Scholes-Merton 가격 결정, 포트폴리오 Greeks 집계,
델타-노멀 95% VaR 를 계산합니다.

Usage:
  go run ./cmd/optrisk [command]

Examples:
  go run ./cmd/optrisk api
  go run ./cmd/optrisk calc --file portfolio.yaml
  go run ./cmd/optrisk price --type call --strike 100 --expiry 1 --spot 100 --rate 0.05 --vol 0.2
  go run ./cmd/optrisk iv --type call --strike 100 --expiry 1 --spot 100 --rate 0.05 --price 10.45
  go run ./cmd/optrisk remote calc --file portfolio.yaml
  go run ./cmd/optrisk market-check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}

// loadConfig reads the environment and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
