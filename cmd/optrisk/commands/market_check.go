package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/optrisk/internal/marketdata"
	"github.com/wonny/optrisk/pkg/database"
)

// marketCheckCmd represents the market-check command
var marketCheckCmd = &cobra.Command{
	Use:   "market-check",
	Short: "시장 데이터 DB 상태 확인",
	Long: `PostgreSQL market_data 테이블 상태를 확인합니다.

확인 항목:
- DB 연결 / 풀 상태
- market_data 행 수
- 자산별 최신 레코드 (API 스냅샷과 동일한 쿼리, --assets 로 특정 자산만)

Example:
  go run ./cmd/optrisk market-check
  go run ./cmd/optrisk market-check --migrate
  go run ./cmd/optrisk market-check --limit 50
  go run ./cmd/optrisk market-check --assets AAPL,MSFT`,
	RunE: runMarketCheck,
}

var (
	marketMigrate bool
	marketLimit   int
	marketAssets  []string
)

func init() {
	rootCmd.AddCommand(marketCheckCmd)

	marketCheckCmd.Flags().BoolVar(&marketMigrate, "migrate", false, "market_data 테이블 생성 (없으면)")
	marketCheckCmd.Flags().IntVar(&marketLimit, "limit", 20, "출력할 최대 자산 수")
	marketCheckCmd.Flags().StringSliceVar(&marketAssets, "assets", nil, "조회할 자산 ID (쉼표 구분, 기본: 전체)")
}

func runMarketCheck(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	// 2. Connect to database
	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	printHeader(w, "Database")
	printRow(w, "Healthy", fmt.Sprint(status.Healthy))
	printRow(w, "Response", status.ResponseTime.String())
	printRow(w, "Connections", fmt.Sprintf("%d total / %d max", status.Stats.TotalConns, status.Stats.MaxConns))

	// 3. Schema
	if marketMigrate {
		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		printRow(w, "Schema", "market_data ready")
	}

	// 4. Rows
	repo := marketdata.NewRepository(db.Pool)
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count market data: %w", err)
	}
	printRow(w, "Rows", fmt.Sprint(count))

	store, err := loadMarketStore(ctx, repo, marketAssets)
	if err != nil {
		return err
	}
	printRow(w, "Assets", fmt.Sprint(store.Len()))
	printSeparator(w)

	// 요청했지만 DB 에 없는 자산 (스냅샷 계산 시 missing_market_data)
	for _, id := range marketAssets {
		if _, ok := store.Get(id); !ok {
			fmt.Fprintf(w, "⚠️  %s: market data 없음\n", id)
		}
	}

	if store.Len() == 0 {
		fmt.Fprintln(w, "⚠️  market_data 가 비어 있습니다 (스냅샷 엔드포인트는 503 반환)")
		return nil
	}

	records := store.Records()
	if marketLimit > 0 && len(records) > marketLimit {
		records = records[:marketLimit]
	}
	printTable(w,
		[]string{"Asset", "Spot", "Rate", "Vol"},
		[]int{12, 14, 10, 10},
		func(add func(...string)) {
			for _, md := range records {
				add(md.AssetID, fixed(md.SpotPrice, 4), fixed(md.RiskFreeRate, 4), fixed(md.Volatility, 4))
			}
		})
	if len(records) < store.Len() {
		fmt.Fprintf(w, "  ... %d more\n", store.Len()-len(records))
	}
	return nil
}

// loadMarketStore reads every asset, or only the requested ones
func loadMarketStore(ctx context.Context, repo *marketdata.Repository, assets []string) (*marketdata.Store, error) {
	if len(assets) == 0 {
		store, err := repo.LoadLatest(ctx)
		if err != nil {
			return nil, fmt.Errorf("load latest market data: %w", err)
		}
		return store, nil
	}

	store, err := repo.LoadAssets(ctx, assets)
	if err != nil {
		return nil, fmt.Errorf("load market data for %v: %w", assets, err)
	}
	return store, nil
}
