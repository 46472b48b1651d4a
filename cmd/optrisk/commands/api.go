package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/optrisk/internal/api"
	"github.com/wonny/optrisk/internal/api/handlers"
	"github.com/wonny/optrisk/internal/marketdata"
	"github.com/wonny/optrisk/internal/pricing"
	"github.com/wonny/optrisk/internal/risk"
	"github.com/wonny/optrisk/internal/scheduler"
	"github.com/wonny/optrisk/internal/scheduler/jobs"
	"github.com/wonny/optrisk/pkg/config"
	"github.com/wonny/optrisk/pkg/database"
	"github.com/wonny/optrisk/pkg/logger"
	"github.com/wonny/optrisk/pkg/metrics"
	"github.com/wonny/optrisk/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 리스크/가격 계산 엔드포인트 제공
- MARKET_DATA_SOURCE=postgres 이면 시장 데이터 스냅샷 주기적 갱신
- REDIS_ENABLED=true 이면 결과 캐시 + 공유 rate limit
- PRICING_MODEL 로 가격 모델 선택 (black_scholes | binomial | merton_jump)

Endpoints:
  POST /calculate_risk                 - 리스크 계산 (market_data 포함)
  POST /api/risk/calculate             - 리스크 계산 (동일)
  POST /api/risk/calculate/snapshot    - 서버 스냅샷 기반 리스크 계산
  POST /api/risk/report                - 상세 리포트
  POST /api/pricing/option             - 단일 옵션 Greeks
  POST /api/pricing/implied-vol        - 내재 변동성
  GET  /api/market/snapshot            - 스냅샷 조회
  GET  /api/scheduler/jobs             - 스냅샷 갱신 작업 상태 (postgres 모드)
  GET  /health                         - Health check
  GET  /metrics                        - Prometheus

Example:
  go run ./cmd/optrisk api
  go run ./cmd/optrisk api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"env":         cfg.Env,
		"market_data": cfg.MarketData.Source,
	}).Info("Initializing API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Redis (비활성이면 no-op 클라이언트)
	rc, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()

	// 4. Metrics
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// 5. Pricer + engine
	pricer, err := newPricer(cfg.Pricing)
	if err != nil {
		return err
	}
	engine, err := risk.NewEngine(risk.WithPricer(pricer))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	log.WithField("model", engine.Model()).Info("Pricing model configured")

	trusted, err := api.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parse RATE_LIMIT_TRUSTED_PROXIES: %w", err)
	}

	// 6. Market data snapshot (postgres 모드만)
	var (
		snapshot *marketdata.Snapshot
		dbCheck  handlers.DatabaseChecker
		jobList  *handlers.SchedulerHandler
	)
	if cfg.UsesSnapshot() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		dbCheck = db
		log.Info("Connected to database")

		snapshot = marketdata.NewSnapshot()
		sched, err := startSnapshotRefresh(ctx, cfg, db, snapshot, m, log)
		if err != nil {
			return err
		}
		defer sched.Stop()
		jobList = handlers.NewSchedulerHandler(sched)
	}

	// 7. Handlers + router
	h := api.Handlers{
		Risk:      handlers.NewRiskHandler(engine, redis.NewCache(rc, "optrisk"), cfg.Redis.ResultTTL, snapshot, m, log),
		Pricing:   handlers.NewPricingHandler(pricer, m, log),
		Market:    handlers.NewMarketHandler(snapshot),
		Scheduler: jobList,
		Health:    handlers.NewHealthHandler(dbCheck, rc, snapshot),
	}
	limiter := api.NewRateLimiter(
		redis.NewRateLimiter(rc, "optrisk"),
		cfg.RateLimit.RPS,
		cfg.RateLimit.Burst,
		log,
		api.WithTrustedProxies(trusted),
		api.WithIdleTTL(cfg.RateLimit.IdleTTL),
	)
	router := api.NewRouter(h, limiter, m, log)

	// 8. Create server
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// startSnapshotRefresh loads the snapshot once and schedules reloads.
// 초기 로드 실패는 치명적이지 않음 (스냅샷 엔드포인트가 503 반환)
func startSnapshotRefresh(ctx context.Context, cfg *config.Config, db *database.DB, snapshot *marketdata.Snapshot, m *metrics.Metrics, log *logger.Logger) (*scheduler.Scheduler, error) {
	job := jobs.NewMarketSnapshotJob(marketdata.NewRepository(db.Pool), snapshot, cfg.MarketData.Refresh, log)
	if m != nil {
		job.WithRecorder(m)
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return nil, fmt.Errorf("schedule market snapshot: %w", err)
	}

	result, err := sched.RunJob(ctx, job.Name())
	if err != nil {
		return nil, err
	}
	if !result.Success {
		log.WithField("error", result.Error).Warn("Initial market data snapshot load failed")
	} else {
		log.WithField("assets", snapshot.Current().Len()).Info("Market data snapshot loaded")
	}

	sched.Start()
	return sched, nil
}

// newPricer builds the configured pricing model
func newPricer(pc config.PricingConfig) (pricing.Pricer, error) {
	model, err := pricing.ParseModel(pc.Model)
	if err != nil {
		return nil, fmt.Errorf("PRICING_MODEL: %w", err)
	}
	p, err := pricing.NewPricer(pricing.ModelConfig{
		Model:         model,
		BinomialSteps: pc.BinomialSteps,
		JumpIntensity: pc.JumpIntensity,
		JumpMean:      pc.JumpMean,
		JumpVol:       pc.JumpVol,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pricer: %w", model, err)
	}
	return p, nil
}
