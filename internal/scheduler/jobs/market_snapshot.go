package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/optrisk/internal/marketdata"
	"github.com/wonny/optrisk/pkg/logger"
)

// SnapshotLoader reads the latest market data set
type SnapshotLoader interface {
	LoadLatest(ctx context.Context) (*marketdata.Store, error)
}

// SnapshotRecorder receives refresh outcomes (metrics)
type SnapshotRecorder interface {
	ObserveSnapshot(assets int, loadedAt time.Time, err error)
}

// MarketSnapshotJob reloads the server-held market data snapshot
// ⭐ 읽기 전용: DB → Snapshot.Replace (엔진 입력은 요청 시점의 Store 로 고정)
type MarketSnapshotJob struct {
	loader   SnapshotLoader
	snapshot *marketdata.Snapshot
	recorder SnapshotRecorder
	schedule string
	logger   *logger.Logger
	now      func() time.Time
}

// NewMarketSnapshotJob creates a new snapshot refresh job
func NewMarketSnapshotJob(loader SnapshotLoader, snapshot *marketdata.Snapshot, schedule string, log *logger.Logger) *MarketSnapshotJob {
	return &MarketSnapshotJob{
		loader:   loader,
		snapshot: snapshot,
		schedule: schedule,
		logger:   log,
		now:      time.Now,
	}
}

// WithRecorder attaches a refresh outcome recorder
func (j *MarketSnapshotJob) WithRecorder(r SnapshotRecorder) *MarketSnapshotJob {
	j.recorder = r
	return j
}

// Name returns the job name
func (j *MarketSnapshotJob) Name() string {
	return "market_snapshot"
}

// Schedule returns the cron schedule
func (j *MarketSnapshotJob) Schedule() string {
	return j.schedule
}

// Run loads the latest rows and installs them.
// 실패 시 이전 스냅샷 유지
func (j *MarketSnapshotJob) Run(ctx context.Context) error {
	store, err := j.loader.LoadLatest(ctx)
	if err != nil {
		j.observe(0, time.Time{}, err)
		return fmt.Errorf("load market data snapshot: %w", err)
	}

	loadedAt := j.now()
	version := j.snapshot.Replace(store, loadedAt)
	j.observe(store.Len(), loadedAt, nil)

	j.logger.WithFields(map[string]interface{}{
		"assets":  store.Len(),
		"version": version,
	}).Debug("Market data snapshot refreshed")

	return nil
}

func (j *MarketSnapshotJob) observe(assets int, loadedAt time.Time, err error) {
	if j.recorder != nil {
		j.recorder.ObserveSnapshot(assets, loadedAt, err)
	}
}
