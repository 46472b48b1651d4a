package marketdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/optrisk/internal/contracts"
)

// Repository reads market data snapshots from PostgreSQL
// ⭐ SSOT: 읽기 전용. 엔진 결과는 저장하지 않음
//
// Expected table:
//
//	CREATE TABLE market_data (
//	    asset_id       TEXT        NOT NULL,
//	    spot_price     DOUBLE PRECISION NOT NULL,
//	    risk_free_rate DOUBLE PRECISION NOT NULL,
//	    volatility     DOUBLE PRECISION NOT NULL,
//	    as_of          TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (asset_id, as_of)
//	);
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new market data repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadLatest returns the most recent record per asset
func (r *Repository) LoadLatest(ctx context.Context) (*Store, error) {
	query := `
		SELECT DISTINCT ON (asset_id)
			asset_id, spot_price, risk_free_rate, volatility
		FROM market_data
		ORDER BY asset_id, as_of DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query market data: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanMarketData)
	if err != nil {
		return nil, fmt.Errorf("failed to scan market data: %w", err)
	}

	return NewStore(records...), nil
}

// LoadAssets returns the most recent record for each requested asset
// 존재하지 않는 종목은 결과에서 빠짐 (누락 판단은 엔진이 MissingMarketDataError 로)
func (r *Repository) LoadAssets(ctx context.Context, assetIDs []string) (*Store, error) {
	if len(assetIDs) == 0 {
		return NewStore(), nil
	}

	query := `
		SELECT DISTINCT ON (asset_id)
			asset_id, spot_price, risk_free_rate, volatility
		FROM market_data
		WHERE asset_id = ANY($1)
		ORDER BY asset_id, as_of DESC
	`

	rows, err := r.pool.Query(ctx, query, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query market data: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanMarketData)
	if err != nil {
		return nil, fmt.Errorf("failed to scan market data: %w", err)
	}

	return NewStore(records...), nil
}

// Count returns the number of distinct assets with market data
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT asset_id) FROM market_data`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count market data: %w", err)
	}
	return n, nil
}

func scanMarketData(row pgx.CollectableRow) (contracts.MarketData, error) {
	var md contracts.MarketData
	err := row.Scan(&md.AssetID, &md.SpotPrice, &md.RiskFreeRate, &md.Volatility)
	return md, err
}
