package marketdata

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_LoadLatest(t *testing.T) {
	// Skip if DATABASE_URL is not set
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err, "database connection failed")
	defer pool.Close()

	repo := NewRepository(pool)

	count, err := repo.Count(ctx)
	require.NoError(t, err)

	store, err := repo.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, store.Len())

	for _, md := range store.Records() {
		assert.NotEmpty(t, md.AssetID)
	}

	if ids := store.AssetIDs(); len(ids) > 0 {
		subset, err := repo.LoadAssets(ctx, ids[:1])
		require.NoError(t, err)
		assert.Equal(t, 1, subset.Len())
	}
}
