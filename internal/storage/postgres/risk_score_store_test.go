package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

func TestRiskScoreStore_Postgres_UpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskScoreStore(pool)
	ctx := context.Background()

	r := &domain.RiskScoreRecord{
		ProductID:    "sku-1",
		Date:         day("2024-03-01"),
		ProfitMargin: 0.4,
		OverallRisk:  0.45,
		RiskLevel:    domain.RiskLevelMedium,
	}
	require.NoError(t, store.Upsert(ctx, r))

	r.OverallRisk = 0.72
	r.RiskLevel = domain.RiskLevelHigh
	require.NoError(t, store.Upsert(ctx, r))

	got, err := store.GetByKey(ctx, "sku-1", day("2024-03-01"))
	require.NoError(t, err)
	assert.InDelta(t, 0.72, got.OverallRisk, 1e-9)
	assert.Equal(t, domain.RiskLevelHigh, got.RiskLevel)

	// Still one row for the key.
	all, err := store.GetByProductID(ctx, "sku-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRiskScoreStore_Postgres_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskScoreStore(pool)

	_, err := store.GetByKey(context.Background(), "sku-1", day("2024-03-01"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRiskScoreStore_Postgres_GetByLevel(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskScoreStore(pool)
	ctx := context.Background()

	records := []*domain.RiskScoreRecord{
		{ProductID: "sku-1", Date: day("2024-03-01"), RiskLevel: domain.RiskLevelLow},
		{ProductID: "sku-1", Date: day("2024-03-02"), RiskLevel: domain.RiskLevelHigh},
		{ProductID: "sku-2", Date: day("2024-03-01"), RiskLevel: domain.RiskLevelHigh},
	}
	require.NoError(t, store.UpsertBulk(ctx, records))

	high, err := store.GetByLevel(ctx, domain.RiskLevelHigh)
	require.NoError(t, err)
	require.Len(t, high, 2)
	assert.Equal(t, "sku-1", high[0].ProductID)
	assert.Equal(t, "sku-2", high[1].ProductID)
}
