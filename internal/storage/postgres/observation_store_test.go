package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func testObservation(productID, date string) *domain.Observation {
	return &domain.Observation{
		ProductID:          productID,
		Date:               day(date),
		Sales:              5,
		Revenue:            100,
		AvgOrderValue:      20,
		CompetitorPrice:    25,
		MinCompetitorPrice: 22,
		MaxCompetitorPrice: 28,
		Views:              200,
		AddToCart:          20,
		Purchases:          5,
		StockLevel:         30,
		MaxStock:           100,
		Cost:               12,
		CompletedOrders:    4,
		CancelledOrders:    1,
		RefundedOrders:     0,
	}
}

func TestObservationStore_Postgres_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewObservationStore(pool)
	ctx := context.Background()

	o := testObservation("sku-1", "2024-03-01")
	require.NoError(t, store.Insert(ctx, o))

	got, err := store.GetByProductID(ctx, "sku-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, o.ProductID, got[0].ProductID)
	assert.True(t, o.Date.Equal(got[0].Date))
	assert.Equal(t, o.Sales, got[0].Sales)
	assert.InDelta(t, o.AvgOrderValue, got[0].AvgOrderValue, 1e-9)
	assert.Equal(t, o.CancelledOrders, got[0].CancelledOrders)
}

func TestObservationStore_Postgres_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewObservationStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testObservation("sku-1", "2024-03-01")))

	err := store.Insert(ctx, testObservation("sku-1", "2024-03-01"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestObservationStore_Postgres_BulkRollsBackOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewObservationStore(pool)
	ctx := context.Background()

	batch := []*domain.Observation{
		testObservation("sku-1", "2024-03-01"),
		testObservation("sku-1", "2024-03-02"),
		testObservation("sku-1", "2024-03-01"),
	}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByProductID(ctx, "sku-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestObservationStore_Postgres_DateRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewObservationStore(pool)
	ctx := context.Background()

	batch := []*domain.Observation{
		testObservation("sku-1", "2024-03-01"),
		testObservation("sku-1", "2024-03-02"),
		testObservation("sku-1", "2024-03-03"),
		testObservation("sku-2", "2024-03-02"),
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	got, err := store.GetByDateRange(ctx, "sku-1", day("2024-03-02"), day("2024-03-03"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, day("2024-03-02").Equal(got[0].Date))
	assert.True(t, day("2024-03-03").Equal(got[1].Date))
}
