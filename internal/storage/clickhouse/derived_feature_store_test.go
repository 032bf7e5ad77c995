package clickhouse

import (
	"context"
	"math"
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

func testVector(productID, date string) *domain.DerivedFeatureVector {
	return &domain.DerivedFeatureVector{
		ProductID:       productID,
		Date:            day(date),
		DayOfWeek:       4,
		Month:           3,
		DayOfMonth:      1,
		Price:           20,
		CompetitorPrice: 25,
		PriceDifference: -5,
		PriceRatio:      0.8,
		Sales:           5,
		Views:           200,
		ConversionRate:  0.025,
		SalesMA7:        5,
		PriceMA7:        20,
		PriceVolatility: math.NaN(),
		Seasonality:     math.NaN(),
	}
}

func TestDerivedFeatureStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDerivedFeatureStore(conn)
	ctx := context.Background()

	vectors := []*domain.DerivedFeatureVector{
		testVector("sku-1", "2024-03-01"),
		testVector("sku-1", "2024-03-02"),
		testVector("sku-2", "2024-03-01"),
	}
	require.NoError(t, store.InsertBulk(ctx, vectors))

	got, err := store.GetByProductID(ctx, "sku-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, day("2024-03-01").Equal(got[0].Date))
	assert.InDelta(t, 0.8, got[0].PriceRatio, 1e-9)
	assert.Equal(t, 5, got[0].Sales)

	// NaN volatility for the first row survives the round trip.
	assert.True(t, math.IsNaN(got[0].PriceVolatility))
}

func TestDerivedFeatureStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDerivedFeatureStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.DerivedFeatureVector{testVector("sku-1", "2024-03-01")}))

	err := store.InsertBulk(ctx, []*domain.DerivedFeatureVector{testVector("sku-1", "2024-03-01")})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDerivedFeatureStore_DateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDerivedFeatureStore(conn)
	ctx := context.Background()

	vectors := []*domain.DerivedFeatureVector{
		testVector("sku-1", "2024-03-01"),
		testVector("sku-1", "2024-03-02"),
		testVector("sku-1", "2024-03-05"),
	}
	require.NoError(t, store.InsertBulk(ctx, vectors))

	got, err := store.GetByDateRange(ctx, "sku-1", day("2024-03-02"), day("2024-03-04"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, day("2024-03-02").Equal(got[0].Date))
}
