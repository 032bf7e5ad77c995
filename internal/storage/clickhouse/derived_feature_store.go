package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// DerivedFeatureStore implements storage.DerivedFeatureStore using ClickHouse.
type DerivedFeatureStore struct {
	conn *Conn
}

// NewDerivedFeatureStore creates a new DerivedFeatureStore.
func NewDerivedFeatureStore(conn *Conn) *DerivedFeatureStore {
	return &DerivedFeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DerivedFeatureStore = (*DerivedFeatureStore)(nil)

const derivedFeatureColumns = `
	product_id, date,
	day_of_week, month, day_of_month, is_weekend,
	price, competitor_price, price_difference, price_ratio,
	sales, views, conversion_rate,
	sales_ma_7, sales_ma_14, sales_ma_30,
	revenue_ma_7, revenue_ma_14, revenue_ma_30,
	price_ma_7, price_ma_14, price_ma_30,
	price_volatility, competitor_price_volatility, demand_volatility,
	seasonality
`

// InsertBulk adds multiple vectors. Fails entire batch on duplicate (product_id, date).
//
// MergeTree does not enforce uniqueness at insert time, so duplicates are
// detected with an explicit existence check before the batch is prepared.
func (s *DerivedFeatureStore) InsertBulk(ctx context.Context, vectors []*domain.DerivedFeatureVector) error {
	if len(vectors) == 0 {
		return nil
	}

	type key struct {
		productID string
		date      time.Time
	}
	seen := make(map[key]struct{}, len(vectors))
	for _, v := range vectors {
		if v == nil || v.ProductID == "" || v.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{v.ProductID, v.Date.UTC()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, v := range vectors {
		exists, err := s.exists(ctx, v.ProductID, v.Date)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO derived_features (`+derivedFeatureColumns+`)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, v := range vectors {
		err = batch.Append(
			v.ProductID, v.Date.UTC(),
			int8(v.DayOfWeek), int8(v.Month), int8(v.DayOfMonth), uint8(v.IsWeekend),
			v.Price, v.CompetitorPrice, v.PriceDifference, v.PriceRatio,
			int32(v.Sales), int32(v.Views), v.ConversionRate,
			v.SalesMA7, v.SalesMA14, v.SalesMA30,
			v.RevenueMA7, v.RevenueMA14, v.RevenueMA30,
			v.PriceMA7, v.PriceMA14, v.PriceMA30,
			v.PriceVolatility, v.CompetitorPriceVolatility, v.DemandVolatility,
			v.Seasonality,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByProductID retrieves all vectors for a product, ordered by date ASC.
func (s *DerivedFeatureStore) GetByProductID(ctx context.Context, productID string) ([]*domain.DerivedFeatureVector, error) {
	query := `
		SELECT ` + derivedFeatureColumns + `
		FROM derived_features
		WHERE product_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query by product id: %w", err)
	}
	defer rows.Close()

	return scanDerivedFeatures(rows)
}

// GetByDateRange retrieves vectors for a product within [start, end] (inclusive).
func (s *DerivedFeatureStore) GetByDateRange(ctx context.Context, productID string, start, end time.Time) ([]*domain.DerivedFeatureVector, error) {
	query := `
		SELECT ` + derivedFeatureColumns + `
		FROM derived_features
		WHERE product_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, productID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanDerivedFeatures(rows)
}

// exists checks if a vector with the given key exists.
func (s *DerivedFeatureStore) exists(ctx context.Context, productID string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM derived_features
		WHERE product_id = ? AND date = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, productID, date.UTC()).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanDerivedFeatures(rows driver.Rows) ([]*domain.DerivedFeatureVector, error) {
	var vectors []*domain.DerivedFeatureVector

	for rows.Next() {
		var v domain.DerivedFeatureVector
		var dayOfWeek, month, dayOfMonth int8
		var isWeekend uint8
		var sales, views int32

		err := rows.Scan(
			&v.ProductID, &v.Date,
			&dayOfWeek, &month, &dayOfMonth, &isWeekend,
			&v.Price, &v.CompetitorPrice, &v.PriceDifference, &v.PriceRatio,
			&sales, &views, &v.ConversionRate,
			&v.SalesMA7, &v.SalesMA14, &v.SalesMA30,
			&v.RevenueMA7, &v.RevenueMA14, &v.RevenueMA30,
			&v.PriceMA7, &v.PriceMA14, &v.PriceMA30,
			&v.PriceVolatility, &v.CompetitorPriceVolatility, &v.DemandVolatility,
			&v.Seasonality,
		)
		if err != nil {
			return nil, fmt.Errorf("scan derived features row: %w", err)
		}

		v.Date = v.Date.UTC()
		v.DayOfWeek = int(dayOfWeek)
		v.Month = int(month)
		v.DayOfMonth = int(dayOfMonth)
		v.IsWeekend = int(isWeekend)
		v.Sales = int(sales)
		v.Views = int(views)

		vectors = append(vectors, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate derived features rows: %w", err)
	}

	return vectors, nil
}
