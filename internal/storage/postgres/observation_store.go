package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

const observationColumns = `
	product_id, date,
	sales, revenue, avg_order_value,
	competitor_price, min_competitor_price, max_competitor_price, competitor_price_std,
	views, add_to_cart, purchases,
	stock_level, max_stock, cost,
	completed_orders, cancelled_orders, refunded_orders
`

const insertObservationQuery = `
	INSERT INTO observations (` + observationColumns + `
	) VALUES (
		$1, $2,
		$3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12,
		$13, $14, $15,
		$16, $17, $18
	)
`

func observationArgs(o *domain.Observation) []any {
	return []any{
		o.ProductID, o.Date,
		o.Sales, o.Revenue, o.AvgOrderValue,
		o.CompetitorPrice, o.MinCompetitorPrice, o.MaxCompetitorPrice, o.CompetitorPriceStd,
		o.Views, o.AddToCart, o.Purchases,
		o.StockLevel, o.MaxStock, o.Cost,
		o.CompletedOrders, o.CancelledOrders, o.RefundedOrders,
	}
}

// Insert adds a new observation. Returns ErrDuplicateKey if (product_id, date) exists.
func (s *ObservationStore) Insert(ctx context.Context, o *domain.Observation) error {
	_, err := s.pool.Exec(ctx, insertObservationQuery, observationArgs(o)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// InsertBulk adds multiple observations atomically. Fails entire batch on any duplicate.
func (s *ObservationStore) InsertBulk(ctx context.Context, observations []*domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range observations {
		if _, err := tx.Exec(ctx, insertObservationQuery, observationArgs(o)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert observation in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByProductID retrieves all observations for a product, ordered by date ASC.
func (s *ObservationStore) GetByProductID(ctx context.Context, productID string) ([]*domain.Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		WHERE product_id = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get observations by product id: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByDateRange retrieves observations for a product within [start, end] (inclusive).
func (s *ObservationStore) GetByDateRange(ctx context.Context, productID string, start, end time.Time) ([]*domain.Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		WHERE product_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, productID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get observations by date range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetAll retrieves all observations, ordered by product_id ASC, date ASC.
func (s *ObservationStore) GetAll(ctx context.Context) ([]*domain.Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		ORDER BY product_id ASC, date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all observations: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// scanObservations scans multiple rows into a slice of Observation.
func scanObservations(rows pgx.Rows) ([]*domain.Observation, error) {
	var observations []*domain.Observation

	for rows.Next() {
		var o domain.Observation

		err := rows.Scan(
			&o.ProductID, &o.Date,
			&o.Sales, &o.Revenue, &o.AvgOrderValue,
			&o.CompetitorPrice, &o.MinCompetitorPrice, &o.MaxCompetitorPrice, &o.CompetitorPriceStd,
			&o.Views, &o.AddToCart, &o.Purchases,
			&o.StockLevel, &o.MaxStock, &o.Cost,
			&o.CompletedOrders, &o.CancelledOrders, &o.RefundedOrders,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}

		o.Date = o.Date.UTC()
		observations = append(observations, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}

	return observations, nil
}
