package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// MarketAnalysisStore implements storage.MarketAnalysisStore using PostgreSQL.
type MarketAnalysisStore struct {
	pool *Pool
}

// NewMarketAnalysisStore creates a new MarketAnalysisStore.
func NewMarketAnalysisStore(pool *Pool) *MarketAnalysisStore {
	return &MarketAnalysisStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketAnalysisStore = (*MarketAnalysisStore)(nil)

const marketAnalysisColumns = `
	product_id, date,
	daily_orders, daily_revenue, daily_avg_order_value,
	price_competitiveness, price_advantage, order_share, revenue_share,
	orders_ma_7, orders_ma_14, orders_ma_30,
	revenue_ma_7, revenue_ma_14, revenue_ma_30,
	price_ma_7, price_ma_14, price_ma_30,
	price_volatility, demand_volatility,
	market_opportunity
`

const upsertMarketAnalysisQuery = `
	INSERT INTO market_analysis (` + marketAnalysisColumns + `
	) VALUES (
		$1, $2,
		$3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12,
		$13, $14, $15,
		$16, $17, $18,
		$19, $20,
		$21
	)
	ON CONFLICT (product_id, date) DO UPDATE SET
		daily_orders = EXCLUDED.daily_orders,
		daily_revenue = EXCLUDED.daily_revenue,
		daily_avg_order_value = EXCLUDED.daily_avg_order_value,
		price_competitiveness = EXCLUDED.price_competitiveness,
		price_advantage = EXCLUDED.price_advantage,
		order_share = EXCLUDED.order_share,
		revenue_share = EXCLUDED.revenue_share,
		orders_ma_7 = EXCLUDED.orders_ma_7,
		orders_ma_14 = EXCLUDED.orders_ma_14,
		orders_ma_30 = EXCLUDED.orders_ma_30,
		revenue_ma_7 = EXCLUDED.revenue_ma_7,
		revenue_ma_14 = EXCLUDED.revenue_ma_14,
		revenue_ma_30 = EXCLUDED.revenue_ma_30,
		price_ma_7 = EXCLUDED.price_ma_7,
		price_ma_14 = EXCLUDED.price_ma_14,
		price_ma_30 = EXCLUDED.price_ma_30,
		price_volatility = EXCLUDED.price_volatility,
		demand_volatility = EXCLUDED.demand_volatility,
		market_opportunity = EXCLUDED.market_opportunity
`

func marketAnalysisArgs(m *domain.MarketAnalysisRecord) []any {
	return []any{
		m.ProductID, m.Date,
		m.DailyOrders, m.DailyRevenue, m.DailyAvgOrderValue,
		m.PriceCompetitiveness, m.PriceAdvantage, m.OrderShare, m.RevenueShare,
		m.OrdersMA7, m.OrdersMA14, m.OrdersMA30,
		m.RevenueMA7, m.RevenueMA14, m.RevenueMA30,
		m.PriceMA7, m.PriceMA14, m.PriceMA30,
		m.PriceVolatility, m.DemandVolatility,
		m.MarketOpportunity,
	}
}

// Upsert writes a record, replacing any existing row for (product_id, date).
func (s *MarketAnalysisStore) Upsert(ctx context.Context, m *domain.MarketAnalysisRecord) error {
	if _, err := s.pool.Exec(ctx, upsertMarketAnalysisQuery, marketAnalysisArgs(m)...); err != nil {
		return fmt.Errorf("upsert market analysis: %w", err)
	}
	return nil
}

// UpsertBulk writes multiple records atomically.
func (s *MarketAnalysisStore) UpsertBulk(ctx context.Context, records []*domain.MarketAnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range records {
		if _, err := tx.Exec(ctx, upsertMarketAnalysisQuery, marketAnalysisArgs(m)...); err != nil {
			return fmt.Errorf("upsert market analysis in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByKey retrieves the record for (product_id, date). Returns ErrNotFound if not exists.
func (s *MarketAnalysisStore) GetByKey(ctx context.Context, productID string, date time.Time) (*domain.MarketAnalysisRecord, error) {
	query := `
		SELECT ` + marketAnalysisColumns + `
		FROM market_analysis
		WHERE product_id = $1 AND date = $2
	`

	row := s.pool.QueryRow(ctx, query, productID, date)
	var m domain.MarketAnalysisRecord
	if err := scanMarketAnalysisInto(row, &m); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get market analysis by key: %w", err)
	}
	return &m, nil
}

// GetByProductID retrieves all records for a product, ordered by date ASC.
func (s *MarketAnalysisStore) GetByProductID(ctx context.Context, productID string) ([]*domain.MarketAnalysisRecord, error) {
	query := `
		SELECT ` + marketAnalysisColumns + `
		FROM market_analysis
		WHERE product_id = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get market analysis by product id: %w", err)
	}
	defer rows.Close()

	var records []*domain.MarketAnalysisRecord
	for rows.Next() {
		var m domain.MarketAnalysisRecord
		if err := scanMarketAnalysisInto(rows, &m); err != nil {
			return nil, fmt.Errorf("scan market analysis row: %w", err)
		}
		records = append(records, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market analysis rows: %w", err)
	}
	return records, nil
}

func scanMarketAnalysisInto(row pgx.Row, m *domain.MarketAnalysisRecord) error {
	err := row.Scan(
		&m.ProductID, &m.Date,
		&m.DailyOrders, &m.DailyRevenue, &m.DailyAvgOrderValue,
		&m.PriceCompetitiveness, &m.PriceAdvantage, &m.OrderShare, &m.RevenueShare,
		&m.OrdersMA7, &m.OrdersMA14, &m.OrdersMA30,
		&m.RevenueMA7, &m.RevenueMA14, &m.RevenueMA30,
		&m.PriceMA7, &m.PriceMA14, &m.PriceMA30,
		&m.PriceVolatility, &m.DemandVolatility,
		&m.MarketOpportunity,
	)
	if err != nil {
		return err
	}
	m.Date = m.Date.UTC()
	return nil
}
