package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// RiskScoreStore implements storage.RiskScoreStore using PostgreSQL.
type RiskScoreStore struct {
	pool *Pool
}

// NewRiskScoreStore creates a new RiskScoreStore.
func NewRiskScoreStore(pool *Pool) *RiskScoreStore {
	return &RiskScoreStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RiskScoreStore = (*RiskScoreStore)(nil)

const riskScoreColumns = `
	product_id, date,
	profit_margin, price_volatility, competitor_price_volatility,
	stock_risk, order_cancellation_rate, order_refund_rate,
	price_competitiveness, market_share, revenue_share,
	demand_volatility, seasonality,
	financial_risk, operational_risk, market_risk, demand_risk,
	overall_risk, risk_level
`

// Scores are recomputable, so the write replaces the existing row.
const upsertRiskScoreQuery = `
	INSERT INTO risk_scores (` + riskScoreColumns + `
	) VALUES (
		$1, $2,
		$3, $4, $5,
		$6, $7, $8,
		$9, $10, $11,
		$12, $13,
		$14, $15, $16, $17,
		$18, $19
	)
	ON CONFLICT (product_id, date) DO UPDATE SET
		profit_margin = EXCLUDED.profit_margin,
		price_volatility = EXCLUDED.price_volatility,
		competitor_price_volatility = EXCLUDED.competitor_price_volatility,
		stock_risk = EXCLUDED.stock_risk,
		order_cancellation_rate = EXCLUDED.order_cancellation_rate,
		order_refund_rate = EXCLUDED.order_refund_rate,
		price_competitiveness = EXCLUDED.price_competitiveness,
		market_share = EXCLUDED.market_share,
		revenue_share = EXCLUDED.revenue_share,
		demand_volatility = EXCLUDED.demand_volatility,
		seasonality = EXCLUDED.seasonality,
		financial_risk = EXCLUDED.financial_risk,
		operational_risk = EXCLUDED.operational_risk,
		market_risk = EXCLUDED.market_risk,
		demand_risk = EXCLUDED.demand_risk,
		overall_risk = EXCLUDED.overall_risk,
		risk_level = EXCLUDED.risk_level
`

func riskScoreArgs(r *domain.RiskScoreRecord) []any {
	return []any{
		r.ProductID, r.Date,
		r.ProfitMargin, r.PriceVolatility, r.CompetitorPriceVolatility,
		r.StockRisk, r.OrderCancellationRate, r.OrderRefundRate,
		r.PriceCompetitiveness, r.MarketShare, r.RevenueShare,
		r.DemandVolatility, r.Seasonality,
		r.FinancialRisk, r.OperationalRisk, r.MarketRisk, r.DemandRisk,
		r.OverallRisk, string(r.RiskLevel),
	}
}

// Upsert writes a score, replacing any existing row for (product_id, date).
func (s *RiskScoreStore) Upsert(ctx context.Context, r *domain.RiskScoreRecord) error {
	if _, err := s.pool.Exec(ctx, upsertRiskScoreQuery, riskScoreArgs(r)...); err != nil {
		return fmt.Errorf("upsert risk score: %w", err)
	}
	return nil
}

// UpsertBulk writes multiple scores atomically.
func (s *RiskScoreStore) UpsertBulk(ctx context.Context, records []*domain.RiskScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if _, err := tx.Exec(ctx, upsertRiskScoreQuery, riskScoreArgs(r)...); err != nil {
			return fmt.Errorf("upsert risk score in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByKey retrieves the score for (product_id, date). Returns ErrNotFound if not exists.
func (s *RiskScoreStore) GetByKey(ctx context.Context, productID string, date time.Time) (*domain.RiskScoreRecord, error) {
	query := `
		SELECT ` + riskScoreColumns + `
		FROM risk_scores
		WHERE product_id = $1 AND date = $2
	`

	row := s.pool.QueryRow(ctx, query, productID, date)
	r, err := scanRiskScore(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get risk score by key: %w", err)
	}
	return r, nil
}

// GetByProductID retrieves all scores for a product, ordered by date ASC.
func (s *RiskScoreStore) GetByProductID(ctx context.Context, productID string) ([]*domain.RiskScoreRecord, error) {
	query := `
		SELECT ` + riskScoreColumns + `
		FROM risk_scores
		WHERE product_id = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get risk scores by product id: %w", err)
	}
	defer rows.Close()

	return scanRiskScores(rows)
}

// GetByLevel retrieves all scores at a given risk level, ordered by product_id ASC, date ASC.
func (s *RiskScoreStore) GetByLevel(ctx context.Context, level domain.RiskLevel) ([]*domain.RiskScoreRecord, error) {
	query := `
		SELECT ` + riskScoreColumns + `
		FROM risk_scores
		WHERE risk_level = $1
		ORDER BY product_id ASC, date ASC
	`

	rows, err := s.pool.Query(ctx, query, string(level))
	if err != nil {
		return nil, fmt.Errorf("get risk scores by level: %w", err)
	}
	defer rows.Close()

	return scanRiskScores(rows)
}

func scanRiskScoreInto(row pgx.Row, r *domain.RiskScoreRecord) error {
	var level string
	err := row.Scan(
		&r.ProductID, &r.Date,
		&r.ProfitMargin, &r.PriceVolatility, &r.CompetitorPriceVolatility,
		&r.StockRisk, &r.OrderCancellationRate, &r.OrderRefundRate,
		&r.PriceCompetitiveness, &r.MarketShare, &r.RevenueShare,
		&r.DemandVolatility, &r.Seasonality,
		&r.FinancialRisk, &r.OperationalRisk, &r.MarketRisk, &r.DemandRisk,
		&r.OverallRisk, &level,
	)
	if err != nil {
		return err
	}
	r.Date = r.Date.UTC()
	r.RiskLevel = domain.RiskLevel(level)
	return nil
}

func scanRiskScore(row pgx.Row) (*domain.RiskScoreRecord, error) {
	var r domain.RiskScoreRecord
	if err := scanRiskScoreInto(row, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRiskScores(rows pgx.Rows) ([]*domain.RiskScoreRecord, error) {
	var records []*domain.RiskScoreRecord

	for rows.Next() {
		var r domain.RiskScoreRecord
		if err := scanRiskScoreInto(rows, &r); err != nil {
			return nil, fmt.Errorf("scan risk score row: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk score rows: %w", err)
	}

	return records, nil
}
