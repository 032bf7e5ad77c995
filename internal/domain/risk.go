package domain

import "time"

// RiskLevel is the ordinal bucket for an overall risk score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// RiskScoreRecord represents the scored risk profile for one (product, day).
// Corresponds to risk_scores table in PostgreSQL. Recomputable from the same
// inputs; writes replace any existing row for the (product_id, date) key.
type RiskScoreRecord struct {
	ProductID string
	Date      time.Time

	// Sub-metrics
	ProfitMargin              float64
	PriceVolatility           float64
	CompetitorPriceVolatility float64
	StockRisk                 float64 // 1 - stock_level / max observed stock for the product
	OrderCancellationRate     float64
	OrderRefundRate           float64
	PriceCompetitiveness      float64 // avg_order_value / competitor_price
	MarketShare               float64 // product orders / all orders that day
	RevenueShare              float64 // product revenue / all revenue that day
	DemandVolatility          float64
	Seasonality               float64

	// Weighted composites. Not clamped: sub-metrics can legitimately leave
	// [0,1], and the overall score follows them.
	FinancialRisk   float64
	OperationalRisk float64
	MarketRisk      float64
	DemandRisk      float64
	OverallRisk     float64

	RiskLevel RiskLevel
}
