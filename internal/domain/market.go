package domain

import "time"

// MarketAnalysisRecord represents market positioning for one (product, day).
// Corresponds to market_analysis table in PostgreSQL. Same lifecycle as
// RiskScoreRecord: idempotent, replaced on rewrite for the same key.
type MarketAnalysisRecord struct {
	ProductID string
	Date      time.Time

	DailyOrders        int
	DailyRevenue       float64
	DailyAvgOrderValue float64

	// Competitive positioning
	PriceCompetitiveness float64 // competitor_price / avg_order_value
	PriceAdvantage       float64 // (max_competitor_price - avg_order_value) / max_competitor_price
	OrderShare           float64
	RevenueShare         float64

	// Trend indicators
	OrdersMA7   float64
	OrdersMA14  float64
	OrdersMA30  float64
	RevenueMA7  float64
	RevenueMA14 float64
	RevenueMA30 float64
	PriceMA7    float64
	PriceMA14   float64
	PriceMA30   float64

	PriceVolatility  float64
	DemandVolatility float64

	// Composite opportunity score. Not clamped, same policy as risk scores.
	MarketOpportunity float64
}

// CompetitorPrice is one scraped competitor price sample.
// Corresponds to competitor_prices table in PostgreSQL; rewritten in place
// per (product_id, competitor_url) on each collection run.
type CompetitorPrice struct {
	ProductID     string
	CompetitorURL string
	Price         float64
	ObservedAt    time.Time
}

// CompetitorURL is a tracked competitor page for a product.
type CompetitorURL struct {
	ProductID     string
	CompetitorURL string
	IsActive      bool
}
