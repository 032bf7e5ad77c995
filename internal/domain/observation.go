package domain

import "time"

// Observation represents one raw per-product per-day commercial data point.
// Corresponds to observations table in PostgreSQL. Immutable once collected.
type Observation struct {
	ProductID string    // product identifier
	Date      time.Time // observation day, midnight UTC

	// Sales
	Sales         int     // completed order count for the day
	Revenue       float64 // total revenue for the day
	AvgOrderValue float64 // average order value (effective selling price)

	// Competitor pricing, aggregated across tracked competitors
	CompetitorPrice    float64 // AVG competitor price
	MinCompetitorPrice float64
	MaxCompetitorPrice float64
	CompetitorPriceStd float64

	// Visitor behavior
	Views     int
	AddToCart int
	Purchases int

	// Inventory and cost
	StockLevel int
	MaxStock   int
	Cost       float64

	// Order outcomes
	CompletedOrders int
	CancelledOrders int
	RefundedOrders  int
}

// Orders returns the total order count used as denominator for
// cancellation and refund rates.
func (o *Observation) Orders() int {
	return o.Sales
}
