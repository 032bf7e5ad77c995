// Package reporting renders analysis results as Markdown and CSV.
package reporting

import "time"

// Report summarizes one analysis run across all products.
type Report struct {
	GeneratedAt time.Time

	DataSummary DataSummary

	// Per-product rows, sorted by product_id.
	ProductRows []ProductRow

	// Products sorted by market opportunity, best first.
	TopOpportunities []OpportunityRow
}

// DataSummary describes the analyzed data set.
type DataSummary struct {
	TotalProducts  int
	TotalDays      int
	DateRangeStart time.Time
	DateRangeEnd   time.Time

	LowRiskProducts    int
	MediumRiskProducts int
	HighRiskProducts   int
}

// ProductRow is one product's latest-day analysis.
type ProductRow struct {
	ProductID string
	Date      time.Time

	OverallRisk     float64
	RiskLevel       string
	FinancialRisk   float64
	OperationalRisk float64
	MarketRisk      float64
	DemandRisk      float64

	MarketOpportunity float64
	PriceAdvantage    float64
	OrderShare        float64
}

// OpportunityRow ranks a product by market opportunity.
type OpportunityRow struct {
	ProductID         string
	MarketOpportunity float64
	RiskLevel         string
}
