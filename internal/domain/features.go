package domain

import "time"

// DerivedFeatureVector represents engineered features for one (product, day).
// Corresponds to derived_features table in ClickHouse. Built deterministically
// from an Observation plus the product's trailing history.
//
// Rolling statistics follow min_periods=1 semantics: a moving average over a
// single observation equals that observation, while a standard deviation over
// a single observation is NaN (one sample has no variance). NaN values are
// carried as-is, never smoothed away.
type DerivedFeatureVector struct {
	ProductID string
	Date      time.Time

	// Calendar features, pure functions of Date
	DayOfWeek  int // Monday=0 .. Sunday=6
	Month      int // 1..12
	DayOfMonth int // 1..31
	IsWeekend  int // 1 if Saturday or Sunday

	// Price features
	Price           float64 // effective selling price (avg order value)
	CompetitorPrice float64
	PriceDifference float64 // price - competitor_price
	PriceRatio      float64 // price / competitor_price, competitor_price > 0 is a caller precondition

	// Demand features
	Sales          int
	Views          int
	ConversionRate float64 // sales / max(1, views)

	// Rolling moving averages, trailing windows of 7/14/30 rows per product
	SalesMA7    float64
	SalesMA14   float64
	SalesMA30   float64
	RevenueMA7  float64
	RevenueMA14 float64
	RevenueMA30 float64
	PriceMA7    float64
	PriceMA14   float64
	PriceMA30   float64

	// Rolling volatility (sample std over trailing 30 rows, NaN for first row)
	PriceVolatility           float64
	CompetitorPriceVolatility float64
	DemandVolatility          float64

	// Seasonality ratio: rolling std / rolling mean over trailing 90 rows
	Seasonality float64
}
