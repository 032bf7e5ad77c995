// Package feature implements the feature engineering transform: a pure
// function from raw observations (plus per-product trailing history) to
// derived feature vectors. The batch path used for scoring and the
// single-record path used for prediction share the same named fields, so the
// trainer and predictor always see an identical ordered column schema.
package feature

import (
	"sort"
	"time"

	"dynamic-price-optimizer/internal/apperr"
	"dynamic-price-optimizer/internal/domain"
)

// Rolling window sizes in rows (one row per day per product).
const (
	WindowShort       = 7
	WindowMid         = 14
	WindowLong        = 30
	WindowVolatility  = 30
	WindowSeasonality = 90
)

// Transform converts observations into one DerivedFeatureVector per row.
// Rolling statistics are computed independently per product, ordered by
// date. Output preserves (product, date) ordering grouped by product.
//
// Price ratio divides by competitor price; callers guarantee
// competitor_price > 0 upstream. Conversion rate uses max(1, views) as
// denominator, a documented approximation that keeps it defined at views=0.
func Transform(observations []*domain.Observation) ([]*domain.DerivedFeatureVector, error) {
	if len(observations) == 0 {
		return nil, nil
	}

	for _, o := range observations {
		if o == nil || o.ProductID == "" {
			return nil, &apperr.DataError{Op: "feature transform: observation missing product_id"}
		}
		if o.Date.IsZero() {
			return nil, &apperr.DataError{Op: "feature transform: observation missing date"}
		}
	}

	// Group by product, preserving product order of first appearance.
	var productOrder []string
	byProduct := make(map[string][]*domain.Observation)
	for _, o := range observations {
		if _, seen := byProduct[o.ProductID]; !seen {
			productOrder = append(productOrder, o.ProductID)
		}
		byProduct[o.ProductID] = append(byProduct[o.ProductID], o)
	}

	result := make([]*domain.DerivedFeatureVector, 0, len(observations))
	for _, productID := range productOrder {
		series := byProduct[productID]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})
		result = append(result, transformSeries(series)...)
	}
	return result, nil
}

// transformSeries computes feature vectors for one product's date-ordered series.
func transformSeries(series []*domain.Observation) []*domain.DerivedFeatureVector {
	n := len(series)
	sales := make([]float64, n)
	revenue := make([]float64, n)
	price := make([]float64, n)
	competitorPrice := make([]float64, n)
	for i, o := range series {
		sales[i] = float64(o.Sales)
		revenue[i] = o.Revenue
		price[i] = o.AvgOrderValue
		competitorPrice[i] = o.CompetitorPrice
	}

	out := make([]*domain.DerivedFeatureVector, n)
	for i, o := range series {
		v := &domain.DerivedFeatureVector{
			ProductID: o.ProductID,
			Date:      o.Date,

			DayOfWeek:  DayOfWeek(o.Date),
			Month:      int(o.Date.Month()),
			DayOfMonth: o.Date.Day(),
			IsWeekend:  isWeekend(o.Date),

			Price:           o.AvgOrderValue,
			CompetitorPrice: o.CompetitorPrice,
			PriceDifference: o.AvgOrderValue - o.CompetitorPrice,
			PriceRatio:      o.AvgOrderValue / o.CompetitorPrice,

			Sales:          o.Sales,
			Views:          o.Views,
			ConversionRate: ConversionRate(o.Sales, o.Views),

			SalesMA7:    rollingMean(sales, i, WindowShort),
			SalesMA14:   rollingMean(sales, i, WindowMid),
			SalesMA30:   rollingMean(sales, i, WindowLong),
			RevenueMA7:  rollingMean(revenue, i, WindowShort),
			RevenueMA14: rollingMean(revenue, i, WindowMid),
			RevenueMA30: rollingMean(revenue, i, WindowLong),
			PriceMA7:    rollingMean(price, i, WindowShort),
			PriceMA14:   rollingMean(price, i, WindowMid),
			PriceMA30:   rollingMean(price, i, WindowLong),

			PriceVolatility:           rollingStd(price, i, WindowVolatility),
			CompetitorPriceVolatility: rollingStd(competitorPrice, i, WindowVolatility),
			DemandVolatility:          rollingStd(sales, i, WindowVolatility),

			Seasonality: rollingStd(sales, i, WindowSeasonality) / rollingMean(sales, i, WindowSeasonality),
		}
		out[i] = v
	}
	return out
}

// DayOfWeek returns the weekday with Monday=0 .. Sunday=6.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func isWeekend(t time.Time) int {
	if DayOfWeek(t) >= 5 {
		return 1
	}
	return 0
}

// ConversionRate is sales / max(1, views). The capped denominator keeps the
// rate defined at views=0 at the cost of not being a true rate for very
// small view counts.
func ConversionRate(sales, views int) float64 {
	denom := views
	if denom < 1 {
		denom = 1
	}
	return float64(sales) / float64(denom)
}
