package feature

import "time"

// TrainingFeatureNames is the ordered column schema the model is fit against
// and the predictor feeds back in. Restricted to features computable from a
// single observation, so one prediction record can always reconstruct the
// exact training-time vector. Order is part of the model artifact contract.
var TrainingFeatureNames = []string{
	"day_of_week",
	"month",
	"day_of_month",
	"is_weekend",
	"price",
	"competitor_price",
	"price_difference",
	"price_ratio",
	"sales",
	"views",
	"conversion_rate",
	"stock_level",
	"max_stock",
	"stock_ratio",
}

// Record holds the raw fields needed to build one training or prediction row.
type Record struct {
	Date            time.Time
	Price           float64
	CompetitorPrice float64
	Sales           int
	Views           int
	StockLevel      int
	MaxStock        int
}

// BuildRow computes the ordered feature values for one record. Output order
// matches TrainingFeatureNames exactly; both the trainer and the predictor
// go through this function.
func BuildRow(r Record) []float64 {
	maxStock := r.MaxStock
	if maxStock < 1 {
		maxStock = 1
	}
	return []float64{
		float64(DayOfWeek(r.Date)),
		float64(int(r.Date.Month())),
		float64(r.Date.Day()),
		float64(isWeekend(r.Date)),
		r.Price,
		r.CompetitorPrice,
		r.Price - r.CompetitorPrice,
		r.Price / r.CompetitorPrice,
		float64(r.Sales),
		float64(r.Views),
		ConversionRate(r.Sales, r.Views),
		float64(r.StockLevel),
		float64(r.MaxStock),
		float64(r.StockLevel) / float64(maxStock),
	}
}
