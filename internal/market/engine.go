// Package market scores per-product per-day market positioning and the
// composite market opportunity indicator. Same lifecycle as risk scoring:
// pure, idempotent, rewritable per (product_id, date).
package market

import (
	"fmt"
	"math"
	"time"

	"dynamic-price-optimizer/internal/apperr"
	"dynamic-price-optimizer/internal/domain"
)

// Engine computes MarketAnalysisRecords using a fixed weight set.
type Engine struct {
	weights Weights
}

// NewEngine creates a market engine with the given weights.
func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

type pairKey struct {
	productID string
	date      time.Time
}

// Score produces one MarketAnalysisRecord per observation. Observations and
// feature vectors pair on (product_id, date); a missing pair is a DataError.
// Undefined (NaN) volatility contributes zero, matching the risk engine.
func (e *Engine) Score(observations []*domain.Observation, features []*domain.DerivedFeatureVector) ([]*domain.MarketAnalysisRecord, error) {
	if len(observations) == 0 {
		return nil, nil
	}

	featureByKey := make(map[pairKey]*domain.DerivedFeatureVector, len(features))
	for _, f := range features {
		featureByKey[pairKey{f.ProductID, f.Date}] = f
	}

	dateOrders := make(map[time.Time]int)
	dateRevenue := make(map[time.Time]float64)
	for _, o := range observations {
		dateOrders[o.Date] += o.Orders()
		dateRevenue[o.Date] += o.Revenue
	}

	records := make([]*domain.MarketAnalysisRecord, 0, len(observations))
	for _, o := range observations {
		f, ok := featureByKey[pairKey{o.ProductID, o.Date}]
		if !ok {
			return nil, &apperr.DataError{
				Op: fmt.Sprintf("market scoring: no feature vector for product %s on %s", o.ProductID, o.Date.Format("2006-01-02")),
			}
		}
		rec, err := e.scoreOne(o, f, dateOrders[o.Date], dateRevenue[o.Date])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e *Engine) scoreOne(o *domain.Observation, f *domain.DerivedFeatureVector, totalOrders int, totalRevenue float64) (*domain.MarketAnalysisRecord, error) {
	if o.AvgOrderValue <= 0 {
		return nil, &apperr.DataError{
			Op: fmt.Sprintf("market scoring: product %s on %s has non-positive avg order value", o.ProductID, o.Date.Format("2006-01-02")),
		}
	}
	if o.MaxCompetitorPrice <= 0 {
		return nil, &apperr.DataError{
			Op: fmt.Sprintf("market scoring: product %s on %s has no competitor price", o.ProductID, o.Date.Format("2006-01-02")),
		}
	}

	priceAdvantage := (o.MaxCompetitorPrice - o.AvgOrderValue) / o.MaxCompetitorPrice

	orderShare := 0.0
	if totalOrders > 0 {
		orderShare = float64(o.Orders()) / float64(totalOrders)
	}
	revenueShare := 0.0
	if totalRevenue > 0 {
		revenueShare = o.Revenue / totalRevenue
	}

	priceVol := zeroIfNaN(f.PriceVolatility)
	demandVol := zeroIfNaN(f.DemandVolatility)

	w := e.weights
	opportunity := w.PriceAdvantage*priceAdvantage +
		w.OrderShare*orderShare +
		w.PriceStability*(1-priceVol) +
		w.DemandStability*(1-demandVol)

	return &domain.MarketAnalysisRecord{
		ProductID: o.ProductID,
		Date:      o.Date,

		DailyOrders:        o.Orders(),
		DailyRevenue:       o.Revenue,
		DailyAvgOrderValue: o.AvgOrderValue,

		PriceCompetitiveness: o.CompetitorPrice / o.AvgOrderValue,
		PriceAdvantage:       priceAdvantage,
		OrderShare:           orderShare,
		RevenueShare:         revenueShare,

		OrdersMA7:   f.SalesMA7,
		OrdersMA14:  f.SalesMA14,
		OrdersMA30:  f.SalesMA30,
		RevenueMA7:  f.RevenueMA7,
		RevenueMA14: f.RevenueMA14,
		RevenueMA30: f.RevenueMA30,
		PriceMA7:    f.PriceMA7,
		PriceMA14:   f.PriceMA14,
		PriceMA30:   f.PriceMA30,

		PriceVolatility:  priceVol,
		DemandVolatility: demandVol,

		MarketOpportunity: opportunity,
	}, nil
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
