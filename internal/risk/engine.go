// Package risk scores per-product per-day risk from observations and their
// derived features. Scoring is idempotent: the same inputs always produce
// the same records, and records replace earlier rows for the same key.
package risk

import (
	"fmt"
	"math"
	"time"

	"dynamic-price-optimizer/internal/apperr"
	"dynamic-price-optimizer/internal/domain"
)

// Engine computes RiskScoreRecords using a fixed weight set.
type Engine struct {
	weights Weights
}

// NewEngine creates a risk engine with the given weights.
func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

type pairKey struct {
	productID string
	date      time.Time
}

// Score produces one RiskScoreRecord per observation. Every observation must
// have a matching feature vector on (product_id, date); a missing match is a
// DataError and nothing is scored. Observations with zero orders are rejected
// rather than scored with undefined rates.
//
// Rolling volatility and seasonality are NaN on a product's first rows
// (no variance observed yet); those terms contribute zero to the composites
// so the first day of a product's history is still scorable.
func (e *Engine) Score(observations []*domain.Observation, features []*domain.DerivedFeatureVector) ([]*domain.RiskScoreRecord, error) {
	if len(observations) == 0 {
		return nil, nil
	}

	featureByKey := make(map[pairKey]*domain.DerivedFeatureVector, len(features))
	for _, f := range features {
		featureByKey[pairKey{f.ProductID, f.Date}] = f
	}

	// Per-product historical max stock, per-date order and revenue totals.
	maxStock := make(map[string]int)
	dateOrders := make(map[time.Time]int)
	dateRevenue := make(map[time.Time]float64)
	for _, o := range observations {
		if o.StockLevel > maxStock[o.ProductID] {
			maxStock[o.ProductID] = o.StockLevel
		}
		dateOrders[o.Date] += o.Orders()
		dateRevenue[o.Date] += o.Revenue
	}

	records := make([]*domain.RiskScoreRecord, 0, len(observations))
	for _, o := range observations {
		f, ok := featureByKey[pairKey{o.ProductID, o.Date}]
		if !ok {
			return nil, &apperr.DataError{
				Op: fmt.Sprintf("risk scoring: no feature vector for product %s on %s", o.ProductID, o.Date.Format("2006-01-02")),
			}
		}
		rec, err := e.scoreOne(o, f, maxStock[o.ProductID], dateOrders[o.Date], dateRevenue[o.Date])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e *Engine) scoreOne(o *domain.Observation, f *domain.DerivedFeatureVector, productMaxStock, totalOrders int, totalRevenue float64) (*domain.RiskScoreRecord, error) {
	if o.Orders() <= 0 {
		return nil, &apperr.DataError{
			Op: fmt.Sprintf("risk scoring: product %s on %s has no orders", o.ProductID, o.Date.Format("2006-01-02")),
		}
	}
	if o.AvgOrderValue <= 0 {
		return nil, &apperr.DataError{
			Op: fmt.Sprintf("risk scoring: product %s on %s has non-positive avg order value", o.ProductID, o.Date.Format("2006-01-02")),
		}
	}
	if o.Cost <= 0 {
		return nil, &apperr.DataError{
			Op: fmt.Sprintf("risk scoring: product %s on %s has no cost", o.ProductID, o.Date.Format("2006-01-02")),
		}
	}

	orders := float64(o.Orders())

	profitMargin := (o.AvgOrderValue - o.Cost) / o.AvgOrderValue
	cancellationRate := float64(o.CancelledOrders) / orders
	refundRate := float64(o.RefundedOrders) / orders

	stockRisk := 0.0
	if productMaxStock > 0 {
		stockRisk = 1 - float64(o.StockLevel)/float64(productMaxStock)
	}

	priceCompetitiveness := o.AvgOrderValue / o.CompetitorPrice

	marketShare := 0.0
	if totalOrders > 0 {
		marketShare = orders / float64(totalOrders)
	}
	revenueShare := 0.0
	if totalRevenue > 0 {
		revenueShare = o.Revenue / totalRevenue
	}

	priceVol := zeroIfNaN(f.PriceVolatility)
	competitorVol := zeroIfNaN(f.CompetitorPriceVolatility)
	demandVol := zeroIfNaN(f.DemandVolatility)
	seasonality := zeroIfNaN(f.Seasonality)

	w := e.weights
	financial := w.Financial.Margin*(1-profitMargin) +
		w.Financial.PriceVolatility*priceVol +
		w.Financial.CompetitorPriceVolatility*competitorVol +
		w.Financial.CancellationRate*cancellationRate +
		w.Financial.RefundRate*refundRate

	operational := w.Operational.StockRisk*stockRisk +
		w.Operational.CancellationRate*cancellationRate +
		w.Operational.RefundRate*refundRate

	market := w.Market.PriceCompetitiveness*(1-priceCompetitiveness) +
		w.Market.MarketShare*(1-marketShare) +
		w.Market.RevenueShare*(1-revenueShare)

	demand := w.Demand.DemandVolatility*demandVol +
		w.Demand.Seasonality*seasonality

	overall := w.Overall.Financial*financial +
		w.Overall.Operational*operational +
		w.Overall.Market*market +
		w.Overall.Demand*demand

	return &domain.RiskScoreRecord{
		ProductID: o.ProductID,
		Date:      o.Date,

		ProfitMargin:              profitMargin,
		PriceVolatility:           priceVol,
		CompetitorPriceVolatility: competitorVol,
		StockRisk:                 stockRisk,
		OrderCancellationRate:     cancellationRate,
		OrderRefundRate:           refundRate,
		PriceCompetitiveness:      priceCompetitiveness,
		MarketShare:               marketShare,
		RevenueShare:              revenueShare,
		DemandVolatility:          demandVol,
		Seasonality:               seasonality,

		FinancialRisk:   financial,
		OperationalRisk: operational,
		MarketRisk:      market,
		DemandRisk:      demand,
		OverallRisk:     overall,

		RiskLevel: LevelFor(overall),
	}, nil
}

// LevelFor buckets an overall risk score. Boundaries are inclusive on the
// high side: (-inf, 0.3] low, (0.3, 0.6] medium, (0.6, +inf) high. The outer
// buckets extend past the nominal [0,1] range because unclamped sub-metrics
// (shares, competitiveness) can push the score outside it.
func LevelFor(overall float64) domain.RiskLevel {
	switch {
	case overall <= 0.3:
		return domain.RiskLevelLow
	case overall <= 0.6:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelHigh
	}
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
