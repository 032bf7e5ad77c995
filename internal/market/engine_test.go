package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamic-price-optimizer/internal/apperr"
	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/feature"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func marketObs(productID string, date time.Time, sales int, price float64) *domain.Observation {
	return &domain.Observation{
		ProductID:          productID,
		Date:               date,
		Sales:              sales,
		Revenue:            float64(sales) * price,
		AvgOrderValue:      price,
		CompetitorPrice:    price * 1.05,
		MinCompetitorPrice: price * 0.95,
		MaxCompetitorPrice: price * 1.25,
		Views:              sales * 15,
	}
}

func TestScore_OpportunityComposite(t *testing.T) {
	o := marketObs("p1", day(1), 10, 20.0)
	features, err := feature.Transform([]*domain.Observation{o})
	require.NoError(t, err)

	records, err := NewEngine(DefaultWeights()).Score([]*domain.Observation{o}, features)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]

	wantAdvantage := (25.0 - 20.0) / 25.0
	assert.InDelta(t, wantAdvantage, r.PriceAdvantage, 1e-9)
	assert.InDelta(t, 1.0, r.OrderShare, 1e-9)
	assert.InDelta(t, 21.0/20.0, r.PriceCompetitiveness, 1e-9)

	// First row: volatility undefined, stability terms at full weight
	want := 0.30*wantAdvantage + 0.30*1.0 + 0.20*1.0 + 0.20*1.0
	assert.InDelta(t, want, r.MarketOpportunity, 1e-9)
}

func TestScore_TrendIndicatorsCopiedFromFeatures(t *testing.T) {
	observations := []*domain.Observation{
		marketObs("p1", day(1), 2, 10.0),
		marketObs("p1", day(2), 4, 12.0),
	}
	features, err := feature.Transform(observations)
	require.NoError(t, err)

	records, err := NewEngine(DefaultWeights()).Score(observations, features)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.InDelta(t, 3.0, records[1].OrdersMA7, 1e-9)
	assert.InDelta(t, 11.0, records[1].PriceMA30, 1e-9)
	assert.InDelta(t, (20.0+48.0)/2, records[1].RevenueMA14, 1e-9)
}

func TestScore_SharesAcrossProducts(t *testing.T) {
	observations := []*domain.Observation{
		marketObs("p1", day(1), 6, 20.0),
		marketObs("p2", day(1), 2, 20.0),
	}
	features, err := feature.Transform(observations)
	require.NoError(t, err)

	records, err := NewEngine(DefaultWeights()).Score(observations, features)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.InDelta(t, 0.75, records[0].OrderShare, 1e-9)
	assert.InDelta(t, 0.25, records[1].OrderShare, 1e-9)
}

func TestScore_RejectsMissingCompetitorPrice(t *testing.T) {
	o := marketObs("p1", day(1), 5, 20.0)
	o.MaxCompetitorPrice = 0
	features, err := feature.Transform([]*domain.Observation{o})
	require.NoError(t, err)

	_, err = NewEngine(DefaultWeights()).Score([]*domain.Observation{o}, features)
	require.Error(t, err)

	var dataErr *apperr.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Contains(t, err.Error(), "competitor price")
}

func TestScore_RejectsMissingFeatureVector(t *testing.T) {
	o := marketObs("p1", day(1), 5, 20.0)
	_, err := NewEngine(DefaultWeights()).Score([]*domain.Observation{o}, nil)
	require.Error(t, err)

	var dataErr *apperr.DataError
	require.ErrorAs(t, err, &dataErr)
}
