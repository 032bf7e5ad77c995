package risk

// Weights holds the linear-combination weights for the four risk composites
// and the overall score. Passed explicitly into the engine so tests can
// substitute alternate sets; production always uses DefaultWeights.
type Weights struct {
	Financial   FinancialWeights
	Operational OperationalWeights
	Market      MarketWeights
	Demand      DemandWeights
	Overall     OverallWeights
}

// FinancialWeights combines margin, volatility and order-outcome terms.
type FinancialWeights struct {
	Margin                    float64 // applied to (1 - profit_margin)
	PriceVolatility           float64
	CompetitorPriceVolatility float64
	CancellationRate          float64
	RefundRate                float64
}

// OperationalWeights combines stock and order-outcome terms.
type OperationalWeights struct {
	StockRisk        float64
	CancellationRate float64
	RefundRate       float64
}

// MarketWeights combines competitive-position terms, each applied to
// (1 - metric).
type MarketWeights struct {
	PriceCompetitiveness float64
	MarketShare          float64
	RevenueShare         float64
}

// DemandWeights combines demand-stability terms.
type DemandWeights struct {
	DemandVolatility float64
	Seasonality      float64
}

// OverallWeights combines the four composites into the overall score.
type OverallWeights struct {
	Financial   float64
	Operational float64
	Market      float64
	Demand      float64
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		Financial: FinancialWeights{
			Margin:                    0.30,
			PriceVolatility:           0.20,
			CompetitorPriceVolatility: 0.20,
			CancellationRate:          0.15,
			RefundRate:                0.15,
		},
		Operational: OperationalWeights{
			StockRisk:        0.40,
			CancellationRate: 0.30,
			RefundRate:       0.30,
		},
		Market: MarketWeights{
			PriceCompetitiveness: 0.30,
			MarketShare:          0.30,
			RevenueShare:         0.40,
		},
		Demand: DemandWeights{
			DemandVolatility: 0.50,
			Seasonality:      0.50,
		},
		Overall: OverallWeights{
			Financial:   0.30,
			Operational: 0.20,
			Market:      0.30,
			Demand:      0.20,
		},
	}
}
