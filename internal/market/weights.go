package market

// Weights holds the linear-combination weights for the market opportunity
// composite. Injected into the engine; production uses DefaultWeights.
type Weights struct {
	PriceAdvantage   float64
	OrderShare       float64
	PriceStability   float64 // applied to (1 - price_volatility)
	DemandStability  float64 // applied to (1 - demand_volatility)
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		PriceAdvantage:  0.30,
		OrderShare:      0.30,
		PriceStability:  0.20,
		DemandStability: 0.20,
	}
}
