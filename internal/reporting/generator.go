package reporting

import (
	"sort"
	"time"

	"dynamic-price-optimizer/internal/domain"
)

// Build assembles a Report from risk and market records. Each product is
// summarized by its most recent day; the risk distribution counts products,
// not days.
func Build(riskRecords []*domain.RiskScoreRecord, marketRecords []*domain.MarketAnalysisRecord) *Report {
	r := &Report{GeneratedAt: time.Now().UTC()}

	latestRisk := latestByProduct(riskRecords, func(rec *domain.RiskScoreRecord) (string, time.Time) {
		return rec.ProductID, rec.Date
	})
	latestMarket := latestByProduct(marketRecords, func(rec *domain.MarketAnalysisRecord) (string, time.Time) {
		return rec.ProductID, rec.Date
	})

	days := make(map[time.Time]struct{})
	for _, rec := range riskRecords {
		days[rec.Date] = struct{}{}
		if r.DataSummary.DateRangeStart.IsZero() || rec.Date.Before(r.DataSummary.DateRangeStart) {
			r.DataSummary.DateRangeStart = rec.Date
		}
		if rec.Date.After(r.DataSummary.DateRangeEnd) {
			r.DataSummary.DateRangeEnd = rec.Date
		}
	}
	r.DataSummary.TotalDays = len(days)
	r.DataSummary.TotalProducts = len(latestRisk)

	productIDs := make([]string, 0, len(latestRisk))
	for id := range latestRisk {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, id := range productIDs {
		risk := latestRisk[id]

		switch risk.RiskLevel {
		case domain.RiskLevelLow:
			r.DataSummary.LowRiskProducts++
		case domain.RiskLevelMedium:
			r.DataSummary.MediumRiskProducts++
		case domain.RiskLevelHigh:
			r.DataSummary.HighRiskProducts++
		}

		row := ProductRow{
			ProductID:       id,
			Date:            risk.Date,
			OverallRisk:     risk.OverallRisk,
			RiskLevel:       string(risk.RiskLevel),
			FinancialRisk:   risk.FinancialRisk,
			OperationalRisk: risk.OperationalRisk,
			MarketRisk:      risk.MarketRisk,
			DemandRisk:      risk.DemandRisk,
		}
		if market, ok := latestMarket[id]; ok {
			row.MarketOpportunity = market.MarketOpportunity
			row.PriceAdvantage = market.PriceAdvantage
			row.OrderShare = market.OrderShare

			r.TopOpportunities = append(r.TopOpportunities, OpportunityRow{
				ProductID:         id,
				MarketOpportunity: market.MarketOpportunity,
				RiskLevel:         string(risk.RiskLevel),
			})
		}
		r.ProductRows = append(r.ProductRows, row)
	}

	sort.SliceStable(r.TopOpportunities, func(i, j int) bool {
		return r.TopOpportunities[i].MarketOpportunity > r.TopOpportunities[j].MarketOpportunity
	})

	return r
}

// latestByProduct keeps the most recent record per product.
func latestByProduct[T any](records []T, key func(T) (string, time.Time)) map[string]T {
	latest := make(map[string]T)
	dates := make(map[string]time.Time)
	for _, rec := range records {
		id, date := key(rec)
		if prev, ok := dates[id]; !ok || date.After(prev) {
			latest[id] = rec
			dates[id] = date
		}
	}
	return latest
}
