package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders per-product rows as a CSV string.
func RenderCSV(rows []ProductRow) string {
	var sb strings.Builder

	sb.WriteString("product_id,date,overall_risk,risk_level,")
	sb.WriteString("financial_risk,operational_risk,market_risk,demand_risk,")
	sb.WriteString("market_opportunity,price_advantage,order_share\n")

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			row.ProductID,
			row.Date.Format("2006-01-02"),
			row.OverallRisk,
			row.RiskLevel,
			row.FinancialRisk,
			row.OperationalRisk,
			row.MarketRisk,
			row.DemandRisk,
			row.MarketOpportunity,
			row.PriceAdvantage,
			row.OrderShare,
		))
	}

	return sb.String()
}
