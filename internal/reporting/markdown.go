package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Price Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Products | %d |\n", r.DataSummary.TotalProducts))
	sb.WriteString(fmt.Sprintf("| Days | %d |\n", r.DataSummary.TotalDays))
	if !r.DataSummary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Date Range | %s to %s |\n",
			r.DataSummary.DateRangeStart.Format("2006-01-02"),
			r.DataSummary.DateRangeEnd.Format("2006-01-02")))
	}
	sb.WriteString(fmt.Sprintf("| Low Risk | %d |\n", r.DataSummary.LowRiskProducts))
	sb.WriteString(fmt.Sprintf("| Medium Risk | %d |\n", r.DataSummary.MediumRiskProducts))
	sb.WriteString(fmt.Sprintf("| High Risk | %d |\n", r.DataSummary.HighRiskProducts))
	sb.WriteString("\n")

	if len(r.ProductRows) > 0 {
		sb.WriteString("## Products\n\n")
		sb.WriteString("| Product | Date | Overall Risk | Level | Financial | Operational | Market | Demand | Opportunity | Price Advantage |\n")
		sb.WriteString("|---------|------|--------------|-------|-----------|-------------|--------|--------|-------------|------------------|\n")
		for _, row := range r.ProductRows {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %s | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
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
			))
		}
		sb.WriteString("\n")
	}

	if len(r.TopOpportunities) > 0 {
		sb.WriteString("## Top Opportunities\n\n")
		sb.WriteString("| Rank | Product | Opportunity | Risk Level |\n")
		sb.WriteString("|------|---------|-------------|------------|\n")
		for i, row := range r.TopOpportunities {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.4f | %s |\n",
				i+1, row.ProductID, row.MarketOpportunity, row.RiskLevel))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
