package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamic-price-optimizer/internal/domain"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func testRecords() ([]*domain.RiskScoreRecord, []*domain.MarketAnalysisRecord) {
	riskRecords := []*domain.RiskScoreRecord{
		{ProductID: "sku-1", Date: day("2024-03-01"), OverallRisk: 0.2, RiskLevel: domain.RiskLevelLow},
		{ProductID: "sku-1", Date: day("2024-03-02"), OverallRisk: 0.5, RiskLevel: domain.RiskLevelMedium},
		{ProductID: "sku-2", Date: day("2024-03-02"), OverallRisk: 0.8, RiskLevel: domain.RiskLevelHigh},
	}
	marketRecords := []*domain.MarketAnalysisRecord{
		{ProductID: "sku-1", Date: day("2024-03-02"), MarketOpportunity: 0.4, PriceAdvantage: 0.1},
		{ProductID: "sku-2", Date: day("2024-03-02"), MarketOpportunity: 0.7, PriceAdvantage: 0.3},
	}
	return riskRecords, marketRecords
}

func TestBuild_LatestDayPerProduct(t *testing.T) {
	riskRecords, marketRecords := testRecords()
	r := Build(riskRecords, marketRecords)

	assert.Equal(t, 2, r.DataSummary.TotalProducts)
	assert.Equal(t, 2, r.DataSummary.TotalDays)
	assert.True(t, day("2024-03-01").Equal(r.DataSummary.DateRangeStart))
	assert.True(t, day("2024-03-02").Equal(r.DataSummary.DateRangeEnd))

	// sku-1 is summarized by its latest day (medium), not its first (low).
	assert.Equal(t, 0, r.DataSummary.LowRiskProducts)
	assert.Equal(t, 1, r.DataSummary.MediumRiskProducts)
	assert.Equal(t, 1, r.DataSummary.HighRiskProducts)

	require.Len(t, r.ProductRows, 2)
	assert.Equal(t, "sku-1", r.ProductRows[0].ProductID)
	assert.InDelta(t, 0.5, r.ProductRows[0].OverallRisk, 1e-9)
	assert.InDelta(t, 0.4, r.ProductRows[0].MarketOpportunity, 1e-9)
}

func TestBuild_OpportunityRanking(t *testing.T) {
	riskRecords, marketRecords := testRecords()
	r := Build(riskRecords, marketRecords)

	require.Len(t, r.TopOpportunities, 2)
	assert.Equal(t, "sku-2", r.TopOpportunities[0].ProductID)
	assert.Equal(t, "sku-1", r.TopOpportunities[1].ProductID)
}

func TestRenderMarkdown(t *testing.T) {
	riskRecords, marketRecords := testRecords()
	out := RenderMarkdown(Build(riskRecords, marketRecords))

	assert.Contains(t, out, "# Price Analysis Report")
	assert.Contains(t, out, "| Products | 2 |")
	assert.Contains(t, out, "| sku-1 | 2024-03-02 |")
	assert.Contains(t, out, "## Top Opportunities")
	assert.Contains(t, out, "| 1 | sku-2 |")
}

func TestRenderCSV(t *testing.T) {
	riskRecords, marketRecords := testRecords()
	out := RenderCSV(Build(riskRecords, marketRecords).ProductRows)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "product_id,date,overall_risk"))
	assert.True(t, strings.HasPrefix(lines[1], "sku-1,2024-03-02,0.500000,medium"))
}

func TestBuild_Empty(t *testing.T) {
	r := Build(nil, nil)
	assert.Zero(t, r.DataSummary.TotalProducts)
	assert.Empty(t, r.ProductRows)

	out := RenderMarkdown(r)
	assert.Contains(t, out, "| Products | 0 |")
}
