package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/bistro-cli/internal/model"
)

// healthyRecord is a fully-populated month for a mid-size full-service
// restaurant, used across the KPI and scoring tests.
func healthyRecord() model.SurveyRecord {
	return model.SurveyRecord{
		ID:                 "rec-healthy",
		MonthlyRevenue:     300_000,
		FoodCost:           96_000,
		LaborCost:          78_000,
		RentCost:           45_000,
		MarketingCost:      18_000,
		UtilityCost:        9_000,
		OnlineRevenue:      90_000,
		StoreArea:          150,
		Seats:              60,
		DailyCustomers:     180,
		TotalCustomers:     4200,
		RepeatCustomers:    1470,
		AverageRating:      4.3,
		TotalReviews:       210,
		BadReviews:         12,
		ServiceBadReviews:  7,
		TasteBadReviews:    5,
		ShortVideoCount:    8,
		LiveStreamCount:    3,
		BusinessType:       model.BusinessFullService,
		BusinessCircle:     model.CircleSecondary,
		DecorationLevel:    model.DecorStandard,
		MarketingSituation: model.MarketingPartTime,
	}
}

func deriveHealthy(t *testing.T) model.KPISet {
	t.Helper()
	cfg := DefaultConfig()
	rec := Sanitize(healthyRecord())
	return Derive(rec, cfg.ResolveBenchmark(rec.BusinessType), cfg)
}

func TestDeriveCostStructure(t *testing.T) {
	k := deriveHealthy(t)

	assert.InDelta(t, 0.32, k.FoodCostRatio, 1e-9)
	assert.InDelta(t, 0.26, k.LaborCostRatio, 1e-9)
	assert.InDelta(t, 0.15, k.RentCostRatio, 1e-9)
	assert.InDelta(t, 0.06, k.MarketingCostRatio, 1e-9)
	assert.InDelta(t, 0.03, k.UtilityCostRatio, 1e-9)
	assert.InDelta(t, 0.82, k.CostRate, 1e-9)
	assert.InDelta(t, 0.68, k.GrossMargin, 1e-9)
	assert.InDelta(t, 0.18, k.NetMargin, 1e-9)
}

func TestDeriveOperations(t *testing.T) {
	k := deriveHealthy(t)

	assert.InDelta(t, 3.0, k.TableTurnover, 1e-9)
	assert.InDelta(t, 2000, k.RevenuePerSqm, 1e-9)
	assert.InDelta(t, 78_000.0/4500, k.EstimatedEmployees, 1e-9)
	assert.InDelta(t, 300_000/(78_000.0/4500), k.RevenuePerEmployee, 1e-6)
	assert.InDelta(t, 300_000.0/(180*30), k.AverageSpend, 1e-9)
	// Full-service benchmark spend is 75.
	assert.InDelta(t, (75-300_000.0/(180*30))/75, k.PriceVolatility, 1e-9)
}

func TestDeriveCustomerAndReputation(t *testing.T) {
	k := deriveHealthy(t)

	assert.InDelta(t, 0.35, k.RepeatRatio, 1e-9)
	assert.InDelta(t, 0.30, k.OnlineRatio, 1e-9)
	assert.InDelta(t, 86, k.ReviewScore, 1e-9)
	assert.InDelta(t, 12.0/210, k.NegativeReviewRate, 1e-9)
	assert.InDelta(t, 7.0/210, k.ServiceBadRate, 1e-9)
	assert.InDelta(t, 5.0/210, k.TasteBadRate, 1e-9)
}

func TestDeriveMarketing(t *testing.T) {
	k := deriveHealthy(t)

	assert.InDelta(t, 5.0, k.MarketingROI, 1e-9)
	assert.InDelta(t, 0.05, k.InteractionRate, 1e-9)
	// 8 videos * 2 + 3 livestreams * 5 + part-time team 15.
	assert.InDelta(t, 46, k.ContentMarketingIndex, 1e-9)
	// 3 livestreams * 8 + part-time 10.
	assert.InDelta(t, 34, k.KOLQualityScore, 1e-9)
}

func TestDeriveLocationMatch(t *testing.T) {
	k := deriveHealthy(t)
	// secondary 30 + standard 20 + area component capped at 30.
	assert.InDelta(t, 80, k.LocationMatchScore, 1e-9)
}

func TestDeriveBreakEven(t *testing.T) {
	k := deriveHealthy(t)
	be := k.BreakEven

	assert.InDelta(t, 104_100, be.FixedCost, 1e-6) // rent + 70% labor + 50% utility
	assert.InDelta(t, 141_900, be.VariableCost, 1e-6)
	assert.InDelta(t, 0.473, be.VariableCostRatio, 1e-9)
	assert.InDelta(t, 0.527, be.ContributionMargin, 1e-9)
	assert.InDelta(t, 104_100/0.527, be.BreakEvenRevenue, 1e-6)
	assert.Greater(t, be.BreakEvenCustomers, 0.0)
	assert.InDelta(t, (300_000-104_100/0.527)/300_000, be.SafetyMargin, 1e-9)
}

func TestDeriveLifetimeValue(t *testing.T) {
	k := deriveHealthy(t)
	lv := k.Lifetime

	assert.InDelta(t, 1.7, lv.PurchaseFrequency, 1e-9) // 1 + 2*0.35
	assert.InDelta(t, 0.65, lv.AnnualChurnRate, 1e-9)
	assert.InDelta(t, 12/0.65, lv.LifespanMonths, 1e-9)
	assert.InDelta(t, k.AverageSpend*1.7*(12/0.65)*0.68, lv.Value, 1e-6)
}

func TestDeriveScoresBounded(t *testing.T) {
	k := deriveHealthy(t)

	for name, v := range map[string]float64{
		"churn_risk":      k.ChurnRiskScore,
		"competitiveness": k.Competitiveness,
		"radar_overall":   k.RiskRadar.Overall,
		"radar_profit":    k.RiskRadar.Profit,
		"radar_market":    k.RiskRadar.Market,
		"expansion":       k.Expansion.Overall,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
}

func TestDeriveZeroRevenue(t *testing.T) {
	rec := healthyRecord()
	rec.MonthlyRevenue = 0
	rec.OnlineRevenue = 0
	cfg := DefaultConfig()
	sanitized := Sanitize(rec)

	k := Derive(sanitized, cfg.ResolveBenchmark(sanitized.BusinessType), cfg)

	// Every revenue-denominated ratio resolves to 0, no fault.
	assert.Zero(t, k.FoodCostRatio)
	assert.Zero(t, k.CostRate)
	assert.Zero(t, k.GrossMargin)
	assert.Zero(t, k.NetMargin)
	assert.Zero(t, k.OnlineRatio)
	assert.Zero(t, k.RevenuePerSqm)
	assert.Zero(t, k.AverageSpend)
}

func TestDeriveIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	rec := Sanitize(healthyRecord())
	bench := cfg.ResolveBenchmark(rec.BusinessType)

	first := Derive(rec, bench, cfg)
	second := Derive(rec, bench, cfg)
	require.Equal(t, first, second)
}

func TestRiskRadarWeightsSum(t *testing.T) {
	w := riskRadarWeights
	sum := w.Profit + w.CashFlow + w.Cost + w.Customer +
		w.Competition + w.Reputation + w.Staffing + w.Market
	assert.InDelta(t, 1.0, sum, 1e-9)
}
