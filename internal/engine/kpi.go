package engine

import (
	"math"

	"github.com/tablewise/bistro-cli/internal/model"
)

// Derive computes the full KPI set for one sanitized record against its
// benchmark. It is a pure function: later metrics may read earlier ones
// but nothing is mutated after it returns, and recomputing for an
// unchanged record yields identical values.
func Derive(r model.SurveyRecord, bench Benchmark, cfg Config) model.KPISet {
	var k model.KPISet

	rev := r.MonthlyRevenue

	// Cost structure.
	k.FoodCostRatio = safeDiv(r.FoodCost, rev)
	k.LaborCostRatio = safeDiv(r.LaborCost, rev)
	k.RentCostRatio = safeDiv(r.RentCost, rev)
	k.MarketingCostRatio = safeDiv(r.MarketingCost, rev)
	k.UtilityCostRatio = safeDiv(r.UtilityCost, rev)
	totalCost := r.FoodCost + r.LaborCost + r.RentCost + r.MarketingCost + r.UtilityCost
	k.CostRate = safeDiv(totalCost, rev)
	k.GrossMargin = safeDiv(rev-r.FoodCost, rev)
	k.NetMargin = safeDiv(rev-totalCost, rev)

	// Operations. Seats, area, and customer counts were floored to 1 by
	// the guard, so these divisions are safe.
	k.TableTurnover = float64(r.DailyCustomers) / float64(r.Seats)
	k.RevenuePerSqm = rev / r.StoreArea
	k.EstimatedEmployees = math.Max(1, r.LaborCost/cfg.AssumedMonthlyWage)
	k.RevenuePerEmployee = rev / k.EstimatedEmployees
	k.AverageSpend = rev / (float64(r.DailyCustomers) * float64(cfg.OperatingDays))
	k.PriceVolatility = spendDeviation(k.AverageSpend, bench.AverageSpend)

	// Customers.
	k.RepeatRatio = float64(r.RepeatCustomers) / float64(r.TotalCustomers)
	k.OnlineRatio = safeDiv(r.OnlineRevenue, rev)

	// Reputation.
	k.ReviewScore = r.AverageRating / 5 * 100
	k.NegativeReviewRate = safeDiv(float64(r.BadReviews), float64(r.TotalReviews))
	k.ServiceBadRate = safeDiv(float64(r.ServiceBadReviews), float64(r.TotalReviews))
	k.TasteBadRate = safeDiv(float64(r.TasteBadReviews), float64(r.TotalReviews))

	// Marketing.
	k.MarketingROI = safeDiv(r.OnlineRevenue, r.MarketingCost)
	k.InteractionRate = safeDiv(float64(r.TotalReviews), float64(r.TotalCustomers))
	k.ContentMarketingIndex = contentMarketingIndex(r)
	k.KOLQualityScore = kolQualityScore(r)

	// Location.
	k.LocationMatchScore = locationMatch(r, k.RevenuePerSqm, bench)

	// Sub-models, in dependency order.
	k.BreakEven = breakEven(r, k.AverageSpend)
	k.Lifetime = lifetimeValue(k)
	k.ChurnRiskScore = churnRisk(r, k)
	k.Competitiveness = competitiveness(k, bench)
	k.RiskRadar = riskRadar(k)
	k.Expansion = expansionReadiness(r, k, bench)

	return k
}

// spendDeviation is the price-volatility proxy: relative deviation of
// the observed average spend from the category benchmark, capped at 1.
// No per-transaction price history exists, so this stands in for true
// volatility.
func spendDeviation(spend, benchSpend float64) float64 {
	if benchSpend <= 0 {
		return 0
	}
	return math.Min(1, math.Abs(spend-benchSpend)/benchSpend)
}

// contentMarketingIndex blends short-video and livestream activity with
// the marketing team setup into a 0-100 index.
func contentMarketingIndex(r model.SurveyRecord) float64 {
	idx := float64(r.ShortVideoCount)*2 + float64(r.LiveStreamCount)*5 + r.MarketingSituation.Score()
	return math.Min(100, idx)
}

// kolQualityScore rates influencer collaboration quality from livestream
// volume and whether a dedicated team runs it.
func kolQualityScore(r model.SurveyRecord) float64 {
	score := float64(r.LiveStreamCount) * 8
	switch r.MarketingSituation {
	case model.MarketingProfessional:
		score += 20
	case model.MarketingPartTime:
		score += 10
	}
	return math.Min(100, score)
}

// locationMatch scores how well the footprint matches its location:
// circle tier + decor tier + realized revenue per m² against benchmark.
func locationMatch(r model.SurveyRecord, revPerSqm float64, bench Benchmark) float64 {
	area := 30 * math.Min(1, safeDiv(revPerSqm, bench.RevenuePerSqm))
	return r.BusinessCircle.Score() + r.DecorationLevel.Score() + area
}

// breakEven splits costs into fixed and variable and derives the
// break-even point. Labor and utilities are split 70/30 and 50/50;
// rent is fully fixed, food and marketing fully variable.
func breakEven(r model.SurveyRecord, avgSpend float64) model.BreakEven {
	be := model.BreakEven{
		FixedCost:    r.RentCost + r.LaborCost*0.7 + r.UtilityCost*0.5,
		VariableCost: r.FoodCost + r.MarketingCost + r.LaborCost*0.3 + r.UtilityCost*0.5,
	}
	be.VariableCostRatio = safeDiv(be.VariableCost, r.MonthlyRevenue)
	be.ContributionMargin = 1 - be.VariableCostRatio
	if be.ContributionMargin > 0 {
		be.BreakEvenRevenue = be.FixedCost / be.ContributionMargin
	}
	be.BreakEvenCustomers = safeDiv(be.BreakEvenRevenue, avgSpend)
	be.SafetyMargin = safeDiv(r.MonthlyRevenue-be.BreakEvenRevenue, r.MonthlyRevenue)
	return be
}

// lifetimeValue models customer worth from the repeat ratio: frequency
// rises with loyalty, implied annual churn falls with it, and the value
// is gross-margin adjusted.
func lifetimeValue(k model.KPISet) model.LifetimeValue {
	lv := model.LifetimeValue{
		PurchaseFrequency: 1 + 2*k.RepeatRatio,
		AnnualChurnRate:   clamp(1-k.RepeatRatio, 0.15, 0.95),
	}
	lv.LifespanMonths = math.Min(60, 12/lv.AnnualChurnRate)
	lv.Value = k.AverageSpend * lv.PurchaseFrequency * lv.LifespanMonths * k.GrossMargin
	return lv
}

// churnRisk blends loyalty, review sentiment, and rating into a 0-100
// risk score. The recency component is a constant: the survey carries
// no last-visit data.
func churnRisk(r model.SurveyRecord, k model.KPISet) float64 {
	const recencyRisk = 10

	risk := (1-k.RepeatRatio)*45 + k.NegativeReviewRate*25 + recencyRisk
	switch {
	case r.AverageRating < 3.5:
		risk += 20
	case r.AverageRating < 4.5:
		risk += 10
	default:
		risk += 4
	}
	return clamp(risk, 0, 100)
}

// competitiveness indexes the store against its category: margin
// realization, location fit, reputation, and content reach.
func competitiveness(k model.KPISet, bench Benchmark) float64 {
	marginScore := clamp(safeDiv(k.GrossMargin, bench.GrossMargin)*80, 0, 100)
	return clamp(
		0.30*marginScore+
			0.25*k.LocationMatchScore+
			0.25*k.ReviewScore+
			0.20*k.ContentMarketingIndex,
		0, 100)
}

// riskRadarWeights combine the eight risk dimensions; they sum to 1.0.
var riskRadarWeights = model.RiskRadar{
	Profit:      0.20,
	CashFlow:    0.15,
	Cost:        0.15,
	Customer:    0.15,
	Competition: 0.10,
	Reputation:  0.10,
	Staffing:    0.075,
	Market:      0.075,
}

// riskRadar scores each dimension 0 (safe) to 100 (critical) and
// combines them with fixed weights.
func riskRadar(k model.KPISet) model.RiskRadar {
	rr := model.RiskRadar{
		Profit:      clamp((0.25-k.NetMargin)/0.25*100, 0, 100),
		CashFlow:    clamp((0.40-k.BreakEven.SafetyMargin)/0.40*100, 0, 100),
		Cost:        clamp((k.CostRate-0.60)/0.35*100, 0, 100),
		Customer:    k.ChurnRiskScore,
		Competition: clamp(100-k.Competitiveness, 0, 100),
		Reputation:  clamp(k.NegativeReviewRate*400+(100-k.ReviewScore)*0.5, 0, 100),
		Staffing:    clamp((k.LaborCostRatio-0.20)/0.20*100, 0, 100),
		Market:      clamp(100-k.LocationMatchScore, 0, 100),
	}
	rr.Overall = rr.Profit*riskRadarWeights.Profit +
		rr.CashFlow*riskRadarWeights.CashFlow +
		rr.Cost*riskRadarWeights.Cost +
		rr.Customer*riskRadarWeights.Customer +
		rr.Competition*riskRadarWeights.Competition +
		rr.Reputation*riskRadarWeights.Reputation +
		rr.Staffing*riskRadarWeights.Staffing +
		rr.Market*riskRadarWeights.Market
	return rr
}

// expansionReadiness scores whether the operation could open another
// location: financial slack, profitability, operational maturity, team,
// and brand, weighted 25/25/20/15/15.
func expansionReadiness(r model.SurveyRecord, k model.KPISet, bench Benchmark) model.ExpansionReadiness {
	er := model.ExpansionReadiness{
		FinancialReadiness:  clamp(k.BreakEven.SafetyMargin/0.40*100, 0, 100),
		Profitability:       clamp(k.NetMargin/0.25*100, 0, 100),
		OperationalMaturity: clamp(safeDiv(k.TableTurnover, bench.TableTurnover)*80, 0, 100),
		TeamReadiness:       clamp(r.MarketingSituation.Score()*2+math.Min(40, k.EstimatedEmployees*4), 0, 100),
		BrandRecognition:    clamp(0.6*k.ReviewScore+0.4*k.ContentMarketingIndex, 0, 100),
	}
	er.Overall = 0.25*er.FinancialReadiness +
		0.25*er.Profitability +
		0.20*er.OperationalMaturity +
		0.15*er.TeamReadiness +
		0.15*er.BrandRecognition
	return er
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
