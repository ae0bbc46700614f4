package model

import "time"

// Indicator names a scored composite indicator.
type Indicator string

const (
	IndicatorNetMargin       Indicator = "net_margin"
	IndicatorGrossMargin     Indicator = "gross_margin"
	IndicatorCostRate        Indicator = "cost_rate"
	IndicatorOnlineBoost     Indicator = "online_boost"
	IndicatorPriceVolatility Indicator = "price_volatility"
	IndicatorRevenuePerSqm   Indicator = "revenue_per_sqm"
	IndicatorRevenuePerLabor Indicator = "revenue_per_labor"

	// IndicatorResilience is penalty-only: it never carries a weight and
	// stays 0 until a historical revenue feed exists.
	IndicatorResilience Indicator = "resilience"
)

// Level is the qualitative band of a composite score.
type Level string

const (
	LevelExcellent    Level = "excellent"
	LevelGood         Level = "good"
	LevelWarning      Level = "warning"
	LevelDanger       Level = "danger"
	LevelInsufficient Level = "insufficient_data"
)

// Description returns the fixed narrative attached to each level.
func (l Level) Description() string {
	switch l {
	case LevelExcellent:
		return "Operations are in excellent shape. Maintain the current model and consider expansion."
	case LevelGood:
		return "Operations are healthy overall, with a few indicators worth tightening."
	case LevelWarning:
		return "Several indicators are below a healthy range. Corrective action is recommended."
	case LevelDanger:
		return "Core profitability indicators are in a dangerous range. Immediate action is required."
	default:
		return "Not enough data to assess this month. Revenue and cost figures are required."
	}
}

// BreakEven holds the fixed/variable cost split and the break-even model
// derived from it.
type BreakEven struct {
	FixedCost          float64 `json:"fixed_cost"`
	VariableCost       float64 `json:"variable_cost"`
	VariableCostRatio  float64 `json:"variable_cost_ratio"`
	ContributionMargin float64 `json:"contribution_margin"`
	BreakEvenRevenue   float64 `json:"break_even_revenue"`
	BreakEvenCustomers float64 `json:"break_even_customers"`
	SafetyMargin       float64 `json:"safety_margin"`
}

// LifetimeValue is the customer lifetime value sub-model.
type LifetimeValue struct {
	PurchaseFrequency float64 `json:"purchase_frequency"` // visits per month
	AnnualChurnRate   float64 `json:"annual_churn_rate"`
	LifespanMonths    float64 `json:"lifespan_months"`
	Value             float64 `json:"value"` // gross-margin adjusted LTV
}

// RiskRadar scores eight operational risk dimensions, 0 (safe) to 100
// (critical), combined into a weighted overall risk.
type RiskRadar struct {
	Profit      float64 `json:"profit"`
	CashFlow    float64 `json:"cash_flow"`
	Cost        float64 `json:"cost"`
	Customer    float64 `json:"customer"`
	Competition float64 `json:"competition"`
	Reputation  float64 `json:"reputation"`
	Staffing    float64 `json:"staffing"`
	Market      float64 `json:"market"`
	Overall     float64 `json:"overall"`
}

// ExpansionReadiness scores how prepared the operation is to open
// another location, by weighted component.
type ExpansionReadiness struct {
	FinancialReadiness  float64 `json:"financial_readiness"`
	Profitability       float64 `json:"profitability"`
	OperationalMaturity float64 `json:"operational_maturity"`
	TeamReadiness       float64 `json:"team_readiness"`
	BrandRecognition    float64 `json:"brand_recognition"`
	Overall             float64 `json:"overall"`
}

// KPISet is the full derived-metric set for one survey record. It is a
// pure function of the sanitized record and its benchmark; recomputing
// it for an unchanged record yields identical values.
type KPISet struct {
	// Cost structure.
	FoodCostRatio      float64 `json:"food_cost_ratio"`
	LaborCostRatio     float64 `json:"labor_cost_ratio"`
	RentCostRatio      float64 `json:"rent_cost_ratio"`
	MarketingCostRatio float64 `json:"marketing_cost_ratio"`
	UtilityCostRatio   float64 `json:"utility_cost_ratio"`
	CostRate           float64 `json:"cost_rate"`
	GrossMargin        float64 `json:"gross_margin"`
	NetMargin          float64 `json:"net_margin"`

	// Operations.
	TableTurnover      float64 `json:"table_turnover"`
	RevenuePerSqm      float64 `json:"revenue_per_sqm"`
	EstimatedEmployees float64 `json:"estimated_employees"`
	RevenuePerEmployee float64 `json:"revenue_per_employee"`
	AverageSpend       float64 `json:"average_spend"`
	PriceVolatility    float64 `json:"price_volatility"` // spend deviation vs benchmark, 0-1

	// Customers.
	RepeatRatio float64 `json:"repeat_ratio"`
	OnlineRatio float64 `json:"online_ratio"`

	// Reputation.
	ReviewScore        float64 `json:"review_score"` // 0-100
	NegativeReviewRate float64 `json:"negative_review_rate"`
	ServiceBadRate     float64 `json:"service_bad_rate"`
	TasteBadRate       float64 `json:"taste_bad_rate"`

	// Marketing.
	MarketingROI          float64 `json:"marketing_roi"`
	InteractionRate       float64 `json:"interaction_rate"`
	ContentMarketingIndex float64 `json:"content_marketing_index"` // 0-100
	KOLQualityScore       float64 `json:"kol_quality_score"`       // 0-100

	// Location.
	LocationMatchScore float64 `json:"location_match_score"` // 0-100

	// Sub-models.
	BreakEven       BreakEven          `json:"break_even"`
	Lifetime        LifetimeValue      `json:"lifetime_value"`
	ChurnRiskScore  float64            `json:"churn_risk_score"` // 0-100
	RiskRadar       RiskRadar          `json:"risk_radar"`
	Competitiveness float64            `json:"competitiveness_index"` // 0-100
	Expansion       ExpansionReadiness `json:"expansion_readiness"`
}

// Factor is one indicator's contribution to the composite score.
type Factor struct {
	Indicator Indicator `json:"indicator"`
	Score     float64   `json:"score"` // normalized 20-100
	Weight    float64   `json:"weight"`
	Impact    float64   `json:"impact"` // score * weight
}

// CompositeScore is the banded weighted aggregate of the normalized
// indicators, created once per KPISet and immutable after that.
type CompositeScore struct {
	Score         int                   `json:"score"` // 0-100
	Level         Level                 `json:"level"`
	Description   string                `json:"description"`
	Indicators    map[Indicator]float64 `json:"indicators"` // raw values
	Normalized    map[Indicator]float64 `json:"normalized"`
	Penalty       float64               `json:"penalty"`
	Degraded      []Indicator           `json:"degraded,omitempty"` // non-finite inputs floored
	TopFactors    []Factor              `json:"top_factors"`
	BottomFactors []Factor              `json:"bottom_factors"`
}

// Suggestion is one improvement action produced by the rule engine.
// Priority is impact * probability / (cost * cycle); the engine returns
// suggestions sorted by it, descending, ties kept in rule order.
type Suggestion struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Category        string   `json:"category"`
	Impact          float64  `json:"impact"`      // 1-10
	Probability     float64  `json:"probability"` // 0-1
	Cost            float64  `json:"cost"`        // 1-10, relative
	Cycle           float64  `json:"cycle"`       // months
	Priority        float64  `json:"priority"`
	Problem         string   `json:"problem"`
	Solution        []string `json:"solution"`
	ExpectedBenefit string   `json:"expected_benefit"`
	Tasks           []string `json:"tasks,omitempty"`
}

// Assessment bundles everything derived from one survey record.
type Assessment struct {
	RecordID    string         `json:"record_id,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	KPI         KPISet         `json:"kpi"`
	Composite   CompositeScore `json:"composite"`
	Suggestions []Suggestion   `json:"suggestions"`
	GeneratedAt time.Time      `json:"generated_at"`
}
