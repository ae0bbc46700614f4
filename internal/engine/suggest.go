package engine

import (
	"fmt"
	"sort"

	"github.com/tablewise/bistro-cli/internal/model"
)

// rule is one (predicate, template) pair of the recommendation engine.
// The impact/probability/cost/cycle constants are fixed per rule;
// priority = impact × probability / (cost × cycle).
type rule struct {
	id          string
	title       string
	category    string
	impact      float64 // 1-10
	probability float64 // 0-1
	cost        float64 // 1-10 relative effort
	cycle       float64 // months to effect
	fires       func(r model.SurveyRecord, k model.KPISet, norm map[model.Indicator]float64) bool
	problem     func(r model.SurveyRecord, k model.KPISet) string
	solution    []string
	benefit     string
	tasks       []string
}

// factorBelow reads a normalized indicator score; a missing entry (the
// insufficient-data result has none) never fires a factor rule.
func factorBelow(norm map[model.Indicator]float64, ind model.Indicator, threshold float64) bool {
	s, ok := norm[ind]
	return ok && s < threshold
}

// suggestionRules is the fixed, ordered rule set. Rules are independent:
// no rule disables another, and the declaration order is the tiebreak
// for equal priorities.
var suggestionRules = []rule{
	{
		id: "output_factor", title: "Lift store output", category: "operations",
		impact: 8, probability: 0.70, cost: 4, cycle: 3,
		fires: func(_ model.SurveyRecord, _ model.KPISet, norm map[model.Indicator]float64) bool {
			return factorBelow(norm, model.IndicatorRevenuePerSqm, 60)
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Revenue per square meter is %.0f, well below a healthy range for the footprint.", k.RevenuePerSqm)
		},
		solution: []string{
			"Rework the floor plan to add covers during peak hours",
			"Introduce off-peak set menus to spread demand",
			"Add a takeaway window or delivery-only menu to lift output without adding seats",
		},
		benefit: "10-20% more revenue from the same footprint within one quarter",
		tasks:   []string{"Measure peak-hour seat utilization for two weeks", "Trial one off-peak set menu"},
	},
	{
		id: "efficiency_factor", title: "Raise labor efficiency", category: "operations",
		impact: 7, probability: 0.75, cost: 3, cycle: 2,
		fires: func(_ model.SurveyRecord, _ model.KPISet, norm map[model.Indicator]float64) bool {
			return factorBelow(norm, model.IndicatorRevenuePerLabor, 60)
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Revenue per employee is %.0f per month; staffing is outpacing sales.", k.RevenuePerEmployee)
		},
		solution: []string{
			"Align shift schedules with the hourly demand curve",
			"Cross-train staff to cover front and back of house",
			"Move low-value prep to pre-portioned supply",
		},
		benefit: "Labor cost ratio down 3-5 points at stable service quality",
		tasks:   []string{"Build an hourly sales heatmap", "Draft a cross-training rotation"},
	},
	{
		id: "reputation_factor", title: "Repair online reputation", category: "reputation",
		impact: 7, probability: 0.65, cost: 2, cycle: 2,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.ReviewScore < 60
		},
		problem: func(r model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Average rating is %.1f/5 with a %.0f%% negative-review rate.", r.AverageRating, k.NegativeReviewRate*100)
		},
		solution: []string{
			"Reply to every negative review within 24 hours",
			"Fix the top recurring complaint theme first (service vs. taste)",
			"Prompt satisfied diners for reviews at checkout",
		},
		benefit: "Rating recovery of 0.3-0.5 stars over two months",
	},
	{
		id: "interaction_rate", title: "Grow customer interaction", category: "marketing",
		impact: 5, probability: 0.80, cost: 2, cycle: 1,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.InteractionRate < 0.05
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Only %.1f%% of customers leave any online engagement.", k.InteractionRate*100)
		},
		solution: []string{
			"Add a table QR that lands on the review page",
			"Run a monthly user-content photo campaign",
			"Reward check-ins with a small add-on item",
		},
		benefit: "Interaction rate above 5% within a month",
	},
	{
		id: "kol_quality", title: "Upgrade influencer collaborations", category: "marketing",
		impact: 6, probability: 0.60, cost: 3, cycle: 2,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.KOLQualityScore < 50
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Influencer activity scores %.0f/100; current collaborations are not converting.", k.KOLQualityScore)
		},
		solution: []string{
			"Shift budget from one-off posts to recurring local food accounts",
			"Schedule at least two livestreams a month with trackable offer codes",
			"Measure redemption per collaboration before renewing",
		},
		benefit: "Measurable redemption per campaign instead of vanity reach",
	},
	{
		id: "food_cost", title: "Cut food cost", category: "cost",
		impact: 9, probability: 0.80, cost: 3, cycle: 2,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.FoodCostRatio > 0.35
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Food cost is %.1f%% of revenue against a 35%% healthy ceiling.", k.FoodCostRatio*100)
		},
		solution: []string{
			"Re-quote the top ten ingredients with two alternative suppliers",
			"Standardize portion specs and audit waste for two weeks",
			"Re-engineer the three lowest-margin dishes",
		},
		benefit: "Food cost ratio back under 35%, roughly the gap in monthly profit",
		tasks:   []string{"Pull supplier price list", "Run a two-week waste audit"},
	},
	{
		id: "labor_cost", title: "Contain labor cost", category: "cost",
		impact: 7, probability: 0.70, cost: 4, cycle: 3,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.LaborCostRatio > 0.28
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Labor takes %.1f%% of revenue; above the 28%% ceiling for the category.", k.LaborCostRatio*100)
		},
		solution: []string{
			"Split shifts around the two daily peaks",
			"Use part-time cover for weekends instead of full-time headcount",
			"Automate order-taking for takeaway channels",
		},
		benefit: "2-4 points of labor ratio without cutting service hours",
	},
	{
		id: "rent_burden", title: "Relieve rent burden", category: "cost",
		impact: 6, probability: 0.50, cost: 6, cycle: 6,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.RentCostRatio > 0.20
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Rent consumes %.1f%% of revenue; sustainable operations stay under 20%%.", k.RentCostRatio*100)
		},
		solution: []string{
			"Renegotiate the lease against current market rates",
			"Sublet dead hours or unused space",
			"Model relocation economics before the next renewal window",
		},
		benefit: "Rent ratio to 15-20% at the next lease event",
	},
	{
		id: "repeat_customers", title: "Build repeat business", category: "customer",
		impact: 8, probability: 0.75, cost: 2, cycle: 2,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.RepeatRatio < 0.25
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Only %.0f%% of customers return; acquisition is carrying the whole month.", k.RepeatRatio*100)
		},
		solution: []string{
			"Launch a simple visit-stamp loyalty program",
			"Capture contact on first visit with an opt-in discount",
			"Send a win-back offer 21 days after a first visit",
		},
		benefit: "Repeat ratio above 25% doubles effective marketing yield",
		tasks:   []string{"Pick a loyalty mechanic", "Set up the win-back message flow"},
	},
	{
		id: "marketing_efficiency", title: "Fix marketing efficiency", category: "marketing",
		impact: 6, probability: 0.70, cost: 2, cycle: 1,
		fires: func(_ model.SurveyRecord, k model.KPISet, _ map[model.Indicator]float64) bool {
			return k.MarketingCostRatio > 0.12 && k.MarketingROI < 2
		},
		problem: func(_ model.SurveyRecord, k model.KPISet) string {
			return fmt.Sprintf("Marketing spends %.1f%% of revenue but returns %.1fx online; the channel mix is not paying back.", k.MarketingCostRatio*100, k.MarketingROI)
		},
		solution: []string{
			"Pause the bottom half of channels by tracked return",
			"Reallocate to the single best-converting channel for one month",
			"Attach a unique offer code to every campaign",
		},
		benefit: "Same bookings at roughly half the marketing spend",
	},
}

// Suggest evaluates the full rule set against a record and its KPI set
// and returns every firing rule's suggestion, sorted by priority
// descending; ties preserve rule order. Rules are independent, so the
// result is 0..N suggestions.
func Suggest(r model.SurveyRecord, k model.KPISet, norm map[model.Indicator]float64) []model.Suggestion {
	var out []model.Suggestion
	for _, rl := range suggestionRules {
		if !rl.fires(r, k, norm) {
			continue
		}
		out = append(out, model.Suggestion{
			ID:              rl.id,
			Title:           rl.title,
			Category:        rl.category,
			Impact:          rl.impact,
			Probability:     rl.probability,
			Cost:            rl.cost,
			Cycle:           rl.cycle,
			Priority:        rl.impact * rl.probability / (rl.cost * rl.cycle),
			Problem:         rl.problem(r, k),
			Solution:        rl.solution,
			ExpectedBenefit: rl.benefit,
			Tasks:           rl.tasks,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
