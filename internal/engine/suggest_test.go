package engine

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/bistro-cli/internal/model"
)

func suggestFor(t *testing.T, rec model.SurveyRecord) []model.Suggestion {
	t.Helper()
	cfg := DefaultConfig()
	sanitized := Sanitize(rec)
	k := Derive(sanitized, cfg.ResolveBenchmark(sanitized.BusinessType), cfg)
	comp := Score(sanitized, k, cfg)
	return Suggest(sanitized, k, comp.Normalized)
}

// A food cost ratio well above the 35% ceiling must fire the cost
// optimization rule with a usable action list.
func TestSuggestFoodCostRule(t *testing.T) {
	got := suggestFor(t, model.SurveyRecord{
		MonthlyRevenue:  100_000,
		FoodCost:        42_000,
		LaborCost:       20_000,
		RentCost:        12_000,
		DailyCustomers:  120,
		Seats:           40,
		TotalCustomers:  2800,
		RepeatCustomers: 980,
		AverageRating:   4.6,
		TotalReviews:    160,
	})

	var food *model.Suggestion
	for i := range got {
		if got[i].ID == "food_cost" {
			food = &got[i]
		}
	}
	require.NotNil(t, food, "food cost rule must fire at a 42%% ratio")
	assert.NotEmpty(t, food.Solution)
	assert.Positive(t, food.Priority)
	assert.InDelta(t, 9*0.80/(3*2), food.Priority, 1e-9)
	assert.Contains(t, food.Problem, "42.0%")
}

func TestSuggestSortedByPriorityDesc(t *testing.T) {
	// A struggling month fires many rules at once.
	got := suggestFor(t, model.SurveyRecord{
		MonthlyRevenue: 120_000,
		FoodCost:       50_000,
		LaborCost:      40_000,
		RentCost:       30_000,
		MarketingCost:  16_000,
		AverageRating:  2.8,
		TotalReviews:   40,
		BadReviews:     15,
	})

	require.NotEmpty(t, got)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].Priority > got[j].Priority
	}), "suggestions must be ordered by priority descending")

	for _, s := range got {
		assert.InDelta(t, s.Impact*s.Probability/(s.Cost*s.Cycle), s.Priority, 1e-9, s.ID)
		assert.NotEmpty(t, s.Problem, s.ID)
		assert.NotEmpty(t, s.Solution, s.ID)
		assert.NotEmpty(t, s.ExpectedBenefit, s.ID)
	}
}

func TestSuggestHealthyMonthIsQuiet(t *testing.T) {
	got := suggestFor(t, healthyRecord())

	// The healthy reference month must not trigger cost or loyalty
	// rules; anything that does fire targets marketing reach.
	for _, s := range got {
		assert.NotEqual(t, "food_cost", s.ID)
		assert.NotEqual(t, "labor_cost", s.ID)
		assert.NotEqual(t, "rent_burden", s.ID)
		assert.NotEqual(t, "repeat_customers", s.ID)
	}
}

func TestSuggestInsufficientDataSkipsFactorRules(t *testing.T) {
	// Zero revenue: composite is the insufficient-data result with no
	// normalized map, so the factor-threshold rules must not fire.
	got := suggestFor(t, model.SurveyRecord{FoodCost: 50_000})

	for _, s := range got {
		assert.NotEqual(t, "output_factor", s.ID)
		assert.NotEqual(t, "efficiency_factor", s.ID)
	}
}

func TestSuggestRuleOrderBreaksTies(t *testing.T) {
	// Force two equal priorities by construction: none exist in the
	// default table, so just assert the stable sort leaves declaration
	// order intact when priorities match exactly.
	a := []model.Suggestion{
		{ID: "first", Priority: 1.0},
		{ID: "second", Priority: 1.0},
		{ID: "third", Priority: 2.0},
	}
	sort.SliceStable(a, func(i, j int) bool { return a[i].Priority > a[j].Priority })
	assert.Equal(t, []string{"third", "first", "second"}, []string{a[0].ID, a[1].ID, a[2].ID})
}
