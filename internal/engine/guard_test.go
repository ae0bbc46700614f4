package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablewise/bistro-cli/internal/model"
)

func TestSanitizeDefaultsDenominators(t *testing.T) {
	got := Sanitize(model.SurveyRecord{MonthlyRevenue: 100_000})

	assert.Equal(t, 1.0, got.StoreArea)
	assert.Equal(t, 1, got.Seats)
	assert.Equal(t, 1, got.DailyCustomers)
	assert.Equal(t, 1, got.TotalCustomers)
	// Numerators stay at zero.
	assert.Equal(t, 0, got.RepeatCustomers)
	assert.Equal(t, 0.0, got.FoodCost)
}

func TestSanitizeClampsNegatives(t *testing.T) {
	got := Sanitize(model.SurveyRecord{
		MonthlyRevenue: -500,
		FoodCost:       -1,
		AverageRating:  -2,
		BadReviews:     -3,
		Seats:          -10,
	})

	assert.Equal(t, 0.0, got.MonthlyRevenue)
	assert.Equal(t, 0.0, got.FoodCost)
	assert.Equal(t, 0.0, got.AverageRating)
	assert.Equal(t, 0, got.BadReviews)
	assert.Equal(t, 1, got.Seats)
}

func TestSanitizeCapsRating(t *testing.T) {
	got := Sanitize(model.SurveyRecord{AverageRating: 9.9})
	assert.Equal(t, 5.0, got.AverageRating)
}

func TestSanitizeNormalizesBusinessType(t *testing.T) {
	got := Sanitize(model.SurveyRecord{BusinessType: "noodle_bar"})
	assert.Equal(t, model.BusinessOther, got.BusinessType)

	got = Sanitize(model.SurveyRecord{BusinessType: model.BusinessHotPot})
	assert.Equal(t, model.BusinessHotPot, got.BusinessType)
}

func TestSanitizeKeepsPopulatedFields(t *testing.T) {
	in := model.SurveyRecord{
		MonthlyRevenue: 200_000,
		StoreArea:      120,
		Seats:          40,
		DailyCustomers: 150,
		TotalCustomers: 3000,
	}
	got := Sanitize(in)
	assert.Equal(t, in.StoreArea, got.StoreArea)
	assert.Equal(t, in.Seats, got.Seats)
	assert.Equal(t, in.DailyCustomers, got.DailyCustomers)
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 0.0, safeDiv(10, 0))
	assert.Equal(t, 2.5, safeDiv(5, 2))
}
