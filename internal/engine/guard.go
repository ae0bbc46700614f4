package engine

import "github.com/tablewise/bistro-cli/internal/model"

// Sanitize returns a fully-defaulted copy of a raw survey record: every
// numeric field has a usable value (missing or negative → 0) and every
// known division site has a non-zero denominator (seats, area, and
// customer counts → 1). This is data-cleaning, not validation; it never
// rejects a record. All downstream derivation assumes it ran exactly
// once, here.
func Sanitize(r model.SurveyRecord) model.SurveyRecord {
	r.MonthlyRevenue = nonNegative(r.MonthlyRevenue)
	r.FoodCost = nonNegative(r.FoodCost)
	r.LaborCost = nonNegative(r.LaborCost)
	r.RentCost = nonNegative(r.RentCost)
	r.MarketingCost = nonNegative(r.MarketingCost)
	r.UtilityCost = nonNegative(r.UtilityCost)
	r.OnlineRevenue = nonNegative(r.OnlineRevenue)

	if r.AverageRating < 0 {
		r.AverageRating = 0
	}
	if r.AverageRating > 5 {
		r.AverageRating = 5
	}
	r.TotalReviews = nonNegativeInt(r.TotalReviews)
	r.BadReviews = nonNegativeInt(r.BadReviews)
	r.ServiceBadReviews = nonNegativeInt(r.ServiceBadReviews)
	r.TasteBadReviews = nonNegativeInt(r.TasteBadReviews)
	r.ShortVideoCount = nonNegativeInt(r.ShortVideoCount)
	r.LiveStreamCount = nonNegativeInt(r.LiveStreamCount)
	r.RepeatCustomers = nonNegativeInt(r.RepeatCustomers)

	// Denominator floors.
	if r.StoreArea <= 0 {
		r.StoreArea = 1
	}
	if r.Seats <= 0 {
		r.Seats = 1
	}
	if r.DailyCustomers <= 0 {
		r.DailyCustomers = 1
	}
	if r.TotalCustomers <= 0 {
		r.TotalCustomers = 1
	}

	r.BusinessType = model.ParseBusinessType(string(r.BusinessType))

	return r
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func nonNegativeInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// safeDiv divides, yielding 0 for a zero denominator. Used for the one
// denominator the guard deliberately leaves at zero: revenue. A month
// with no revenue produces all-zero ratios rather than a fault.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
