// Package model defines the survey record, its categorical enums, and
// the assessment result types shared across the pipeline, store, and
// presentation surfaces.
package model

import (
	"crypto/sha256"
	"fmt"
)

// SurveyRecord is one month of a restaurant's operations as reported by
// the survey source. It is read-only to the assessment pipeline; the
// input guard produces a sanitized copy before any derivation.
type SurveyRecord struct {
	ID string `json:"id,omitempty"`

	// Monetary amounts, all for the reported month.
	MonthlyRevenue float64 `json:"monthly_revenue"`
	FoodCost       float64 `json:"food_cost"`
	LaborCost      float64 `json:"labor_cost"`
	RentCost       float64 `json:"rent_cost"`
	MarketingCost  float64 `json:"marketing_cost"`
	UtilityCost    float64 `json:"utility_cost"`
	OnlineRevenue  float64 `json:"online_revenue"`

	// Footprint and staffing.
	StoreArea float64 `json:"store_area"` // square meters
	Seats     int     `json:"seats"`

	// Customer counters.
	DailyCustomers  int `json:"daily_customers"`
	TotalCustomers  int `json:"total_customers"`
	RepeatCustomers int `json:"repeat_customers"`

	// Review counters.
	AverageRating     float64 `json:"average_rating"` // 0-5
	TotalReviews      int     `json:"total_reviews"`
	BadReviews        int     `json:"bad_reviews"`
	ServiceBadReviews int     `json:"service_bad_reviews"`
	TasteBadReviews   int     `json:"taste_bad_reviews"`

	// Marketing activity counters.
	ShortVideoCount int `json:"short_video_count"`
	LiveStreamCount int `json:"live_stream_count"`

	// Categorical fields.
	BusinessType       BusinessType  `json:"business_type"`
	BusinessCircle     CircleTier    `json:"business_circle"`
	DecorationLevel    DecorLevel    `json:"decoration_level"`
	MarketingSituation MarketingTeam `json:"marketing_situation"`
}

// Fingerprint returns a stable content hash over only the fields the
// assessment pipeline reads. Unknown JSON properties or field ordering
// in the source payload cannot change it.
func (r SurveyRecord) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%.2f|%.2f|%.2f|%.2f|%.2f|%.2f|%.2f|",
		r.MonthlyRevenue, r.FoodCost, r.LaborCost, r.RentCost,
		r.MarketingCost, r.UtilityCost, r.OnlineRevenue)
	fmt.Fprintf(h, "%.2f|%d|%d|%d|%d|",
		r.StoreArea, r.Seats, r.DailyCustomers, r.TotalCustomers, r.RepeatCustomers)
	fmt.Fprintf(h, "%.2f|%d|%d|%d|%d|%d|%d|",
		r.AverageRating, r.TotalReviews, r.BadReviews, r.ServiceBadReviews,
		r.TasteBadReviews, r.ShortVideoCount, r.LiveStreamCount)
	fmt.Fprintf(h, "%s|%s|%s|%s",
		r.BusinessType, r.BusinessCircle, r.DecorationLevel, r.MarketingSituation)
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// BusinessType is the closed set of restaurant categories the benchmark
// table covers. Unrecognized labels parse to BusinessOther, so every
// record resolves to a benchmark.
type BusinessType string

const (
	BusinessFastFood      BusinessType = "fast_food"
	BusinessHotPot        BusinessType = "hot_pot"
	BusinessFullService   BusinessType = "full_service"
	BusinessTeaRestaurant BusinessType = "tea_restaurant"
	BusinessCafe          BusinessType = "cafe"
	BusinessTeaDrinks     BusinessType = "tea_drinks"
	BusinessOther         BusinessType = "other"
)

// ParseBusinessType maps a raw label to a BusinessType, falling back to
// BusinessOther for anything unrecognized (including the empty string).
func ParseBusinessType(s string) BusinessType {
	switch BusinessType(s) {
	case BusinessFastFood, BusinessHotPot, BusinessFullService,
		BusinessTeaRestaurant, BusinessCafe, BusinessTeaDrinks:
		return BusinessType(s)
	default:
		return BusinessOther
	}
}

// CircleTier classifies the store's business circle.
type CircleTier string

const (
	CirclePrime     CircleTier = "prime"
	CircleSecondary CircleTier = "secondary"
	CircleCommunity CircleTier = "community"
	CircleOutskirt  CircleTier = "outskirt"
)

// Score returns the location sub-score contributed by the circle tier.
func (c CircleTier) Score() float64 {
	switch c {
	case CirclePrime:
		return 40
	case CircleSecondary:
		return 30
	case CircleCommunity:
		return 20
	default:
		return 12
	}
}

// DecorLevel classifies the fit-out quality of the store.
type DecorLevel string

const (
	DecorPremium  DecorLevel = "premium"
	DecorStandard DecorLevel = "standard"
	DecorBasic    DecorLevel = "basic"
)

// Score returns the location sub-score contributed by the decor tier.
func (d DecorLevel) Score() float64 {
	switch d {
	case DecorPremium:
		return 30
	case DecorStandard:
		return 20
	default:
		return 10
	}
}

// MarketingTeam describes who runs the store's online marketing.
type MarketingTeam string

const (
	MarketingProfessional MarketingTeam = "professional"
	MarketingPartTime     MarketingTeam = "part_time"
	MarketingNone         MarketingTeam = "none"
)

// Score returns the content-marketing sub-score for the team setup.
func (m MarketingTeam) Score() float64 {
	switch m {
	case MarketingProfessional:
		return 30
	case MarketingPartTime:
		return 15
	default:
		return 0
	}
}
