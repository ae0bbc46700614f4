// Package engine implements the assessment pipeline: input guard,
// benchmark resolution, KPI derivation, band normalization, weighted
// composite scoring, factor ranking, and the recommendation rule
// engine. Everything is pure arithmetic over in-memory data; the only
// shared state is the explicit result cache.
package engine

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/tablewise/bistro-cli/internal/model"
)

// Baseline is the {min, ideal, max} band an indicator is normalized
// against.
type Baseline struct {
	Min   float64 `yaml:"min"`
	Ideal float64 `yaml:"ideal"`
	Max   float64 `yaml:"max"`
}

// Benchmark holds the reference values for one business category.
type Benchmark struct {
	TableTurnover float64 `yaml:"table_turnover"` // daily turns per seat
	GrossMargin   float64 `yaml:"gross_margin"`
	TakeawayRatio float64 `yaml:"takeaway_ratio"`
	RevenuePerSqm float64 `yaml:"revenue_per_sqm"` // monthly, per m²
	AverageSpend  float64 `yaml:"average_spend"`
}

// Config carries every table the pipeline reads: indicator weights,
// normalization baselines, the per-category benchmarks, and the scoring
// thresholds. It is injected explicitly; the package keeps no mutable
// globals.
type Config struct {
	Weights    map[model.Indicator]float64      `yaml:"weights"`
	Baselines  map[model.Indicator]Baseline     `yaml:"baselines"`
	Benchmarks map[model.BusinessType]Benchmark `yaml:"benchmarks"`

	// AssumedMonthlyWage estimates head count from the labor cost line.
	AssumedMonthlyWage float64 `yaml:"assumed_monthly_wage"`
	// OperatingDays converts daily customer counts to monthly volume.
	OperatingDays int `yaml:"operating_days"`

	// Penalty thresholds.
	NetMarginFloor  float64 `yaml:"net_margin_floor"`  // below this: +10
	CostRateCeiling float64 `yaml:"cost_rate_ceiling"` // above this: +10
	// ResilienceFloor is the consecutive-decline threshold in months
	// (negative). The indicator itself is 0 without historical data, so
	// the scaled penalty never applies today.
	ResilienceFloor        float64 `yaml:"resilience_floor"`
	ResiliencePenaltyScale float64 `yaml:"resilience_penalty_scale"`
}

// DefaultConfig returns the shipped tuning. Weights sum to 1.0 over the
// seven weighted indicators; resilience is penalty-only and unweighted.
func DefaultConfig() Config {
	return Config{
		Weights: map[model.Indicator]float64{
			model.IndicatorNetMargin:       0.30,
			model.IndicatorGrossMargin:     0.15,
			model.IndicatorCostRate:        0.15,
			model.IndicatorOnlineBoost:     0.10,
			model.IndicatorPriceVolatility: 0.10,
			model.IndicatorRevenuePerSqm:   0.10,
			model.IndicatorRevenuePerLabor: 0.10,
		},
		Baselines: map[model.Indicator]Baseline{
			model.IndicatorNetMargin:       {Min: 0, Ideal: 0.15, Max: 0.30},
			model.IndicatorGrossMargin:     {Min: 0.40, Ideal: 0.65, Max: 0.80},
			model.IndicatorCostRate:        {Min: 0.55, Ideal: 0.75, Max: 0.95},
			model.IndicatorOnlineBoost:     {Min: 0, Ideal: 0.25, Max: 0.60},
			model.IndicatorPriceVolatility: {Min: 0, Ideal: 0.10, Max: 0.30},
			model.IndicatorRevenuePerSqm:   {Min: 300, Ideal: 800, Max: 2000},
			model.IndicatorRevenuePerLabor: {Min: 10_000, Ideal: 30_000, Max: 60_000},
		},
		Benchmarks: map[model.BusinessType]Benchmark{
			model.BusinessFastFood:      {TableTurnover: 4.0, GrossMargin: 0.62, TakeawayRatio: 0.45, RevenuePerSqm: 1200, AverageSpend: 28},
			model.BusinessHotPot:        {TableTurnover: 2.5, GrossMargin: 0.58, TakeawayRatio: 0.15, RevenuePerSqm: 900, AverageSpend: 95},
			model.BusinessFullService:   {TableTurnover: 2.0, GrossMargin: 0.62, TakeawayRatio: 0.20, RevenuePerSqm: 800, AverageSpend: 75},
			model.BusinessTeaRestaurant: {TableTurnover: 3.0, GrossMargin: 0.60, TakeawayRatio: 0.30, RevenuePerSqm: 850, AverageSpend: 50},
			model.BusinessCafe:          {TableTurnover: 1.8, GrossMargin: 0.68, TakeawayRatio: 0.35, RevenuePerSqm: 700, AverageSpend: 45},
			model.BusinessTeaDrinks:     {TableTurnover: 6.0, GrossMargin: 0.65, TakeawayRatio: 0.60, RevenuePerSqm: 1500, AverageSpend: 22},
			model.BusinessOther:         {TableTurnover: 2.5, GrossMargin: 0.60, TakeawayRatio: 0.30, RevenuePerSqm: 800, AverageSpend: 50},
		},
		AssumedMonthlyWage:     4500,
		OperatingDays:          30,
		NetMarginFloor:         0.05,
		CostRateCeiling:        0.85,
		ResilienceFloor:        -2,
		ResiliencePenaltyScale: 5,
	}
}

// WeightSum returns the sum of all indicator weights.
func WeightSum(c Config) float64 {
	var sum float64
	for _, w := range c.Weights {
		sum += w
	}
	return sum
}

// Validate checks that a Config is internally consistent.
func Validate(c Config) error {
	var errs []string

	for ind, w := range c.Weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("weight %s must be >= 0", ind))
		}
		if _, ok := c.Baselines[ind]; !ok {
			errs = append(errs, fmt.Sprintf("weighted indicator %s has no baseline", ind))
		}
	}
	if sum := WeightSum(c); math.Abs(sum-1.0) > 0.005 {
		errs = append(errs, fmt.Sprintf("weights must sum to 1.0, got %.3f", sum))
	}
	for ind, b := range c.Baselines {
		if !(b.Min < b.Ideal && b.Ideal < b.Max) {
			errs = append(errs, fmt.Sprintf("baseline %s must satisfy min < ideal < max", ind))
		}
	}
	if _, ok := c.Benchmarks[model.BusinessOther]; !ok {
		errs = append(errs, "benchmarks must include the fallback entry")
	}
	if c.AssumedMonthlyWage <= 0 {
		errs = append(errs, "assumed_monthly_wage must be > 0")
	}
	if c.OperatingDays < 1 || c.OperatingDays > 31 {
		errs = append(errs, "operating_days must be between 1 and 31")
	}
	if c.ResiliencePenaltyScale < 0 {
		errs = append(errs, "resilience_penalty_scale must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("engine: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadTuning reads a YAML tuning file and overlays it on the defaults.
// Absent keys keep their default values.
func LoadTuning(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrap(err, "engine: read tuning file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrap(err, "engine: parse tuning file")
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ResolveBenchmark maps a business type to its benchmark. The lookup is
// total: unknown labels resolve through ParseBusinessType to the
// fallback entry.
func (c Config) ResolveBenchmark(bt model.BusinessType) Benchmark {
	if b, ok := c.Benchmarks[model.ParseBusinessType(string(bt))]; ok {
		return b
	}
	return c.Benchmarks[model.BusinessOther]
}
