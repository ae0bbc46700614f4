package engine

import (
	"math"

	"github.com/tablewise/bistro-cli/internal/model"
)

// indicatorOrder fixes the evaluation order of the weighted indicators.
// Normalization, weighting, and tie-breaking in the factor ranking all
// follow it, keeping results deterministic across runs.
var indicatorOrder = []model.Indicator{
	model.IndicatorNetMargin,
	model.IndicatorGrossMargin,
	model.IndicatorCostRate,
	model.IndicatorOnlineBoost,
	model.IndicatorPriceVolatility,
	model.IndicatorRevenuePerSqm,
	model.IndicatorRevenuePerLabor,
}

// inverseIndicators marks indicators where a lower raw value is better.
var inverseIndicators = map[model.Indicator]bool{
	model.IndicatorCostRate:        true,
	model.IndicatorPriceVolatility: true,
}

// Score computes the composite profitability score for a sanitized
// record and its KPI set: normalize the seven weighted indicators,
// weight and sum, subtract penalties, clamp to [0,100], and band.
//
// A month with no revenue cannot be scored; it yields the designated
// insufficient-data result rather than an error, so presentation layers
// never see a fault for an empty record.
func Score(r model.SurveyRecord, k model.KPISet, cfg Config) model.CompositeScore {
	if r.MonthlyRevenue <= 0 {
		return model.CompositeScore{
			Score:       0,
			Level:       model.LevelInsufficient,
			Description: model.LevelInsufficient.Description(),
			Indicators:  map[model.Indicator]float64{},
			Normalized:  map[model.Indicator]float64{},
		}
	}

	indicators := map[model.Indicator]float64{
		model.IndicatorNetMargin:       k.NetMargin,
		model.IndicatorGrossMargin:     k.GrossMargin,
		model.IndicatorCostRate:        k.CostRate,
		model.IndicatorOnlineBoost:     k.OnlineRatio,
		model.IndicatorPriceVolatility: k.PriceVolatility,
		model.IndicatorRevenuePerSqm:   k.RevenuePerSqm,
		model.IndicatorRevenuePerLabor: k.RevenuePerEmployee,
		// Penalty-only; always 0 until a historical revenue feed exists.
		model.IndicatorResilience: 0,
	}

	normalized := make(map[model.Indicator]float64, len(indicatorOrder))
	var degraded []model.Indicator
	var total float64
	for _, ind := range indicatorOrder {
		score, deg := Normalize(indicators[ind], cfg.Baselines[ind], inverseIndicators[ind])
		if deg {
			degraded = append(degraded, ind)
		}
		normalized[ind] = score
		total += score * cfg.Weights[ind]
	}

	var penalty float64
	if k.NetMargin < cfg.NetMarginFloor {
		penalty += 10
	}
	if k.CostRate > cfg.CostRateCeiling {
		penalty += 10
	}
	if res := indicators[model.IndicatorResilience]; res < cfg.ResilienceFloor {
		penalty += (cfg.ResilienceFloor - res) * cfg.ResiliencePenaltyScale
	}

	final := int(math.Round(clamp(total-penalty, 0, 100)))
	level := bandFor(final)
	top, bottom := rankFactors(normalized, cfg.Weights)

	return model.CompositeScore{
		Score:         final,
		Level:         level,
		Description:   level.Description(),
		Indicators:    indicators,
		Normalized:    normalized,
		Penalty:       penalty,
		Degraded:      degraded,
		TopFactors:    top,
		BottomFactors: bottom,
	}
}

func bandFor(score int) model.Level {
	switch {
	case score >= 80:
		return model.LevelExcellent
	case score >= 65:
		return model.LevelGood
	case score >= 50:
		return model.LevelWarning
	default:
		return model.LevelDanger
	}
}
