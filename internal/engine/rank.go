package engine

import (
	"sort"

	"github.com/tablewise/bistro-cli/internal/model"
)

// rankFactors orders the weighted indicators by impact (normalized
// score × weight) and extracts the two pulling factors and the two
// dragging factors. The sort is stable over indicatorOrder, so ties
// keep evaluation order.
func rankFactors(normalized map[model.Indicator]float64, weights map[model.Indicator]float64) (top, bottom []model.Factor) {
	factors := make([]model.Factor, 0, len(indicatorOrder))
	for _, ind := range indicatorOrder {
		score, ok := normalized[ind]
		if !ok {
			continue
		}
		w := weights[ind]
		factors = append(factors, model.Factor{
			Indicator: ind,
			Score:     score,
			Weight:    w,
			Impact:    score * w,
		})
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Impact > factors[j].Impact
	})

	n := len(factors)
	if n == 0 {
		return nil, nil
	}
	topN := 2
	if n < topN {
		topN = n
	}
	top = append(top, factors[:topN]...)

	// Last two, weakest first.
	for i := n - 1; i >= n-topN && i >= 0; i-- {
		bottom = append(bottom, factors[i])
	}
	return top, bottom
}
