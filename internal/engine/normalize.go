package engine

import "math"

// Normalization bounds. The band floor is deliberately above zero so a
// single missing indicator cannot zero out a weighted term; the ideal
// value of a band always maps to ScoreMid.
const (
	ScoreFloor   = 20.0
	ScoreMid     = 80.0
	ScoreCeiling = 100.0
)

// Normalize maps a raw indicator value onto [ScoreFloor, ScoreCeiling]
// against its baseline band.
//
// Forward (higher is better): value ≤ min scores the floor, min→ideal
// climbs quickly to the mid-point, ideal→max climbs slowly to the
// ceiling. Inverse (lower is better, e.g. a cost ratio) mirrors the
// curve: min scores the ceiling and the decline steepens past ideal.
//
// A non-finite value scores the floor and reports degraded=true so
// callers can surface that the input was unusable.
func Normalize(value float64, b Baseline, inverse bool) (score float64, degraded bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ScoreFloor, true
	}
	if inverse {
		switch {
		case value <= b.Min:
			return ScoreCeiling, false
		case value >= b.Max:
			return ScoreFloor, false
		case value <= b.Ideal:
			return ScoreCeiling - (value-b.Min)/(b.Ideal-b.Min)*(ScoreCeiling-ScoreMid), false
		default:
			return ScoreMid - (value-b.Ideal)/(b.Max-b.Ideal)*(ScoreMid-ScoreFloor), false
		}
	}
	switch {
	case value <= b.Min:
		return ScoreFloor, false
	case value >= b.Max:
		return ScoreCeiling, false
	case value <= b.Ideal:
		return ScoreFloor + (value-b.Min)/(b.Ideal-b.Min)*(ScoreMid-ScoreFloor), false
	default:
		return ScoreMid + (value-b.Ideal)/(b.Max-b.Ideal)*(ScoreCeiling-ScoreMid), false
	}
}
