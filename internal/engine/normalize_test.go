package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForward(t *testing.T) {
	b := Baseline{Min: 0, Ideal: 0.15, Max: 0.30}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"at min", 0, ScoreFloor},
		{"below min", -0.5, ScoreFloor},
		{"at ideal", 0.15, ScoreMid},
		{"at max", 0.30, ScoreCeiling},
		{"above max", 1.0, ScoreCeiling},
		{"halfway to ideal", 0.075, 50},
		{"halfway ideal to max", 0.225, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degraded := Normalize(tt.value, b, false)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.False(t, degraded)
		})
	}
}

func TestNormalizeInverse(t *testing.T) {
	b := Baseline{Min: 0.55, Ideal: 0.75, Max: 0.95}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"at min", 0.55, ScoreCeiling},
		{"below min", 0.10, ScoreCeiling},
		{"at ideal", 0.75, ScoreMid},
		{"at max", 0.95, ScoreFloor},
		{"above max", 1.20, ScoreFloor},
		{"halfway min to ideal", 0.65, 90},
		{"halfway ideal to max", 0.85, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degraded := Normalize(tt.value, b, true)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.False(t, degraded)
		})
	}
}

func TestNormalizeNonFinite(t *testing.T) {
	b := Baseline{Min: 0, Ideal: 0.5, Max: 1}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, degraded := Normalize(v, b, false)
		assert.Equal(t, ScoreFloor, got)
		assert.True(t, degraded)

		got, degraded = Normalize(v, b, true)
		assert.Equal(t, ScoreFloor, got)
		assert.True(t, degraded)
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	b := Baseline{Min: 300, Ideal: 800, Max: 2000}

	prev := -1.0
	for v := 0.0; v <= 2500; v += 25 {
		got, _ := Normalize(v, b, false)
		assert.GreaterOrEqual(t, got, prev, "forward must be non-decreasing at %v", v)
		assert.GreaterOrEqual(t, got, ScoreFloor)
		assert.LessOrEqual(t, got, ScoreCeiling)
		prev = got
	}

	prev = ScoreCeiling + 1
	for v := 0.0; v <= 2500; v += 25 {
		got, _ := Normalize(v, b, true)
		assert.LessOrEqual(t, got, prev, "inverse must be non-increasing at %v", v)
		prev = got
	}
}
