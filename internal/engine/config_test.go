package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/bistro-cli/internal/model"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.InDelta(t, 1.0, WeightSum(cfg), 0.005)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Weights[model.IndicatorNetMargin] = -0.1 }},
		{"weights not summing to one", func(c *Config) { c.Weights[model.IndicatorNetMargin] = 0.9 }},
		{"unordered baseline", func(c *Config) {
			c.Baselines[model.IndicatorGrossMargin] = Baseline{Min: 0.8, Ideal: 0.65, Max: 0.4}
		}},
		{"missing baseline", func(c *Config) { delete(c.Baselines, model.IndicatorCostRate) }},
		{"missing fallback benchmark", func(c *Config) { delete(c.Benchmarks, model.BusinessOther) }},
		{"zero wage", func(c *Config) { c.AssumedMonthlyWage = 0 }},
		{"bad operating days", func(c *Config) { c.OperatingDays = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestResolveBenchmark(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		bt   model.BusinessType
		want float64 // expected table turnover
	}{
		{"known type", model.BusinessFastFood, 4.0},
		{"tea drinks", model.BusinessTeaDrinks, 6.0},
		{"unknown label", model.BusinessType("food_truck"), 2.5},
		{"empty label", model.BusinessType(""), 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.ResolveBenchmark(tt.bt)
			assert.Equal(t, tt.want, got.TableTurnover)
		})
	}
}

func TestLoadTuningOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"assumed_monthly_wage: 5200\noperating_days: 26\n",
	), 0o644))

	cfg, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 5200.0, cfg.AssumedMonthlyWage)
	assert.Equal(t, 26, cfg.OperatingDays)
	// Untouched keys keep defaults.
	assert.InDelta(t, 1.0, WeightSum(cfg), 0.005)
}

func TestLoadTuningMissingFile(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
