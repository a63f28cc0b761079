package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 500_000.0, cfg.Filters.MaxPrice)
	assert.Equal(t, 50_000, cfg.Filters.MinPopulation)
	assert.Contains(t, cfg.Filters.RejectedTitles, "leasehold")

	assert.Equal(t, "rule-based", cfg.Reno.Mode)
	assert.Equal(t, 1200.0, cfg.Reno.CostPerSqm["MODERATE"])
	assert.Equal(t, 20, cfg.Reno.WeeksPerLevel["FULL_GUT"])
	assert.Equal(t, 0.15, cfg.Reno.ContingencyPct)

	assert.Equal(t, 15.0, cfg.Strategy.FlipROITarget)
	assert.Equal(t, 9.0, cfg.Strategy.RentalYieldTarget)
	assert.Equal(t, 1.5, cfg.Strategy.FlipPreference)

	assert.Equal(t, 0.40, cfg.Scoring.Weights.ROI)
	assert.Equal(t, 75.0, cfg.Scoring.StrongBuyCut)
	assert.Equal(t, 65*time.Second, cfg.Vision.CallInterval)
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("DEALSCOUT_FILTERS_MAX_PRICE", "650000")
	defer os.Unsetenv("DEALSCOUT_FILTERS_MAX_PRICE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 650_000.0, cfg.Filters.MaxPrice)
}

func TestScoreWeights_Map(t *testing.T) {
	w := ScoreWeights{ROI: 0.4, Timeline: 0.15, Confidence: 0.15, Subdivision: 0.15, Location: 0.1, Insurability: 0.05}
	m := w.Map()
	assert.Len(t, m, 6)
	assert.Equal(t, 0.4, m["roi"])
	assert.Equal(t, 0.05, m["insurability"])
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
