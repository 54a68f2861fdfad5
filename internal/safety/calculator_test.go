package safety

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

func TestComputeStatistics(t *testing.T) {
	stats, err := ComputeStatistics([]float64{100, 120, 110, 130, 125, 115, 140})
	require.NoError(t, err)

	assert.InDelta(t, 120.0, stats.MeanDemand, 1e-9)
	// Sample standard deviation (n-1 divisor): sqrt(1050/6)
	assert.InDelta(t, math.Sqrt(175), stats.StdDev, 1e-9)
}

func TestComputeStatistics_TooFewPoints(t *testing.T) {
	_, err := ComputeStatistics([]float64{100, 120})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
}

func TestComputeThresholds_ReferenceScenario(t *testing.T) {
	// demand [100,120,110,130,125,115,140], lead time 7, service level 0.95
	stats, err := ComputeStatistics([]float64{100, 120, 110, 130, 125, 115, 140})
	require.NoError(t, err)

	thresholds, err := ComputeThresholds(stats, 7, 0.95)
	require.NoError(t, err)

	// SS = z(0.95) * stddev * sqrt(7) with z(0.95) ~ 1.6449
	expectedSS := zScore(0.95) * stats.StdDev * math.Sqrt(7)
	assert.InDelta(t, expectedSS, thresholds.SafetyStock, 1e-9)
	assert.InDelta(t, 1.6449, zScore(0.95), 1e-3)

	// ROP = 120*7 + SS
	assert.InDelta(t, 840+expectedSS, thresholds.ReorderPoint, 1e-9)
}

func TestComputeThresholds_ZeroStdDev(t *testing.T) {
	stats := domain.DemandStatistics{MeanDemand: 100, StdDev: 0}

	thresholds, err := ComputeThresholds(stats, 7, 0.95)
	require.NoError(t, err)

	assert.Zero(t, thresholds.SafetyStock)
	assert.InDelta(t, 700.0, thresholds.ReorderPoint, 1e-9)
}

func TestComputeThresholds_MonotonicInServiceLevel(t *testing.T) {
	stats := domain.DemandStatistics{MeanDemand: 100, StdDev: 20}

	prev := -1.0
	for _, level := range []float64{0.5, 0.75, 0.9, 0.95, 0.99, 0.999} {
		thresholds, err := ComputeThresholds(stats, 7, level)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, thresholds.SafetyStock, prev,
			"safety stock must not decrease as service level rises (level %g)", level)
		prev = thresholds.SafetyStock
	}
}

func TestComputeThresholds_ReorderPointAtLeastSafetyStock(t *testing.T) {
	cases := []struct {
		name         string
		mean, stdDev float64
		leadTime     int
		serviceLevel float64
	}{
		{"typical", 120, 13.2, 7, 0.95},
		{"flat demand", 50, 0, 3, 0.9},
		{"high variance", 10, 40, 14, 0.99},
		{"low service level", 80, 15, 5, 0.55},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			thresholds, err := ComputeThresholds(domain.DemandStatistics{MeanDemand: tc.mean, StdDev: tc.stdDev}, tc.leadTime, tc.serviceLevel)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, thresholds.ReorderPoint, thresholds.SafetyStock)
			assert.GreaterOrEqual(t, thresholds.SafetyStock, 0.0)
		})
	}
}

func TestComputeThresholds_Validation(t *testing.T) {
	stats := domain.DemandStatistics{MeanDemand: 100, StdDev: 20}

	_, err := ComputeThresholds(stats, 0, 0.95)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	_, err = ComputeThresholds(stats, -3, 0.95)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	_, err = ComputeThresholds(stats, 7, 0)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	_, err = ComputeThresholds(stats, 7, 1)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	_, err = ComputeThresholds(stats, 7, 1.5)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
}

func TestZScore_KnownValues(t *testing.T) {
	// Reference quantiles of the standard normal distribution.
	assert.InDelta(t, 0.0, zScore(0.5), 1e-9)
	assert.InDelta(t, 1.2816, zScore(0.9), 1e-3)
	assert.InDelta(t, 1.6449, zScore(0.95), 1e-3)
	assert.InDelta(t, 2.3263, zScore(0.99), 1e-3)
	assert.InDelta(t, 3.0902, zScore(0.999), 1e-3)
	// Symmetry
	assert.InDelta(t, -zScore(0.95), zScore(0.05), 1e-6)
	// Tail region below the rational-approximation breakpoint
	assert.InDelta(t, -2.8782, zScore(0.002), 1e-3)
}

func TestEvaluateTrigger(t *testing.T) {
	thresholds := domain.SafetyThresholds{SafetyStock: 57, ReorderPoint: 897}

	below := EvaluateTrigger(150, thresholds)
	assert.True(t, below.NeedsAction)
	assert.InDelta(t, 747.0, below.Shortage, 1e-9)

	above := EvaluateTrigger(1000, thresholds)
	assert.False(t, above.NeedsAction)
	assert.Zero(t, above.Shortage)

	// Stock exactly at the reorder point is not a shortage.
	at := EvaluateTrigger(897, thresholds)
	assert.False(t, at.NeedsAction)
	assert.Zero(t, at.Shortage)
}
