package rng

import (
	"fmt"
	"testing"

	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tier = "award1"

func weighted(weights ...float64) []models.Candidate {
	pool := make([]models.Candidate, len(weights))
	for i, w := range weights {
		pool[i] = models.Candidate{
			ID:      fmt.Sprintf("c%d", i),
			Weights: map[string]float64{tier: w},
		}
	}
	return pool
}

func TestSelectIndex_FrequenciesFollowWeights(t *testing.T) {
	sel := NewSeededSelector(42)
	pool := weighted(1, 2, 3, 4)
	const trials = 20000

	counts := make([]int, len(pool))
	for i := 0; i < trials; i++ {
		idx, ok := sel.SelectIndex(pool, tier)
		require.True(t, ok)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(pool))
		counts[idx]++
	}

	// chi-square, 3 degrees of freedom, p = 0.001
	chi := 0.0
	for i, c := range counts {
		expected := float64(trials) * pool[i].Weights[tier] / 10
		d := float64(c) - expected
		chi += d * d / expected
	}
	assert.Less(t, chi, 16.27, "counts %v", counts)
}

func TestSelectIndex_DefaultWeightIsOne(t *testing.T) {
	sel := NewSeededSelector(7)
	pool := []models.Candidate{{ID: "a"}, {ID: "b"}}
	seen := map[int]int{}
	for i := 0; i < 2000; i++ {
		idx, ok := sel.SelectIndex(pool, tier)
		require.True(t, ok)
		seen[idx]++
	}
	assert.InDelta(t, 1000, seen[0], 150)
	assert.InDelta(t, 1000, seen[1], 150)
}

func TestSelectIndex_AllZeroReturnsNone(t *testing.T) {
	sel := NewSeededSelector(1)

	tests := []struct {
		name string
		pool []models.Candidate
	}{
		{name: "all zero", pool: weighted(0, 0, 0)},
		{name: "negative counts as zero", pool: weighted(-1, 0)},
		{name: "empty pool", pool: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				idx, ok := sel.SelectIndex(tt.pool, tier)
				assert.False(t, ok)
				assert.Equal(t, -1, idx)
			}
		})
	}
}

func TestSelectIndex_ZeroWeightNeverChosen(t *testing.T) {
	sel := NewSeededSelector(3)
	pool := weighted(0, 5, 0, 1)
	for i := 0; i < 5000; i++ {
		idx, _ := sel.SelectIndex(pool, tier)
		assert.NotContains(t, []int{0, 2}, idx)
	}
}

func TestSelectIndex_LockedTakesPrecedence(t *testing.T) {
	sel := NewSeededSelector(99)
	pool := weighted(100, 1, 1, 100, 0)
	pool[1].Locked = true
	pool[2].Locked = true
	pool[4].Locked = true // zero weight, not eligible

	counts := map[int]int{}
	const trials = 10000
	for i := 0; i < trials; i++ {
		idx, ok := sel.SelectIndex(pool, tier)
		require.True(t, ok)
		counts[idx]++
	}
	require.Len(t, counts, 2)
	assert.InDelta(t, trials/2, counts[1], trials*0.03)
	assert.InDelta(t, trials/2, counts[2], trials*0.03)
}

func TestSelectIndex_LockedWithZeroWeightFallsThrough(t *testing.T) {
	sel := NewSeededSelector(5)
	pool := weighted(0, 1, 1)
	pool[0].Locked = true

	for i := 0; i < 1000; i++ {
		idx, ok := sel.SelectIndex(pool, tier)
		require.True(t, ok)
		assert.NotEqual(t, 0, idx)
	}
}

func TestSecureSelector(t *testing.T) {
	sel, err := NewSecureSelector()
	require.NoError(t, err)

	pool := weighted(1, 1, 1)
	for i := 0; i < 100; i++ {
		idx, ok := sel.SelectIndex(pool, tier)
		require.True(t, ok)
		assert.Less(t, idx, 3)
	}

	src, err := NewCSPRNG()
	require.NoError(t, err)
	assert.NotEqual(t, src.Uint64(), src.Uint64())
}
