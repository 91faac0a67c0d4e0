package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programeryk/stateful-engagement-backend/models"
)

func intPtr(v int) *int { return &v }

func TestApply_ClampsMeters(t *testing.T) {
	s := models.UserState{Level: 1, Energy: 10, Fatigue: 95}

	next, _ := Apply(s, Deltas{Energy: -50, Fatigue: 50})
	assert.Equal(t, 0, next.Energy)
	assert.Equal(t, 100, next.Fatigue)

	next, _ = Apply(s, Deltas{Energy: 5, Fatigue: -200})
	assert.Equal(t, 15, next.Energy)
	assert.Equal(t, 0, next.Fatigue)
}

func TestApply_MetersAlwaysInRange(t *testing.T) {
	// Sweep a grid of states and deltas; energy/fatigue must never escape [0,100].
	for energy := 0; energy <= 100; energy += 25 {
		for delta := -150; delta <= 150; delta += 30 {
			s := models.UserState{Level: 3, Energy: energy, Fatigue: energy}
			next, _ := Apply(s, Deltas{Energy: delta, Fatigue: -delta})
			require.GreaterOrEqual(t, next.Energy, 0)
			require.LessOrEqual(t, next.Energy, 100)
			require.GreaterOrEqual(t, next.Fatigue, 0)
			require.LessOrEqual(t, next.Fatigue, 100)
		}
	}
}

func TestApply_LevelUpResetsEnergy(t *testing.T) {
	s := models.UserState{Level: 2, Energy: 90}

	next, meta := Apply(s, Deltas{Energy: 20})
	assert.True(t, meta.LeveledUp)
	assert.Equal(t, 3, next.Level)
	// Overflow beyond the cap is discarded, not carried into the new level.
	assert.Equal(t, 0, next.Energy)

	next, meta = Apply(s, Deltas{Energy: 9})
	assert.False(t, meta.LeveledUp)
	assert.Equal(t, 2, next.Level)
	assert.Equal(t, 99, next.Energy)
}

func TestApply_LevelUpAtExactCap(t *testing.T) {
	s := models.UserState{Level: 1, Energy: 80}
	next, meta := Apply(s, Deltas{Energy: 20})
	assert.True(t, meta.LeveledUp)
	assert.Equal(t, 2, next.Level)
	assert.Equal(t, 0, next.Energy)
}

func TestLoyaltyMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, LoyaltyMultiplier(1))
	assert.InDelta(t, 1.25, LoyaltyMultiplier(6), 1e-9)
	assert.Equal(t, 1.5, LoyaltyMultiplier(11))
	// Capped beyond level 11.
	assert.Equal(t, 1.5, LoyaltyMultiplier(40))

	// Monotone non-decreasing in level.
	prev := 0.0
	for level := 1; level <= 50; level++ {
		m := LoyaltyMultiplier(level)
		require.GreaterOrEqual(t, m, prev)
		require.LessOrEqual(t, m, 1.5)
		prev = m
	}
}

func TestApply_LoyaltyScaling(t *testing.T) {
	s := models.UserState{Level: 6, Loyalty: 10}

	// Positive gains are scaled by the level multiplier and rounded.
	next, meta := Apply(s, Deltas{Loyalty: 10})
	assert.Equal(t, 13, meta.LoyaltyApplied) // round(10 * 1.25)
	assert.Equal(t, 23, next.Loyalty)
	assert.InDelta(t, 1.25, meta.LoyaltyMultiplier, 1e-9)

	// Non-positive deltas pass through unscaled.
	next, meta = Apply(s, Deltas{Loyalty: -10})
	assert.Equal(t, -10, meta.LoyaltyApplied)
	assert.Equal(t, 0, next.Loyalty)
	assert.Equal(t, 1.0, meta.LoyaltyMultiplier)

	next, meta = Apply(s, Deltas{})
	assert.Equal(t, 0, meta.LoyaltyApplied)
	assert.Equal(t, 10, next.Loyalty)
}

func TestApply_LoyaltyUnclamped(t *testing.T) {
	s := models.UserState{Level: 1, Loyalty: 150}
	next, _ := Apply(s, Deltas{Loyalty: 100})
	assert.Equal(t, 250, next.Loyalty)
}

func TestApply_StreakOverride(t *testing.T) {
	s := models.UserState{Level: 1, Streak: 4}

	next, _ := Apply(s, Deltas{Energy: 1})
	assert.Equal(t, 4, next.Streak, "streak unchanged without override")

	next, _ = Apply(s, Deltas{Streak: intPtr(1)})
	assert.Equal(t, 1, next.Streak)
}

func TestDeltas_Add(t *testing.T) {
	d := Deltas{Energy: 20, Fatigue: 10, Loyalty: 5}
	d = d.Add(models.Effects{Energy: 10, Loyalty: 50})
	d = d.Add(models.Effects{Fatigue: -5})
	assert.Equal(t, Deltas{Energy: 30, Fatigue: 5, Loyalty: 55}, d)
}
