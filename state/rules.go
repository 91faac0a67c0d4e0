// Package state holds the pure engagement rules: meter arithmetic, level-up
// and reward eligibility. Nothing here touches I/O; both the check-in and
// the tool processors run their numeric logic through this package so the
// two paths cannot drift apart.
package state

import (
	"math"

	"github.com/programeryk/stateful-engagement-backend/models"
)

const (
	// MeterMin and MeterMax bound energy and fatigue.
	MeterMin = 0
	MeterMax = 100

	// MaxLoyaltyMultiplier caps the level bonus on positive loyalty gains.
	MaxLoyaltyMultiplier = 1.5
)

// Deltas is one bundle of meter changes. Zero fields mean "no change".
// Streak, when non-nil, overrides the stored streak value.
type Deltas struct {
	Energy  int
	Fatigue int
	Loyalty int
	Streak  *int
}

// Add folds another delta bundle into d. Used by the check-in processor to
// accumulate reward effects on top of the base gains.
func (d Deltas) Add(e models.Effects) Deltas {
	d.Energy += e.Energy
	d.Fatigue += e.Fatigue
	d.Loyalty += e.Loyalty
	return d
}

// Meta describes what Apply did, for responses and tests.
type Meta struct {
	LeveledUp         bool    `json:"leveled_up"`
	LoyaltyMultiplier float64 `json:"loyalty_multiplier"`
	LoyaltyApplied    int     `json:"loyalty_applied"`
}

// LoyaltyMultiplier scales positive loyalty gains by level: 1 at level 1,
// +0.05 per level, capped at MaxLoyaltyMultiplier.
func LoyaltyMultiplier(level int) float64 {
	raw := 1 + 0.05*float64(level-1)
	return math.Min(raw, MaxLoyaltyMultiplier)
}

// Apply computes the next state from the current one and a delta bundle.
//
// Energy and fatigue are clamped to [0,100]. The loyalty multiplier applies
// only to positive loyalty deltas; non-positive deltas pass through
// unscaled. When energy lands at the cap the user levels up and energy
// resets to zero; the overflow is discarded, not carried into the new level.
func Apply(s models.UserState, d Deltas) (models.UserState, Meta) {
	mult := 1.0
	if d.Loyalty > 0 {
		mult = LoyaltyMultiplier(s.Level)
	}
	loyaltyApplied := int(math.Round(float64(d.Loyalty) * mult))

	next := s
	next.Energy = clamp(s.Energy+d.Energy, MeterMin, MeterMax)
	next.Fatigue = clamp(s.Fatigue+d.Fatigue, MeterMin, MeterMax)
	next.Loyalty = s.Loyalty + loyaltyApplied
	if d.Streak != nil {
		next.Streak = *d.Streak
	}

	meta := Meta{LoyaltyMultiplier: mult, LoyaltyApplied: loyaltyApplied}
	if next.Energy >= MeterMax {
		meta.LeveledUp = true
		next.Level++
		next.Energy = 0
	}
	return next, meta
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
