package state

import "github.com/programeryk/stateful-engagement-backend/models"

// RewardStatus reports one catalog entry against a user's current streak and
// grant history.
type RewardStatus struct {
	Reward      models.Reward `json:"reward"`
	UnlockedNow bool          `json:"unlocked_now"`
	AppliedEver bool          `json:"applied_ever"`
}

// EvaluateRewards maps the catalog to per-reward status. Only streak-type
// rewards can unlock; anything else reports UnlockedNow=false regardless of
// threshold. AppliedEver is pure set membership.
func EvaluateRewards(streak int, catalog []models.Reward, applied map[string]bool) []RewardStatus {
	statuses := make([]RewardStatus, 0, len(catalog))
	for _, r := range catalog {
		statuses = append(statuses, RewardStatus{
			Reward:      r,
			UnlockedNow: r.Type == models.RewardTypeStreak && streak >= r.Threshold,
			AppliedEver: applied[r.ID],
		})
	}
	return statuses
}
