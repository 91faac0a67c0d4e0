package services

import (
	"context"
	"errors"

	"github.com/programeryk/stateful-engagement-backend/state"
	"github.com/programeryk/stateful-engagement-backend/store"
)

// RewardService answers the read-only reward status query.
type RewardService struct {
	store store.Store
}

// NewRewardService creates the service.
func NewRewardService(st store.Store) *RewardService {
	return &RewardService{store: st}
}

// RewardStatusView is one catalog entry with its per-user status flattened
// for the API.
type RewardStatusView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Threshold   int    `json:"threshold"`
	UnlockedNow bool   `json:"unlocked_now"`
	AppliedEver bool   `json:"applied_ever"`
}

// RewardStatusResult is the full status response.
type RewardStatusResult struct {
	UserID  uint               `json:"user_id"`
	Rewards []RewardStatusView `json:"rewards"`
}

// Status evaluates the whole catalog against the user's current streak and
// grant history. Requires an initialized state, same as check-in.
func (s *RewardService) Status(ctx context.Context, userID uint) (*RewardStatusResult, error) {
	var result *RewardStatusResult
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		current, err := tx.UserState(userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound("engagement state not initialized; call /me/state first")
			}
			return err
		}
		catalog, err := tx.Rewards()
		if err != nil {
			return err
		}
		applied, err := tx.AppliedRewardIDs(userID)
		if err != nil {
			return err
		}

		statuses := state.EvaluateRewards(current.Streak, catalog, applied)
		views := make([]RewardStatusView, 0, len(statuses))
		for _, st := range statuses {
			views = append(views, RewardStatusView{
				ID:          st.Reward.ID,
				Title:       st.Reward.Title,
				Description: st.Reward.Description,
				Type:        st.Reward.Type,
				Threshold:   st.Reward.Threshold,
				UnlockedNow: st.UnlockedNow,
				AppliedEver: st.AppliedEver,
			})
		}
		result = &RewardStatusResult{UserID: userID, Rewards: views}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return result, nil
}
