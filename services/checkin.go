package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/programeryk/stateful-engagement-backend/models"
	"github.com/programeryk/stateful-engagement-backend/state"
	"github.com/programeryk/stateful-engagement-backend/store"
)

// Base meter gains awarded for every successful check-in, before reward
// effects and before the loyalty level multiplier.
const (
	baseEnergyGain  = 20
	baseFatigueGain = 10
	baseLoyaltyGain = 5
)

// CheckInService processes daily check-ins.
type CheckInService struct {
	store store.Store
	log   *zap.SugaredLogger
	// now is swappable for tests.
	now func() time.Time
}

// NewCheckInService creates the processor.
func NewCheckInService(st store.Store, logger *zap.Logger) *CheckInService {
	return &CheckInService{store: st, log: logger.Sugar(), now: time.Now}
}

// AppliedRewardInfo identifies a reward granted during this check-in.
type AppliedRewardInfo struct {
	RewardID string `json:"reward_id"`
	Title    string `json:"title"`
}

// CheckInResult is the committed outcome of one check-in.
type CheckInResult struct {
	OK           bool                 `json:"ok"`
	CheckIn      *models.DailyCheckIn `json:"check_in"`
	Streak       int                  `json:"streak"`
	NewlyApplied []AppliedRewardInfo  `json:"newly_applied"`
	State        *models.UserState    `json:"state"`
	Meta         state.Meta           `json:"meta"`
}

// CheckIn records one daily check-in as a single atomic unit: the day
// marker, the streak update, any first-time reward grants and the meter
// update all commit together or not at all.
//
// Double check-in protection is the uniqueness constraint on the day
// marker, not elevated isolation: the second concurrent inserter loses on
// the constraint and surfaces a Conflict.
func (s *CheckInService) CheckIn(ctx context.Context, userID uint) (*CheckInResult, error) {
	today := models.UTCDay(s.now())
	yesterday := today.AddDate(0, 0, -1)

	var result *CheckInResult
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		current, err := tx.UserState(userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound("engagement state not initialized; call /me/state first")
			}
			return err
		}

		checkedYesterday, err := tx.HasCheckIn(userID, yesterday)
		if err != nil {
			return err
		}
		newStreak := 1
		if checkedYesterday {
			newStreak = current.Streak + 1
		}

		checkIn := &models.DailyCheckIn{UserID: userID, Day: today}
		if err := tx.CreateCheckIn(checkIn); err != nil {
			if store.Classify(err).Kind == store.FailureUnique {
				return conflict("already checked in today")
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

		deltas := state.Deltas{
			Energy:  baseEnergyGain,
			Fatigue: baseFatigueGain,
			Loyalty: baseLoyaltyGain,
			Streak:  &newStreak,
		}
		newly := []AppliedRewardInfo{}
		for _, rs := range state.EvaluateRewards(newStreak, catalog, applied) {
			if !rs.UnlockedNow || rs.AppliedEver {
				continue
			}
			inserted, err := tx.ApplyRewardOnce(userID, rs.Reward.ID)
			if err != nil {
				if store.Classify(err).Kind == store.FailureUnique {
					// A concurrent transaction granted it first; skip, don't abort.
					continue
				}
				return err
			}
			if !inserted {
				continue
			}
			deltas = deltas.Add(rs.Reward.Effects)
			newly = append(newly, AppliedRewardInfo{RewardID: rs.Reward.ID, Title: rs.Reward.Title})
		}

		next, meta := state.Apply(*current, deltas)
		if err := tx.SaveUserState(&next); err != nil {
			return err
		}

		result = &CheckInResult{
			OK:           true,
			CheckIn:      checkIn,
			Streak:       newStreak,
			NewlyApplied: newly,
			State:        &next,
			Meta:         meta,
		}
		return nil
	})
	if err != nil {
		err = translateStoreError(err)
		var c *ConflictError
		if errors.As(err, &c) && !c.Retryable {
			s.log.Debugw("check-in rejected", "user_id", userID, "reason", c.Msg)
		}
		return nil, err
	}

	if result.Meta.LeveledUp {
		s.log.Infow("user leveled up on check-in", "user_id", userID, "level", result.State.Level)
	}
	return result, nil
}
