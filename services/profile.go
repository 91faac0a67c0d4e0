package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/programeryk/stateful-engagement-backend/models"
	"github.com/programeryk/stateful-engagement-backend/state"
	"github.com/programeryk/stateful-engagement-backend/store"
)

// ProfileService owns state initialization and the development-only loyalty
// grant. Whether the grant is available is fixed at construction time from
// configuration, never read from the process environment at call time.
type ProfileService struct {
	store        store.Store
	log          *zap.SugaredLogger
	loyaltyGrant bool
}

// NewProfileService creates the service. loyaltyGrant enables the dev grant
// endpoint behavior.
func NewProfileService(st store.Store, logger *zap.Logger, loyaltyGrant bool) *ProfileService {
	return &ProfileService{store: st, log: logger.Sugar(), loyaltyGrant: loyaltyGrant}
}

// GetState returns the user's engagement state, creating it with defaults
// on first access.
func (s *ProfileService) GetState(ctx context.Context, userID uint) (*models.UserState, error) {
	var st *models.UserState
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		st, err = tx.EnsureUserState(userID)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return st, nil
}

// GrantResult reports a loyalty grant.
type GrantResult struct {
	OK    bool              `json:"ok"`
	State *models.UserState `json:"state"`
	Meta  state.Meta        `json:"meta"`
}

// GrantLoyalty credits loyalty through the meter engine, so the level
// multiplier applies exactly as it would on any other gain. Disabled
// deployments report NotFound, indistinguishable from an absent route.
func (s *ProfileService) GrantLoyalty(ctx context.Context, userID uint, amount int) (*GrantResult, error) {
	if !s.loyaltyGrant {
		return nil, notFound("not found")
	}
	if amount <= 0 {
		return nil, conflict("grant amount must be positive")
	}

	var result *GrantResult
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		current, err := tx.EnsureUserState(userID)
		if err != nil {
			return err
		}
		next, meta := state.Apply(*current, state.Deltas{Loyalty: amount})
		if err := tx.SaveUserState(&next); err != nil {
			return err
		}
		result = &GrantResult{OK: true, State: &next, Meta: meta}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.log.Warnw("dev loyalty grant applied", "user_id", userID, "amount", amount)
	return result, nil
}
