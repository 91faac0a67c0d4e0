package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programeryk/stateful-engagement-backend/models"
)

func TestGetState_CreatesDefaultsOnFirstAccess(t *testing.T) {
	m := newTestStore(t)
	svc := NewProfileService(m, testLogger(), false)

	st, err := svc.GetState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLevel, st.Level)
	assert.Equal(t, models.DefaultEnergy, st.Energy)
	assert.Equal(t, 0, st.Fatigue)
	assert.Equal(t, 0, st.Loyalty)
	assert.Equal(t, 0, st.Streak)

	// Second access returns the same row, not a reset.
	seedState(t, m, models.UserState{UserID: 1, Level: 3, Energy: 10, Loyalty: 40})
	st, err = svc.GetState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Level)
	assert.Equal(t, 40, st.Loyalty)
}

func TestGrantLoyalty_DisabledReportsNotFound(t *testing.T) {
	m := newTestStore(t)
	svc := NewProfileService(m, testLogger(), false)

	_, err := svc.GrantLoyalty(context.Background(), 1, 100)
	assert.True(t, IsNotFound(err))
}

func TestGrantLoyalty_AppliesMultiplier(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 6, Loyalty: 10})
	svc := NewProfileService(m, testLogger(), true)

	res, err := svc.GrantLoyalty(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 13, res.Meta.LoyaltyApplied) // round(10 * 1.25)
	assert.Equal(t, 23, res.State.Loyalty)
}

func TestGrantLoyalty_RejectsNonPositiveAmount(t *testing.T) {
	m := newTestStore(t)
	svc := NewProfileService(m, testLogger(), true)

	_, err := svc.GrantLoyalty(context.Background(), 1, 0)
	assert.True(t, IsConflict(err))
	_, err = svc.GrantLoyalty(context.Background(), 1, -5)
	assert.True(t, IsConflict(err))
}
