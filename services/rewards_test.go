package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programeryk/stateful-engagement-backend/models"
	"github.com/programeryk/stateful-engagement-backend/store"
)

func TestRewardStatus_RequiresState(t *testing.T) {
	m := newTestStore(t)
	svc := NewRewardService(m)

	_, err := svc.Status(context.Background(), 1)
	assert.True(t, IsNotFound(err), "expected NotFound, got %v", err)
}

func TestRewardStatus(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 1, Streak: 4})
	require.NoError(t, m.Atomic(context.Background(), func(tx store.Tx) error {
		_, err := tx.ApplyRewardOnce(1, "streak_3")
		return err
	}))
	svc := NewRewardService(m)

	res, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.UserID)
	require.Len(t, res.Rewards, 2)

	byID := map[string]RewardStatusView{}
	for _, r := range res.Rewards {
		byID[r.ID] = r
	}

	assert.True(t, byID["streak_3"].UnlockedNow)
	assert.True(t, byID["streak_3"].AppliedEver)
	assert.Equal(t, 3, byID["streak_3"].Threshold)

	assert.False(t, byID["streak_7"].UnlockedNow)
	assert.False(t, byID["streak_7"].AppliedEver)
}
