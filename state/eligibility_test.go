package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programeryk/stateful-engagement-backend/models"
)

func TestEvaluateRewards(t *testing.T) {
	catalog := []models.Reward{
		{ID: "streak_3", Type: models.RewardTypeStreak, Threshold: 3},
		{ID: "streak_7", Type: models.RewardTypeStreak, Threshold: 7},
		{ID: "mystery", Type: "seasonal", Threshold: 1},
	}
	applied := map[string]bool{"streak_3": true}

	statuses := EvaluateRewards(5, catalog, applied)
	require.Len(t, statuses, 3)

	byID := map[string]RewardStatus{}
	for _, st := range statuses {
		byID[st.Reward.ID] = st
	}

	assert.True(t, byID["streak_3"].UnlockedNow)
	assert.True(t, byID["streak_3"].AppliedEver)

	assert.False(t, byID["streak_7"].UnlockedNow)
	assert.False(t, byID["streak_7"].AppliedEver)

	// Non-streak types never unlock, even with a trivially met threshold.
	assert.False(t, byID["mystery"].UnlockedNow)
}

func TestEvaluateRewards_EmptyCatalog(t *testing.T) {
	statuses := EvaluateRewards(10, nil, nil)
	assert.Empty(t, statuses)
}

func TestEvaluateRewards_ThresholdBoundary(t *testing.T) {
	catalog := []models.Reward{{ID: "streak_3", Type: models.RewardTypeStreak, Threshold: 3}}

	assert.False(t, EvaluateRewards(2, catalog, nil)[0].UnlockedNow)
	assert.True(t, EvaluateRewards(3, catalog, nil)[0].UnlockedNow)
	assert.True(t, EvaluateRewards(4, catalog, nil)[0].UnlockedNow)
}
