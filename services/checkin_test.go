package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programeryk/stateful-engagement-backend/models"
	"github.com/programeryk/stateful-engagement-backend/store"
)

var fixedNow = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

func newCheckInService(m *store.MemoryStore) *CheckInService {
	svc := NewCheckInService(m, testLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func markCheckIn(t *testing.T, m *store.MemoryStore, userID uint, day time.Time) {
	t.Helper()
	require.NoError(t, m.Atomic(context.Background(), func(tx store.Tx) error {
		return tx.CreateCheckIn(&models.DailyCheckIn{UserID: userID, Day: models.UTCDay(day)})
	}))
}

func TestCheckIn_RequiresInitializedState(t *testing.T) {
	m := newTestStore(t)
	svc := newCheckInService(m)

	_, err := svc.CheckIn(context.Background(), 1)
	assert.True(t, IsNotFound(err), "expected NotFound, got %v", err)
}

func TestCheckIn_FirstCheckIn(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 1, Energy: 50})
	svc := newCheckInService(m)

	res, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Streak)
	assert.Empty(t, res.NewlyApplied)
	assert.Equal(t, models.UTCDay(fixedNow), res.CheckIn.Day)

	assert.Equal(t, 70, res.State.Energy)
	assert.Equal(t, 10, res.State.Fatigue)
	assert.Equal(t, 5, res.State.Loyalty) // level 1: multiplier is exactly 1
	assert.Equal(t, 1, res.State.Streak)
	assert.False(t, res.Meta.LeveledUp)
}

func TestCheckIn_DuplicateSameDay(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 1})
	svc := newCheckInService(m)

	_, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), 1)
	assert.True(t, IsConflict(err), "expected Conflict, got %v", err)

	// The losing attempt left no trace on the meters.
	st := loadState(t, m, 1)
	assert.Equal(t, 5, st.Loyalty)
	assert.Equal(t, 1, st.Streak)
}

func TestCheckIn_StreakContinuationAndAutoGrant(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 1, Energy: 10, Streak: 2})
	markCheckIn(t, m, 1, fixedNow.AddDate(0, 0, -1))
	svc := newCheckInService(m)

	res, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Streak)
	require.Len(t, res.NewlyApplied, 1)
	assert.Equal(t, "streak_3", res.NewlyApplied[0].RewardID)

	// Reward effects fold into the same meter update as the base gains:
	// loyalty 5 + 50 = 55 at multiplier 1.
	assert.Equal(t, 55, res.State.Loyalty)
	assert.Equal(t, 30, res.State.Energy)
	assert.Equal(t, 55, res.Meta.LoyaltyApplied)
}

func TestCheckIn_GapResetsStreak(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 1, Streak: 5})
	markCheckIn(t, m, 1, fixedNow.AddDate(0, 0, -2))
	svc := newCheckInService(m)

	res, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
}

func TestCheckIn_RewardNeverReapplied(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 1, Streak: 3})
	markCheckIn(t, m, 1, fixedNow.AddDate(0, 0, -1))
	require.NoError(t, m.Atomic(context.Background(), func(tx store.Tx) error {
		_, err := tx.ApplyRewardOnce(1, "streak_3")
		return err
	}))
	svc := newCheckInService(m)

	res, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Streak)
	assert.Empty(t, res.NewlyApplied)
	assert.Equal(t, 5, res.State.Loyalty, "only base gain, streak_3 effects not repeated")
}

func TestCheckIn_LevelUpOnBaseGain(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 2, Energy: 80})
	svc := newCheckInService(m)

	res, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, res.Meta.LeveledUp)
	assert.Equal(t, 3, res.State.Level)
	assert.Equal(t, 0, res.State.Energy, "overflow discarded on level-up")
}

func TestCheckIn_ConcurrentSameDay(t *testing.T) {
	m := newTestStore(t)
	seedState(t, m, models.UserState{UserID: 1, Level: 1, Streak: 2})
	markCheckIn(t, m, 1, fixedNow.AddDate(0, 0, -1))
	svc := newCheckInService(m)

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CheckIn(context.Background(), 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one check-in wins the day")
	assert.Equal(t, attempts-1, conflicts)

	// The winner applied streak_3 exactly once.
	st := loadState(t, m, 1)
	assert.Equal(t, 3, st.Streak)
	assert.Equal(t, 55, st.Loyalty)

	require.NoError(t, m.Atomic(context.Background(), func(tx store.Tx) error {
		applied, err := tx.AppliedRewardIDs(1)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"streak_3": true}, applied)
		return nil
	}))
}
