package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programeryk/stateful-engagement-backend/models"
)

func TestMemoryStore_RollbackOnError(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.Atomic(ctx, func(tx Tx) error {
		if _, err := tx.EnsureUserState(1); err != nil {
			return err
		}
		if err := tx.CreateCheckIn(&models.DailyCheckIn{UserID: 1, Day: models.UTCDay(time.Now())}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed transaction is visible.
	err = m.Atomic(ctx, func(tx Tx) error {
		_, err := tx.UserState(1)
		assert.ErrorIs(t, err, ErrNotFound)
		has, err := tx.HasCheckIn(1, models.UTCDay(time.Now()))
		require.NoError(t, err)
		assert.False(t, has)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_CheckInUniqueness(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	day := models.UTCDay(time.Now())

	require.NoError(t, m.Atomic(ctx, func(tx Tx) error {
		return tx.CreateCheckIn(&models.DailyCheckIn{UserID: 1, Day: day})
	}))

	err := m.Atomic(ctx, func(tx Tx) error {
		return tx.CreateCheckIn(&models.DailyCheckIn{UserID: 1, Day: day})
	})
	var uv *UniqueViolationError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "uniq_user_day", uv.Constraint)

	// Another user or another day is fine.
	require.NoError(t, m.Atomic(ctx, func(tx Tx) error {
		if err := tx.CreateCheckIn(&models.DailyCheckIn{UserID: 2, Day: day}); err != nil {
			return err
		}
		return tx.CreateCheckIn(&models.DailyCheckIn{UserID: 1, Day: day.AddDate(0, 0, 1)})
	}))
}

func TestMemoryStore_ApplyRewardOnce(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Atomic(ctx, func(tx Tx) error {
		inserted, err := tx.ApplyRewardOnce(1, "streak_3")
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = tx.ApplyRewardOnce(1, "streak_3")
		require.NoError(t, err)
		assert.False(t, inserted, "second insert is a silent no-op")

		applied, err := tx.AppliedRewardIDs(1)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"streak_3": true}, applied)
		return nil
	}))
}

func TestMemoryStore_ToolInventory(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, m.SeedCatalog(nil, []models.ToolDefinition{
		{ID: "nap", Name: "Nap", Price: 30},
		{ID: "coffee", Name: "Coffee", Price: 10},
	}))

	require.NoError(t, m.Atomic(ctx, func(tx Tx) error {
		tools, err := tx.Tools()
		require.NoError(t, err)
		require.Len(t, tools, 2)
		assert.Equal(t, "coffee", tools[0].ID, "catalog sorted by price")

		_, err = tx.Tool("missing")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, tx.SaveUserTool(&models.UserTool{UserID: 1, ToolID: "coffee", Quantity: 2}))
		require.NoError(t, tx.SaveUserTool(&models.UserTool{UserID: 1, ToolID: "nap", Quantity: 1}))

		count, err := tx.CountHeldTools(1)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, tx.DeleteUserTool(1, "nap"))
		count, err = tx.CountHeldTools(1)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = tx.UserTool(1, "nap")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}

func TestMemoryStore_SeedCatalogValidatesEffects(t *testing.T) {
	m := NewMemoryStore()
	err := m.SeedCatalog([]models.Reward{
		{ID: "bad", Type: models.RewardTypeStreak, Threshold: 1, Effects: models.Effects{Loyalty: 100000}},
	}, nil)
	assert.Error(t, err)
}
