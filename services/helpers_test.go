package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/programeryk/stateful-engagement-backend/models"
	"github.com/programeryk/stateful-engagement-backend/store"
)

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	m := store.NewMemoryStore()
	require.NoError(t, m.SeedCatalog(
		[]models.Reward{
			{ID: "streak_3", Title: "3 Day streak", Type: models.RewardTypeStreak, Threshold: 3,
				Effects: models.Effects{Loyalty: 50}},
			{ID: "streak_7", Title: "7 Day streak", Type: models.RewardTypeStreak, Threshold: 7,
				Effects: models.Effects{Energy: 10}},
		},
		[]models.ToolDefinition{
			{ID: "snack", Name: "Snack", Price: 5},
			{ID: "coffee", Name: "Coffee", Price: 10, Effects: models.Effects{Energy: 15, Fatigue: -10}},
			{ID: "music", Name: "Music", Price: 15},
			{ID: "book", Name: "Book", Price: 20},
			{ID: "candle", Name: "Candle", Price: 25},
			{ID: "nap", Name: "Nap", Price: 30, Effects: models.Effects{Fatigue: -30}},
		},
	))
	return m
}

func seedState(t *testing.T, m *store.MemoryStore, s models.UserState) {
	t.Helper()
	require.NoError(t, m.Atomic(context.Background(), func(tx store.Tx) error {
		return tx.SaveUserState(&s)
	}))
}

func loadState(t *testing.T, m *store.MemoryStore, userID uint) *models.UserState {
	t.Helper()
	var out *models.UserState
	require.NoError(t, m.Atomic(context.Background(), func(tx store.Tx) error {
		var err error
		out, err = tx.UserState(userID)
		return err
	}))
	return out
}

func testLogger() *zap.Logger { return zap.NewNop() }
