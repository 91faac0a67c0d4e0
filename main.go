package main

import (
	"github.com/programeryk/stateful-engagement-backend/config"
	"github.com/programeryk/stateful-engagement-backend/models"
	"github.com/programeryk/stateful-engagement-backend/routes"
	"github.com/programeryk/stateful-engagement-backend/store"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.UserState{},
		&models.DailyCheckIn{},
		&models.Reward{},
		&models.AppliedReward{},
		&models.ToolDefinition{},
		&models.UserTool{},
	)

	st := store.NewGormStore(db)
	r := routes.SetupRouter(db, st)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
