package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/programeryk/stateful-engagement-backend/config"
	"github.com/programeryk/stateful-engagement-backend/controllers"
	"github.com/programeryk/stateful-engagement-backend/middleware"
	"github.com/programeryk/stateful-engagement-backend/services"
	"github.com/programeryk/stateful-engagement-backend/store"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, st store.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}
	r.Use(middleware.RequestID())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	profileService := services.NewProfileService(st, utils.Logger, cfg.DevLoyaltyGrant)
	checkInService := services.NewCheckInService(st, utils.Logger)
	toolService := services.NewToolService(st, utils.Logger)
	rewardService := services.NewRewardService(st)

	authController := controllers.NewAuthController(db)
	stateController := controllers.NewStateController(profileService)
	checkInController := controllers.NewCheckInController(checkInService)
	toolController := controllers.NewToolController(toolService)
	rewardController := controllers.NewRewardController(rewardService)
	healthController := controllers.NewHealthController(st)

	r.GET("/health", healthController.Check)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/me/state", stateController.GetState)
	protected.POST("/checkins", checkInController.Create)

	protected.GET("/rewards", rewardController.Status)

	protected.GET("/tools", toolController.Catalog)
	protected.GET("/inventory", toolController.Inventory)
	protected.POST("/tools/:id/buy", toolController.Buy)
	protected.POST("/tools/:id/use", toolController.Use)

	// Registered unconditionally; the service answers 404 when disabled so
	// the route is indistinguishable from an absent one.
	protected.POST("/dev/loyalty", stateController.GrantLoyalty)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
