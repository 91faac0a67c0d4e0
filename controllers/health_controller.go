package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/programeryk/stateful-engagement-backend/store"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// HealthController reports process and dependency health.
type HealthController struct {
	store   store.Store
	started time.Time
}

func NewHealthController(st store.Store) *HealthController {
	return &HealthController{store: st, started: time.Now()}
}

// Check probes the database and redis. The database is required; redis is
// reported but never fails the check because the app degrades without it.
func (c *HealthController) Check(ctx *gin.Context) {
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	healthy := true
	if err := c.store.Ping(probeCtx); err != nil {
		dbStatus = "down"
		healthy = false
	}

	redisStatus := "disabled"
	if rc := utils.GetRedis(); rc != nil {
		redisStatus = "ok"
		if err := rc.Ping(probeCtx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	payload := gin.H{
		"version":        Version,
		"uptime_seconds": int(time.Since(c.started).Seconds()),
		"database":       dbStatus,
		"redis":          redisStatus,
	}

	if !healthy {
		utils.Respond(ctx, http.StatusServiceUnavailable, 50301, "unhealthy", payload)
		return
	}
	utils.Success(ctx, payload)
}
