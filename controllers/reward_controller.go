package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/programeryk/stateful-engagement-backend/services"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

// RewardController exposes the reward catalog with per-user unlock status.
type RewardController struct {
	rewards *services.RewardService
}

func NewRewardController(rewards *services.RewardService) *RewardController {
	return &RewardController{rewards: rewards}
}

// Status lists every reward annotated with whether the caller's current
// streak unlocks it and whether it has ever been applied.
func (c *RewardController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	res, err := c.rewards.Status(ctx.Request.Context(), userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}
