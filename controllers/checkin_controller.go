package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/programeryk/stateful-engagement-backend/services"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

// CheckInController handles the daily check-in endpoint.
type CheckInController struct {
	checkins *services.CheckInService
}

func NewCheckInController(checkins *services.CheckInService) *CheckInController {
	return &CheckInController{checkins: checkins}
}

// Create records today's check-in. A second attempt on the same UTC day
// answers 409.
func (c *CheckInController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	res, err := c.checkins.CheckIn(ctx.Request.Context(), userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}
