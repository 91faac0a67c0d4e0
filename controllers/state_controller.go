package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/programeryk/stateful-engagement-backend/services"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

// StateController exposes the engagement state and the dev loyalty grant.
type StateController struct {
	profiles *services.ProfileService
}

func NewStateController(profiles *services.ProfileService) *StateController {
	return &StateController{profiles: profiles}
}

// GetState returns the caller's meters, creating the row with defaults on
// first access.
func (c *StateController) GetState(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	st, err := c.profiles.GetState(ctx.Request.Context(), userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, st)
}

type grantRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// GrantLoyalty credits loyalty to the caller. Only active when the
// deployment enables it; otherwise it answers 404.
func (c *StateController) GrantLoyalty(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	var req grantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid grant payload")
		return
	}

	res, err := c.profiles.GrantLoyalty(ctx.Request.Context(), userID, req.Amount)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}
