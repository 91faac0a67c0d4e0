package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/programeryk/stateful-engagement-backend/services"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

const (
	toolCatalogCacheKey = "cache:tools:catalog"
	toolCatalogCacheTTL = 5 * time.Minute
)

// ToolController handles the tool catalog, inventory, purchase and use.
type ToolController struct {
	tools *services.ToolService
}

func NewToolController(tools *services.ToolService) *ToolController {
	return &ToolController{tools: tools}
}

// Catalog lists all purchasable tools, cheapest first. The listing is
// identical for every caller, so the rendered body is cached in redis.
func (c *ToolController) Catalog(ctx *gin.Context) {
	if body, ok := utils.CacheGetBytes(toolCatalogCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	catalog, err := c.tools.Catalog(ctx.Request.Context())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	envelope := utils.JSONResponse{Code: 0, Message: "success", Data: catalog}
	if body, err := json.Marshal(envelope); err == nil {
		utils.CacheSetJSON(toolCatalogCacheKey, json.RawMessage(body), toolCatalogCacheTTL)
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}
	utils.Success(ctx, catalog)
}

// Inventory lists the caller's held tools with capacity usage.
func (c *ToolController) Inventory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	res, err := c.tools.Inventory(ctx.Request.Context(), userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}

// Buy purchases one unit of the tool named in the path.
func (c *ToolController) Buy(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	toolID := ctx.Param("id")
	if toolID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40004, "tool id required")
		return
	}

	res, err := c.tools.Buy(ctx.Request.Context(), userID, toolID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}

// Use consumes one unit of the tool named in the path and applies its
// effects to the caller's meters.
func (c *ToolController) Use(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	toolID := ctx.Param("id")
	if toolID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40004, "tool id required")
		return
	}

	res, err := c.tools.Use(ctx.Request.Context(), userID, toolID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}
