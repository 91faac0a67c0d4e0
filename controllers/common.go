// Package controllers is the thin HTTP layer: request parsing, auth context
// extraction and error mapping. All business rules live in services.
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/programeryk/stateful-engagement-backend/middleware"
	"github.com/programeryk/stateful-engagement-backend/services"
	"github.com/programeryk/stateful-engagement-backend/utils"
)

// getUserID extracts the authenticated user id set by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// writeServiceError maps domain errors onto the response envelope:
// NotFound -> 404, Conflict -> 409, everything else -> 500.
func writeServiceError(ctx *gin.Context, err error) {
	var nf *services.NotFoundError
	if errors.As(err, &nf) {
		utils.Error(ctx, http.StatusNotFound, 40410, nf.Msg)
		return
	}
	var cf *services.ConflictError
	if errors.As(err, &cf) {
		code := 40910
		if cf.Retryable {
			code = 40911
		}
		utils.Error(ctx, http.StatusConflict, code, cf.Msg)
		return
	}
	utils.Sugar.Errorw("unhandled service error", "path", ctx.Request.URL.Path, "err", err)
	utils.Error(ctx, http.StatusInternalServerError, 50010, "internal server error")
}
