package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/programeryk/stateful-engagement-backend/utils"
)

const requestIDHeader = "X-Request-Id"

// RequestID attaches an id to every request for log correlation, reusing
// the caller's header when present.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Set(utils.ContextRequestIDKey, rid)
		ctx.Header(requestIDHeader, rid)
		ctx.Next()
	}
}
