package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// codeOK is the envelope code for every successful response; error codes
// group by HTTP class (40xxx, 50xxx).
const codeOK = 0

// JSONResponse is the uniform envelope every endpoint answers with.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes the envelope with the given HTTP status.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success writes a 200 envelope around data.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, codeOK, "success", data)
}

// Error writes an error envelope with no data.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
