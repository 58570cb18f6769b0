package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the shape of every error response. Details is only set for
// payload validation failures.
type ErrorBody struct {
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// MessageBody is returned by state transitions that have no record to show.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes data as the response body, unwrapped.
func JSON[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

func Message(ctx *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, MessageBody{Message: message})
}

func Error(ctx *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, ErrorBody{
		Message:   message,
		Details:   details,
		RequestID: ctx.GetString("request_id"),
	})
}
