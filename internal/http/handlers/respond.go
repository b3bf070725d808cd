package handlers

import (
	"log/slog"
	"net/http"

	"github.com/getlocalbuddy/backend/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope shared with the middleware layer.
type ErrorResponse = middlewares.ErrorBody

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	middlewares.AbortWithError(ctx, status, code, message, details)
}

func RespondBadRequest(ctx *gin.Context, code, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, code, message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondInternal logs err server side and answers with a generic 500.
func RespondInternal(ctx *gin.Context, message string, err error) {
	// request id comes from the request context
	slog.ErrorContext(ctx.Request.Context(), message,
		"err", err,
		"route", ctx.FullPath(),
	)

	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}
