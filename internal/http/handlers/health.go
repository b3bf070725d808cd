package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/getlocalbuddy/backend/internal/observability"
	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Status is liveness only and never touches the database.
func (h *HealthHandler) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": observability.ServiceName,
	})
}

func (h *HealthHandler) Ready(ctx *gin.Context) {
	if h.db == nil {
		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 1*time.Second)
	defer cancel()

	if err := h.db.Ping(cctx); err != nil {
		RespondError(ctx, http.StatusServiceUnavailable, "db_unavailable", "Database unavailable.", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
