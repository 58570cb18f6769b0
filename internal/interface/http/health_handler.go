package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-community-leaderboard/pkg/response"
)

// Pinger is implemented by every storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{Store: store}
}

type healthBody struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		response.JSON(c, http.StatusServiceUnavailable, healthBody{Status: "degraded", Store: "down"})
		return
	}
	response.JSON(c, http.StatusOK, healthBody{Status: "ok", Store: "up"})
}
