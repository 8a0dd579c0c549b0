package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-relay/internal/domain"
)

type healthChecker interface {
	Check(ctx context.Context) domain.HealthStatus
}

// HealthHandler expone el liveness probe.
type HealthHandler struct {
	health healthChecker
}

func NewHealthHandler(health healthChecker) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check maneja GET /health. Siempre responde 200; el estado va en el body.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, h.health.Check(c.Request.Context()))
}
