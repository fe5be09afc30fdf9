package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type HealthHandler struct {
	health services.HealthService
}

func NewHealthHandler(health services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// GET /api/health
func (h *HealthHandler) Status(c *gin.Context) {
	response.RespondOK(c, h.health.Status())
}
