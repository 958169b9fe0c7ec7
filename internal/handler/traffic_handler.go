package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trafficwatch/service-planner/internal/application"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/response"
)

// TrafficHandler handles HTTP requests for route traffic colorization.
type TrafficHandler struct {
	service *application.TrafficService
}

// NewTrafficHandler creates a new TrafficHandler.
func NewTrafficHandler(service *application.TrafficService) *TrafficHandler {
	return &TrafficHandler{service: service}
}

// RegisterRoutes registers traffic routes on the given router group.
func (h *TrafficHandler) RegisterRoutes(r *gin.RouterGroup) {
	traffic := r.Group("/api/v1/traffic")
	{
		traffic.POST("/flow", h.Flow)
	}
}

type flowRequest struct {
	Geometry []planner.Coordinate `json:"geometry" binding:"required"`
	At       *time.Time           `json:"at"`
}

// Flow handles POST /api/v1/traffic/flow: colorizes the given route geometry
// for current or simulated conditions. The segment list is empty when no
// flow data is available.
func (h *TrafficHandler) Flow(c *gin.Context) {
	var req flowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	segments := h.service.Colorize(c.Request.Context(), req.Geometry, req.At)
	response.Success(c, gin.H{"segments": segments})
}
