package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/response"
)

// TransitHandler proxies the transit network read surface.
type TransitHandler struct {
	provider planner.TransitProvider
}

// NewTransitHandler creates a new TransitHandler.
func NewTransitHandler(provider planner.TransitProvider) *TransitHandler {
	return &TransitHandler{provider: provider}
}

// RegisterRoutes registers transit routes on the given router group.
func (h *TransitHandler) RegisterRoutes(r *gin.RouterGroup) {
	transit := r.Group("/api/v1/transit")
	{
		transit.GET("/stops", h.Stops)
		transit.POST("/plan", h.Plan)
	}
}

// Stops handles GET /api/v1/transit/stops.
func (h *TransitHandler) Stops(c *gin.Context) {
	stops, err := h.provider.Stops(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"stops": stops, "count": len(stops)})
}

type transitPlanRequest struct {
	FromStopID string     `json:"from_stop_id" binding:"required"`
	ToStopID   string     `json:"to_stop_id" binding:"required"`
	Departure  *time.Time `json:"departure_time"`
}

// Plan handles POST /api/v1/transit/plan.
func (h *TransitHandler) Plan(c *gin.Context) {
	var req transitPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	connections, err := h.provider.PlanTrip(c.Request.Context(), req.FromStopID, req.ToStopID, req.Departure)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"connections": connections})
}
