package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/application"
	"github.com/trafficwatch/service-planner/internal/auth"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/middleware"
	"github.com/trafficwatch/service-planner/internal/response"
)

// PlannerHandler handles HTTP requests for the interactive planning session.
type PlannerHandler struct {
	service *application.PlannerService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(service *application.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: service}
}

// RegisterRoutes registers planner routes on the given router group.
func (h *PlannerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	plannerGroup := r.Group("/api/v1/planner")
	plannerGroup.Use(middleware.AuthMiddleware(jwtManager))
	{
		plannerGroup.POST("/click", h.Click)
		plannerGroup.POST("/endpoint", h.SetEndpoint)
		plannerGroup.POST("/compare", h.Compare)
		plannerGroup.GET("/state", h.State)
		plannerGroup.POST("/clear", h.Clear)
	}
}

// Lat/lon are pointers so a legitimate 0.0 still binds.
type clickRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

// Click handles POST /api/v1/planner/click.
func (h *PlannerHandler) Click(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ResolveClick(c.Request.Context(), planner.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

type endpointRequest struct {
	Which string   `json:"which" binding:"required"`
	Lat   *float64 `json:"lat" binding:"required"`
	Lon   *float64 `json:"lon" binding:"required"`
	Label string   `json:"label"`
}

// SetEndpoint handles POST /api/v1/planner/endpoint (text-search selection).
func (h *PlannerHandler) SetEndpoint(c *gin.Context) {
	var req endpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.service.SetSearchEndpoint(c.Request.Context(), req.Which,
		planner.Coordinate{Lat: *req.Lat, Lon: *req.Lon}, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

type compareRequest struct {
	From planner.Coordinate `json:"from" binding:"required"`
	To   planner.Coordinate `json:"to" binding:"required"`
	At   *time.Time         `json:"at"`
}

// Compare handles POST /api/v1/planner/compare: a stateless comparison for an
// explicit coordinate pair, optionally for a simulated time.
func (h *PlannerHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	start := planner.NewEndpoint(req.From, "", planner.SourceTextSearch)
	dest := planner.NewEndpoint(req.To, "", planner.SourceTextSearch)

	comparison, segments, err := h.service.Compare(c.Request.Context(), start, dest, req.At)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"comparison":       comparison,
		"traffic_segments": segments,
	})
}

// State handles GET /api/v1/planner/state.
func (h *PlannerHandler) State(c *gin.Context) {
	response.Success(c, h.service.Session())
}

// Clear handles POST /api/v1/planner/clear.
func (h *PlannerHandler) Clear(c *gin.Context) {
	response.Success(c, h.service.Clear())
}

// requireUserID pulls the authenticated user from the context or aborts.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
