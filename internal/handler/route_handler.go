package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/application"
	"github.com/trafficwatch/service-planner/internal/auth"
	"github.com/trafficwatch/service-planner/internal/middleware"
	"github.com/trafficwatch/service-planner/internal/response"
)

// RouteHandler handles HTTP requests for saved routes.
type RouteHandler struct {
	service *application.RouteService
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *application.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// RegisterRoutes registers saved-route routes on the given router group.
func (h *RouteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	routes := r.Group("/api/v1/routes")
	routes.Use(middleware.AuthMiddleware(jwtManager))
	{
		routes.POST("", h.CreateRoute)
		routes.GET("", h.ListRoutes)
		routes.GET("/:id", h.GetRoute)
		routes.PUT("/:id", h.UpdateRoute)
		routes.DELETE("/:id", h.DeleteRoute)
		routes.POST("/:id/load", h.LoadRoute)
	}
}

// CreateRoute handles POST /api/v1/routes.
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req application.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateRoute(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListRoutes handles GET /api/v1/routes.
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	routes, total, err := h.service.ListRoutes(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, routes, total, page, limit)
}

// GetRoute handles GET /api/v1/routes/:id.
func (h *RouteHandler) GetRoute(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	routeID, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.GetRoute(c.Request.Context(), routeID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateRoute handles PUT /api/v1/routes/:id.
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	routeID, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req application.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateRoute(c.Request.Context(), routeID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteRoute handles DELETE /api/v1/routes/:id.
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	routeID, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteRoute(c.Request.Context(), routeID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": routeID})
}

// LoadRoute handles POST /api/v1/routes/:id/load: seeds the planning session
// from the saved route.
func (h *RouteHandler) LoadRoute(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	routeID, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.LoadRoute(c.Request.Context(), routeID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// parseID extracts and validates the :id path parameter.
func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.NewValidationError("invalid ID format")
	}
	return id, nil
}
