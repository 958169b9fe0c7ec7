package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/trafficwatch/service-planner/internal/application"
	"github.com/trafficwatch/service-planner/internal/auth"
	"github.com/trafficwatch/service-planner/internal/middleware"
	"github.com/trafficwatch/service-planner/internal/response"
)

// PinHandler handles HTTP requests for saved pins.
type PinHandler struct {
	service *application.PinService
}

// NewPinHandler creates a new PinHandler.
func NewPinHandler(service *application.PinService) *PinHandler {
	return &PinHandler{service: service}
}

// RegisterRoutes registers pin routes on the given router group.
func (h *PinHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	pins := r.Group("/api/v1/pins")
	pins.Use(middleware.AuthMiddleware(jwtManager))
	{
		pins.POST("", h.CreatePin)
		pins.GET("", h.ListPins)
		pins.PUT("/:id", h.UpdatePin)
		pins.DELETE("/:id", h.DeletePin)
		pins.POST("/:id/use", h.UsePin)
	}
}

// CreatePin handles POST /api/v1/pins.
func (h *PinHandler) CreatePin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req application.CreatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePin(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListPins handles GET /api/v1/pins.
func (h *PinHandler) ListPins(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	pins, total, err := h.service.ListPins(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, pins, total, page, limit)
}

// UpdatePin handles PUT /api/v1/pins/:id.
func (h *PinHandler) UpdatePin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	pinID, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req application.UpdatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePin(c.Request.Context(), pinID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeletePin handles DELETE /api/v1/pins/:id.
func (h *PinHandler) DeletePin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	pinID, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeletePin(c.Request.Context(), pinID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": pinID})
}

type usePinRequest struct {
	Which string `json:"which" binding:"required"`
}

// UsePin handles POST /api/v1/pins/:id/use: installs the pin as one endpoint
// of the planning session.
func (h *PinHandler) UsePin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	pinID, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req usePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.service.UsePinAsEndpoint(c.Request.Context(), pinID, userID, req.Which)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
