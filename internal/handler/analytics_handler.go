package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/trafficwatch/service-planner/internal/application"
	"github.com/trafficwatch/service-planner/internal/auth"
	"github.com/trafficwatch/service-planner/internal/middleware"
	"github.com/trafficwatch/service-planner/internal/response"
)

// AnalyticsHandler serves congestion and usage statistics.
type AnalyticsHandler struct {
	service *application.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service *application.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// RegisterRoutes registers analytics routes on the given router group.
func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	analytics := r.Group("/api/v1/analytics")
	analytics.Use(middleware.AuthMiddleware(jwtManager))
	{
		analytics.GET("/summary", h.Summary)
	}
}

// Summary handles GET /api/v1/analytics/summary.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	response.Success(c, h.service.Summary(c.Request.Context(), userID))
}
