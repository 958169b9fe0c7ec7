package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/response"
)

// GeocodeHandler proxies forward and reverse geocoding. These endpoints are
// unauthenticated: they resolve public place data only.
type GeocodeHandler struct {
	geocoder planner.GeocodingProvider
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocoder planner.GeocodingProvider) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// RegisterRoutes registers geocoding routes on the given router group.
func (h *GeocodeHandler) RegisterRoutes(r *gin.RouterGroup) {
	geocode := r.Group("/api/v1/geocode")
	{
		geocode.GET("/search", h.Search)
		geocode.GET("/reverse", h.Reverse)
	}
}

// Search handles GET /api/v1/geocode/search?q=...
func (h *GeocodeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "query parameter 'q' is required")
		return
	}

	places, err := h.geocoder.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"places": places})
}

// Reverse handles GET /api/v1/geocode/reverse?lat=...&lon=...
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		response.BadRequest(c, "query parameters 'lat' and 'lon' are required")
		return
	}

	coord := planner.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		response.BadRequest(c, "coordinate out of bounds")
		return
	}

	label, err := h.geocoder.Reverse(c.Request.Context(), coord)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"label": label})
}
