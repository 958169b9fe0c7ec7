package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
)

// Envelope is the uniform JSON body for all API responses.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginatedData wraps a page of items with pagination metadata.
type PaginatedData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: PaginatedData{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: message})
}

// Error maps an application error to its HTTP status and writes it.
func Error(c *gin.Context, err error) {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		c.JSON(statusForKind(appErr.Kind), Envelope{Success: false, Error: appErr.Message})
		return
	}

	var invalidEndpoint *planner.InvalidEndpointError
	if errors.As(err, &invalidEndpoint) {
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: err.Error()})
		return
	}

	var noRoute *planner.NoRouteFoundError
	if errors.As(err, &noRoute) {
		c.JSON(http.StatusUnprocessableEntity, Envelope{Success: false, Error: err.Error()})
		return
	}

	var unavailable *planner.ProviderUnavailableError
	var aggregation *planner.AggregationFailedError
	if errors.As(err, &unavailable) || errors.As(err, &aggregation) {
		c.JSON(http.StatusBadGateway, Envelope{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal server error"})
}

func statusForKind(kind apperr.ErrorKind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
