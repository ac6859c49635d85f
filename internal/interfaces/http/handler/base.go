package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easymart/chat-backend/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDKey); id != "" {
		return id
	}
	return ""
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// NoRoute returns the fallback handler for unmatched paths
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeNotFound), dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound,
			"Route not found",
			getRequestID(c),
		))
	}
}

// NoMethod returns the fallback handler for known paths hit with the wrong
// method
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeMethodNotAllowed), dto.NewErrorResponseWithRequestID(
			dto.ErrCodeMethodNotAllowed,
			"Method not allowed",
			getRequestID(c),
		))
	}
}
