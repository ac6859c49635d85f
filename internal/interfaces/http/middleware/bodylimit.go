package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit returns a middleware that caps the request body size. Chat and
// cart payloads are small, so anything near the cap is malformed or hostile.
// The 413 body uses the widget's flat error shape.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "Request body exceeds maximum allowed size",
			})
			return
		}

		// Chunked requests carry no Content-Length; the limited reader
		// catches those while the handler reads
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
