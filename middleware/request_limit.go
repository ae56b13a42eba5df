package middleware

import (
	"net/http"

	"pdf-qa-backend/utils"

	"github.com/gin-gonic/gin"
)

// RequestSizeLimit rejects request bodies above maxSize before any handler
// reads them.
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge,
				"request_too_large",
				"Request body exceeds maximum size",
				gin.H{
					"max_bytes": maxSize,
					"got_bytes": c.Request.ContentLength,
				})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
