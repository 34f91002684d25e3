package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects bodies over maxBytes. Declared lengths are checked up
// front; chunked bodies are cut off by http.MaxBytesReader while read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
