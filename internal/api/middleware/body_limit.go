package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

// BodyLimit caps the request body at maxBytes (e.g. 2<<20 = 2MB).
// Handlers see *http.MaxBytesError when binding an oversized body and
// answer 413; a declared Content-Length over the cap is refused upfront.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
