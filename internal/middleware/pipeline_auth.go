package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// PipelineAuthMiddleware creates a Gin middleware that checks the X-API-Key
// header against the bcrypt hash of the pipeline API key.
func PipelineAuthMiddleware(apiKeyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKeyHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": gin.H{"code": "PIPELINE_NOT_CONFIGURED", "message": "Pipeline endpoints are not configured"}})
			return
		}
		key := c.GetHeader("X-API-Key")
		if key == "" || bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(key)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": gin.H{"code": "INVALID_API_KEY", "message": "Invalid or missing API key"}})
			return
		}
		c.Next()
	}
}
