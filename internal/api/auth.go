package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reelsync/reelsync/internal/logging"
)

// DefaultAPIKeyHeader is the default header name for API key authentication
const DefaultAPIKeyHeader = "X-API-Key"

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// APIKeyAuth creates a middleware that validates API keys from the request
// header. With no keys configured, authentication is bypassed.
func APIKeyAuth(apiKeys []string, headerName string, logger *logging.Logger) gin.HandlerFunc {
	if headerName == "" {
		headerName = DefaultAPIKeyHeader
	}

	if len(apiKeys) == 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		apiKey := c.GetHeader(headerName)

		if apiKey == "" {
			logger.WarnWithContext(c.Request.Context(), "authentication failed: missing API key",
				"client_ip", c.ClientIP(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "API key is required. Provide it in the '" + headerName + "' header",
				Code:    http.StatusUnauthorized,
			})
			return
		}

		for _, key := range apiKeys {
			if apiKey == key {
				c.Set("api_key", apiKey)
				c.Set("authenticated", true)
				c.Next()
				return
			}
		}

		logger.WarnWithContext(c.Request.Context(), "authentication failed: invalid API key",
			"client_ip", c.ClientIP(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid API key",
			Code:    http.StatusUnauthorized,
		})
	}
}

// MaskAPIKeys masks API keys for logging (shows only first 4 characters)
func MaskAPIKeys(keys []string) []string {
	masked := make([]string, len(keys))
	for i, key := range keys {
		if len(key) <= 4 {
			masked[i] = strings.Repeat("*", len(key))
		} else {
			masked[i] = key[:4] + strings.Repeat("*", len(key)-4)
		}
	}
	return masked
}
