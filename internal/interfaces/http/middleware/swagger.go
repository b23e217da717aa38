package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jossiefancies/storefront/internal/interfaces/http/dto"
)

// SwaggerConfig holds configuration for Swagger endpoint protection
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IP or CIDR entries, empty = allow all
}

// SwaggerProtection hides the API docs when disabled and restricts them to
// AllowedIPs when that list is set
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	matcher := newIPMatcher(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", GetRequestID(c)))
			return
		}
		if len(cfg.AllowedIPs) > 0 && !matcher.allows(ClientIP(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
