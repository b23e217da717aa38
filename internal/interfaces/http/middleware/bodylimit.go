package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jossiefancies/storefront/internal/interfaces/http/dto"
)

// multipartOverhead covers form boundaries and the non-file fields of an
// image upload
const multipartOverhead = 1 << 20

// BodyLimitOption configures BodyLimit
type BodyLimitOption func(*bodyLimits)

type bodyLimits struct {
	json      int64
	multipart int64
}

// WithMultipartLimit sets the ceiling for multipart/form-data bodies, which
// carry product image uploads. The form overhead is added on top.
func WithMultipartLimit(maxFileBytes int64) BodyLimitOption {
	return func(l *bodyLimits) {
		l.multipart = maxFileBytes + multipartOverhead
	}
}

// BodyLimit rejects requests whose body exceeds maxBytes. Multipart bodies
// use the WithMultipartLimit ceiling when one is set.
func BodyLimit(maxBytes int64, opts ...BodyLimitOption) gin.HandlerFunc {
	limits := bodyLimits{json: maxBytes, multipart: maxBytes}
	for _, opt := range opts {
		opt(&limits)
	}

	return func(c *gin.Context) {
		limit := limits.json
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = limits.multipart
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		// chunked bodies carry no length up front
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
