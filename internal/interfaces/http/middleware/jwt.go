package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
	"github.com/jossiefancies/storefront/internal/infrastructure/logger"
	"github.com/jossiefancies/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const claimsKey = "jwt_claims"

var errMissingToken = errors.New("missing bearer token")

// JWTMiddlewareConfig is shared by the required, optional and admin guards
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist holds the JTIs of logged out tokens. Optional.
	TokenBlacklist auth.TokenBlacklist
	// OnError replaces the default 401 envelope
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

func (cfg JWTMiddlewareConfig) log() *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}
	return cfg.Logger
}

// JWTAuthMiddleware requires a valid access token and skips the blacklist
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService})
}

// JWTAuthMiddlewareWithConfig rejects requests without a valid, unrevoked
// bearer access token
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, cfg)
		if err != nil {
			rejectToken(c, cfg, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware identifies the user when a good token is sent.
// A bad or missing token leaves the request anonymous; the cart and
// checkout work without an account.
func OptionalJWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := claimsFromRequest(c, cfg); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, cfg JWTMiddlewareConfig) (*auth.Claims, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	return authenticate(c.Request.Context(), cfg, token)
}

// bearerToken accepts the scheme in any case, as RFC 7235 allows
func bearerToken(c *gin.Context) (string, error) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingToken
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// authenticate fails open when the blacklist store errors: a Redis outage
// must not log every admin out
func authenticate(ctx context.Context, cfg JWTMiddlewareConfig, token string) (*auth.Claims, error) {
	claims, err := cfg.JWTService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if cfg.TokenBlacklist == nil || claims.ID == "" {
		return claims, nil
	}
	revoked, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
	switch {
	case err != nil:
		cfg.log().Error("Token blacklist lookup failed", zap.String("jti", claims.ID), zap.Error(err))
	case revoked:
		return nil, auth.ErrTokenBlacklisted
	}
	return claims, nil
}

// setClaims also tags the request logger with the user id
func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
	ctx := c.Request.Context()
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
	c.Request = c.Request.WithContext(ctx)
}

func rejectToken(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}
	cfg.log().Debug("Bearer token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
	code, message := authErrorCode(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

func authErrorCode(err error) (code, message string) {
	switch {
	case errors.Is(err, errMissingToken):
		return dto.ErrCodeUnauthorized, "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType):
		return dto.ErrCodeTokenInvalid, "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Token is not yet valid"
	}
	return dto.ErrCodeTokenInvalid, "Invalid token"
}

// GetJWTClaims is nil for anonymous requests
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func GetJWTUsername(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}

// GetJWTUserUUID is nil for anonymous requests and malformed subject ids
func GetJWTUserUUID(c *gin.Context) *uuid.UUID {
	claims := GetJWTClaims(c)
	if claims == nil {
		return nil
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return nil
	}
	return &id
}
