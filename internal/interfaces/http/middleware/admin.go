package middleware

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
	"github.com/jossiefancies/storefront/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// AdminLoginURL is where admin clients are sent when authentication fails
const AdminLoginURL = "/admin-login/"

// AdminRequiredConfig configures AdminRequired
type AdminRequiredConfig struct {
	JWT   JWTMiddlewareConfig
	Users identity.UserRepository
	// Logger is the security logger
	Logger *zap.Logger
}

// AdminRequired accepts only bearer tokens of active superusers
func AdminRequired(cfg AdminRequiredConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		ip := ClientIP(c)

		token, err := bearerToken(c)
		var claims *auth.Claims
		if err == nil {
			claims, err = authenticate(c.Request.Context(), cfg.JWT, token)
		}
		if err != nil {
			log.Warn("Unauthorized admin access attempt",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			adminDenied(c, http.StatusUnauthorized, "Admin authentication required")
			return
		}

		if !claims.IsSuperuser {
			log.Warn("Non-admin user attempted admin access",
				zap.String("ip", ip),
				zap.String("username", claims.Username),
				zap.String("path", c.Request.URL.Path))
			adminDenied(c, http.StatusForbidden, "Admin privileges required")
			return
		}

		userID, err := claims.GetUserUUID()
		if err != nil {
			adminDenied(c, http.StatusUnauthorized, "Admin authentication required")
			return
		}
		user, err := cfg.Users.FindByID(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			log.Error("Failed to load admin user", zap.String("user_id", claims.UserID), zap.Error(err))
			adminDenied(c, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}
		if user == nil || !user.IsActive {
			log.Warn("Inactive or deleted admin token used",
				zap.String("ip", ip),
				zap.String("user_id", claims.UserID))
			adminDenied(c, http.StatusUnauthorized, "Admin authentication required")
			return
		}
		if !user.IsAdmin() {
			log.Warn("Revoked admin attempted admin access",
				zap.String("ip", ip),
				zap.String("username", user.Username))
			adminDenied(c, http.StatusForbidden, "Admin privileges required")
			return
		}

		setClaims(c, claims)
		log.Info("Admin access granted",
			zap.String("username", user.Username),
			zap.String("ip", ip),
			zap.String("path", c.Request.URL.Path))
		c.Next()
	}
}

// AdminSessionConfig configures AdminSession
type AdminSessionConfig struct {
	Store         auth.AdminSessionStore
	IdleTimeout   time.Duration
	MaxSessionAge time.Duration
	Logger        *zap.Logger
	Now           func() time.Time
}

// AdminSession enforces the idle and absolute limits of the server-side
// admin session keyed by the token's JTI. Place it after AdminRequired.
func AdminSession(cfg AdminSessionConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			adminDenied(c, http.StatusUnauthorized, "Admin authentication required")
			return
		}
		ctx := c.Request.Context()

		session, err := cfg.Store.Get(ctx, claims.ID)
		if err != nil {
			// a session backend outage must not lock every admin out
			log.Error("Failed to load admin session", zap.String("jti", claims.ID), zap.Error(err))
			c.Next()
			return
		}
		if session == nil {
			log.Info("Admin token without session", zap.String("username", claims.Username))
			adminDenied(c, http.StatusUnauthorized, "Session expired. Please login again.")
			return
		}

		t := now()
		switch session.Check(t, cfg.IdleTimeout, cfg.MaxSessionAge) {
		case auth.SessionIdle:
			_ = cfg.Store.Delete(ctx, claims.ID)
			log.Info("Admin session idle timeout",
				zap.String("username", session.Username),
				zap.String("ip", ClientIP(c)))
			adminDenied(c, http.StatusUnauthorized, "Session expired due to inactivity")
			return
		case auth.SessionTooOld:
			_ = cfg.Store.Delete(ctx, claims.ID)
			log.Info("Admin session expired",
				zap.String("username", session.Username),
				zap.String("ip", ClientIP(c)))
			adminDenied(c, http.StatusUnauthorized, "Session expired. Please login again.")
			return
		}

		session.LastActivity = t
		ttl := cfg.MaxSessionAge - t.Sub(session.StartedAt)
		if err := cfg.Store.Save(ctx, session, ttl); err != nil {
			log.Error("Failed to update admin session", zap.String("jti", claims.ID), zap.Error(err))
		}
		c.Next()
	}
}

// AdminRateLimit blocks an IP for action after max failed requests inside
// window. Only responses with status >= 400 and panics count.
func AdminRateLimit(store cache.AttemptStore, action string, max int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		ip := ClientIP(c)
		key := fmt.Sprintf("rate_limit_admin:%s:%s", action, ip)
		ctx := c.Request.Context()

		count, remaining, err := store.Count(ctx, key)
		if err != nil {
			logger.Error("Failed to read admin rate limit", zap.String("key", key), zap.Error(err))
		} else if count >= int64(max) {
			if remaining <= 0 {
				remaining = window
			}
			logger.Warn("Admin rate limit exceeded",
				zap.String("ip", ip),
				zap.String("action", action),
				zap.Int64("attempts", count))
			minutes := int(math.Ceil(remaining.Minutes()))
			c.Header("Retry-After", fmt.Sprintf("%d", int(remaining.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Rate limit exceeded. Try again in %d minutes.", minutes),
				"retry_after": int(remaining.Seconds()),
			})
			return
		}

		defer func() {
			rec := recover()
			if rec != nil || c.Writer.Status() >= http.StatusBadRequest {
				if _, err := store.Increment(ctx, key, window); err != nil {
					logger.Error("Failed to record admin rate limit attempt", zap.String("key", key), zap.Error(err))
				}
			}
			if rec != nil {
				panic(rec)
			}
		}()
		c.Next()
	}
}

// LoginThrottleConfig configures LoginThrottle
type LoginThrottleConfig struct {
	Store       cache.AttemptStore
	Paths       []string
	MaxAttempts int
	Window      time.Duration
	Logger      *zap.Logger
}

// LoginThrottle counts every login POST per client IP and rejects the IP once
// MaxAttempts is reached inside Window
func LoginThrottle(cfg LoginThrottleConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	retryAfter := int(cfg.Window.Seconds())
	message := fmt.Sprintf("Too many login attempts. Please try again in %d minutes.", int(cfg.Window.Minutes()))

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || !matchesPath(c.Request.URL.Path, cfg.Paths) {
			c.Next()
			return
		}

		ip := ClientIP(c)
		key := "admin_login_attempts:" + ip
		ctx := c.Request.Context()

		count, _, err := cfg.Store.Count(ctx, key)
		if err != nil {
			log.Error("Failed to read login attempts", zap.String("ip", ip), zap.Error(err))
		} else if count >= int64(cfg.MaxAttempts) {
			log.Warn("Rate limit exceeded on admin login", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     message,
				"retry_after": retryAfter,
			})
			return
		}
		if _, err := cfg.Store.Increment(ctx, key, cfg.Window); err != nil {
			log.Error("Failed to record login attempt", zap.String("ip", ip), zap.Error(err))
		}

		c.Next()

		fields := []zap.Field{
			zap.String("ip", ip),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("user_agent", truncate(c.Request.UserAgent(), 100)),
		}
		if c.Writer.Status() < http.StatusBadRequest {
			log.Info("Login attempt succeeded", fields...)
		} else {
			log.Warn("Login attempt failed", fields...)
		}
	}
}

// IPWhitelist rejects clients whose IP matches none of allowed. An empty
// list allows everyone.
func IPWhitelist(allowed []string, logger *zap.Logger) gin.HandlerFunc {
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := newIPMatcher(allowed)

	return func(c *gin.Context) {
		ip := ClientIP(c)
		if !matcher.allows(ip) {
			logger.Error("Blocked admin access from unauthorized IP",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied from your IP address",
			})
			return
		}
		c.Next()
	}
}

// AuditLog records who performed action, from where and with what outcome
func AuditLog(action string, sensitive bool, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		ip := ClientIP(c)
		user := func() string {
			if name := GetJWTUsername(c); name != "" {
				return name
			}
			return "anonymous"
		}

		if sensitive {
			logger.Info("Sensitive admin action started",
				zap.String("action", action),
				zap.String("user", user()),
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path))
		}

		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Admin action failed",
					zap.String("action", action),
					zap.String("user", user()),
					zap.String("ip", ip),
					zap.Duration("duration", time.Since(start)),
					zap.Any("panic", rec))
				panic(rec)
			}
		}()

		c.Next()

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("user", user()),
			zap.String("ip", ip),
			zap.Int("status", c.Writer.Status()),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("duration", time.Since(start)),
		}
		if sensitive {
			logger.Warn("Admin action completed", fields...)
		} else {
			logger.Info("Admin action completed", fields...)
		}
	}
}

// GetAdminUserID returns the admin's id set by AdminRequired
func GetAdminUserID(c *gin.Context) *uuid.UUID {
	return GetJWTUserUUID(c)
}

func adminDenied(c *gin.Context, status int, message string) {
	body := gin.H{
		"success": false,
		"message": message,
	}
	if status == http.StatusUnauthorized {
		body["redirect_url"] = AdminLoginURL
	}
	c.AbortWithStatusJSON(status, body)
}

func matchesPath(path string, paths []string) bool {
	for _, p := range paths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
