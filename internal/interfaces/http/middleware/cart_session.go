package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	applogger "github.com/jossiefancies/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	// CartSessionKey is the gin context key holding the anonymous cart key
	CartSessionKey = "cart_session_key"

	cartSessionValue = "cart_key"
)

// NewCartSessionStore builds the signed cookie store for anonymous carts
func NewCartSessionStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge / time.Second),
		Secure:   cfg.Secure,
		HttpOnly: cfg.HTTPOnly,
		SameSite: parseSameSite(cfg.SameSite),
	}
	return store
}

// CartSession makes sure every request carries an anonymous cart key. The
// key lives in a signed cookie and is minted on first use.
func CartSession(store sessions.Store, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		// a tampered or stale cookie yields a fresh session and a non-nil error
		session, err := store.Get(c.Request, cookieName)
		if err != nil {
			logger.Debug("Discarding invalid cart session cookie", zap.Error(err))
		}

		key, _ := session.Values[cartSessionValue].(string)
		if key == "" {
			key = uuid.NewString()
			session.Values[cartSessionValue] = key
			if err := session.Save(c.Request, c.Writer); err != nil {
				logger.Error("Failed to save cart session", zap.Error(err))
			}
		}

		c.Set(CartSessionKey, key)
		ctx, _ := applogger.WithCartSession(c.Request.Context(), applogger.FromContext(c.Request.Context()), key)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetCartSessionKey returns the anonymous cart key set by CartSession
func GetCartSessionKey(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
