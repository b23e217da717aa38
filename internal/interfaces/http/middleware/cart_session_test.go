package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartSessionRouter() *gin.Engine {
	store := NewCartSessionStore(config.SessionConfig{
		Secret:   "cart-session-secret-at-least-32-chars",
		MaxAge:   24 * time.Hour,
		HTTPOnly: true,
		SameSite: "lax",
	})
	r := gin.New()
	r.Use(CartSession(store, "storefront_session", nil))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetCartSessionKey(c))
	})
	return r
}

func TestCartSession(t *testing.T) {
	r := cartSessionRouter()

	t.Run("mints a key and sets the cookie", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Body.String(), 36)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "storefront_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	})

	t.Run("reuses the key from the cookie", func(t *testing.T) {
		first := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
		cookie := first.Result().Cookies()[0]

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(cookie)
		second := serve(r, req)

		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Empty(t, second.Result().Cookies())
	})

	t.Run("tampered cookie gets a new key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: "storefront_session", Value: "forged"})
		w := serve(r, req)

		assert.Len(t, w.Body.String(), 36)
		assert.Len(t, w.Result().Cookies(), 1)
	})
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("Strict"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("none"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
}
