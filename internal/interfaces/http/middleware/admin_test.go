package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
	"github.com/jossiefancies/storefront/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func adminRouter(t *testing.T, repo identity.UserRepository, logger *zap.Logger) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := newTestJWTService()
	r := gin.New()
	r.Use(AdminRequired(AdminRequiredConfig{
		JWT:    JWTMiddlewareConfig{JWTService: jwtService},
		Users:  repo,
		Logger: logger,
	}))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUsername(c))
	})
	return r, jwtService
}

func TestAdminRequired(t *testing.T) {
	t.Run("missing token redirects to login", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		r, _ := adminRouter(t, new(mockUserRepository), zap.New(core))

		w := serve(r, bearerRequest(""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Admin authentication required", body["message"])
		assert.Equal(t, AdminLoginURL, body["redirect_url"])
		assert.Equal(t, 1, logs.FilterMessage("Unauthorized admin access attempt").Len())
	})

	t.Run("non superuser is forbidden", func(t *testing.T) {
		r, jwtService := adminRouter(t, new(mockUserRepository), nil)
		pair, _ := newTestTokenPair(t, jwtService, false)

		w := serve(r, bearerRequest(pair.AccessToken))

		assert.Equal(t, http.StatusForbidden, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Admin privileges required", body["message"])
		assert.NotContains(t, body, "redirect_url")
	})

	t.Run("deleted user is rejected", func(t *testing.T) {
		repo := new(mockUserRepository)
		r, jwtService := adminRouter(t, repo, nil)
		pair, input := newTestTokenPair(t, jwtService, true)
		repo.On("FindByID", mock.Anything, input.UserID).Return(nil, shared.ErrNotFound)

		w := serve(r, bearerRequest(pair.AccessToken))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("inactive user is rejected", func(t *testing.T) {
		repo := new(mockUserRepository)
		r, jwtService := adminRouter(t, repo, nil)
		pair, input := newTestTokenPair(t, jwtService, true)
		user, err := identity.NewSuperuser("wanjiru", "wanjiru@example.com", "Str0ngPassw0rd!")
		require.NoError(t, err)
		user.Deactivate()
		repo.On("FindByID", mock.Anything, input.UserID).Return(user, nil)

		w := serve(r, bearerRequest(pair.AccessToken))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("active superuser passes", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		repo := new(mockUserRepository)
		r, jwtService := adminRouter(t, repo, zap.New(core))
		pair, input := newTestTokenPair(t, jwtService, true)
		user, err := identity.NewSuperuser("wanjiru", "wanjiru@example.com", "Str0ngPassw0rd!")
		require.NoError(t, err)
		repo.On("FindByID", mock.Anything, input.UserID).Return(user, nil)

		w := serve(r, bearerRequest(pair.AccessToken))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "wanjiru", w.Body.String())
		assert.Equal(t, 1, logs.FilterMessage("Admin access granted").Len())
	})
}

func TestAdminSession(t *testing.T) {
	jwtService := newTestJWTService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	setup := func(t *testing.T, session *auth.AdminSession) (*gin.Engine, auth.AdminSessionStore, *auth.TokenPair) {
		t.Helper()
		pair, _ := newTestTokenPair(t, jwtService, true)
		store := auth.NewInMemoryAdminSessionStore()
		if session != nil {
			session.JTI = pair.AccessTokenID
			require.NoError(t, store.Save(context.Background(), session, time.Hour))
		}

		r := gin.New()
		r.Use(JWTAuthMiddleware(jwtService))
		r.Use(AdminSession(AdminSessionConfig{
			Store:         store,
			IdleTimeout:   30 * time.Minute,
			MaxSessionAge: 8 * time.Hour,
			Now:           func() time.Time { return now },
		}))
		r.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r, store, pair
	}

	t.Run("missing session", func(t *testing.T) {
		r, _, pair := setup(t, nil)
		w := serve(r, bearerRequest(pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Session expired. Please login again.", decodeBody(t, w)["message"])
	})

	t.Run("idle session is ended", func(t *testing.T) {
		r, store, pair := setup(t, &auth.AdminSession{
			StartedAt:    now.Add(-2 * time.Hour),
			LastActivity: now.Add(-31 * time.Minute),
		})
		w := serve(r, bearerRequest(pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Session expired due to inactivity", decodeBody(t, w)["message"])

		got, err := store.Get(context.Background(), pair.AccessTokenID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("session past max age", func(t *testing.T) {
		r, _, pair := setup(t, &auth.AdminSession{
			StartedAt:    now.Add(-9 * time.Hour),
			LastActivity: now.Add(-time.Minute),
		})
		w := serve(r, bearerRequest(pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Session expired. Please login again.", decodeBody(t, w)["message"])
	})

	t.Run("active session is touched", func(t *testing.T) {
		r, store, pair := setup(t, &auth.AdminSession{
			Username:     "wanjiru",
			StartedAt:    now.Add(-time.Hour),
			LastActivity: now.Add(-10 * time.Minute),
		})
		w := serve(r, bearerRequest(pair.AccessToken))
		assert.Equal(t, http.StatusNoContent, w.Code)

		got, err := store.Get(context.Background(), pair.AccessTokenID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.LastActivity.Equal(now))
	})
}

func TestAdminRateLimit(t *testing.T) {
	store := cache.NewInMemoryAttemptStore()
	defer store.Close()

	r := gin.New()
	r.Use(AdminRateLimit(store, "delete_order", 2, time.Hour, nil))
	r.DELETE("/orders/:status", func(c *gin.Context) {
		if c.Param("status") == "ok" {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusBadRequest)
	})

	req := func(path string) *http.Request {
		r := httptest.NewRequest(http.MethodDelete, path, nil)
		r.RemoteAddr = "10.0.0.9:1234"
		return r
	}

	assert.Equal(t, http.StatusNoContent, serve(r, req("/orders/ok")).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, req("/orders/bad")).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, req("/orders/ok")).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, req("/orders/bad")).Code)

	w := serve(r, req("/orders/ok"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Rate limit exceeded. Try again in 60 minutes.", body["message"])
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestLoginThrottle(t *testing.T) {
	store := cache.NewInMemoryAttemptStore()
	defer store.Close()
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(LoginThrottle(LoginThrottleConfig{
		Store:       store,
		Paths:       []string{"/admin/api/login/", "/api/auth/login/"},
		MaxAttempts: 3,
		Window:      15 * time.Minute,
		Logger:      zap.New(core),
	}))
	r.POST("/api/auth/login/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/auth/register/", func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(path, ip string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
		req.RemoteAddr = ip + ":5000"
		return req
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, post("/api/auth/login/", "10.1.1.1")).Code)
	}

	w := serve(r, post("/api/auth/login/", "10.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Too many login attempts. Please try again in 15 minutes.", body["message"])
	assert.Equal(t, float64(900), body["retry_after"])
	assert.Equal(t, 1, logs.FilterMessage("Rate limit exceeded on admin login").Len())

	// other IPs and other paths are untouched
	assert.Equal(t, http.StatusOK, serve(r, post("/api/auth/login/", "10.1.1.2")).Code)
	assert.Equal(t, http.StatusCreated, serve(r, post("/api/auth/register/", "10.1.1.1")).Code)
}

func TestIPWhitelist(t *testing.T) {
	t.Run("empty list allows all", func(t *testing.T) {
		r := okRouter(IPWhitelist(nil, nil))
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/test", nil)).Code)
	})

	t.Run("rejects unknown addresses", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		r := okRouter(IPWhitelist([]string{"192.168.1.0/24", "10.0.0.5"}, zap.New(core)))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "172.16.0.1:80"
		w := serve(r, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Access denied from your IP address", decodeBody(t, w)["message"])
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

		req = httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.168.1.77:80"
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	})
}

func TestAuditLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := okRouter(AuditLog("order_delete", true, zap.New(core)))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	started := logs.FilterMessage("Sensitive admin action started").All()
	require.Len(t, started, 1)
	assert.Equal(t, "anonymous", started[0].ContextMap()["user"])

	done := logs.FilterMessage("Admin action completed").All()
	require.Len(t, done, 1)
	assert.Equal(t, zapcore.WarnLevel, done[0].Level)
	assert.Equal(t, "order_delete", done[0].ContextMap()["action"])
}
