package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService, superuser bool) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID:      uuid.New(),
		Username:    "wanjiru",
		IsStaff:     superuser,
		IsSuperuser: superuser,
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newTestTokenPair(t, jwtService, false)
	blacklist := auth.NewInMemoryTokenBlacklist()

	r := gin.New()
	r.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService, TokenBlacklist: blacklist}))
	r.GET("/test", func(c *gin.Context) {
		userID := GetJWTUserUUID(c)
		require.NotNil(t, userID)
		assert.Equal(t, input.UserID, *userID)
		assert.Equal(t, "wanjiru", GetJWTUsername(c))
		c.String(http.StatusOK, "ok")
	})

	t.Run("valid token", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(r, bearerRequest(pair.AccessToken)).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, bearerRequest(""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := serve(r, bearerRequest("not.a.jwt"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		w := serve(r, bearerRequest(pair.RefreshToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token type")
	})

	t.Run("revoked token", func(t *testing.T) {
		revoked, _ := newTestTokenPair(t, jwtService, false)
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), revoked.AccessTokenID, time.Minute))

		w := serve(r, bearerRequest(revoked.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_REVOKED")
	})
}

func TestJWTAuthMiddleware_Expired(t *testing.T) {
	jwtService := newTestJWTService()
	// past the 30s clock skew the service tolerates
	issued := time.Now().Add(-20 * time.Minute)
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-issuer"},
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID:    uuid.NewString(),
		Username:  "wanjiru",
		TokenType: auth.TokenTypeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-secret-key-at-least-32-characters"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(JWTAuthMiddleware(jwtService))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(r, bearerRequest(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	var got error
	r := gin.New()
	r.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: newTestJWTService(),
		OnError: func(c *gin.Context, err error) {
			got = err
			c.AbortWithStatus(http.StatusTeapot)
		},
	}))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Equal(t, http.StatusTeapot, serve(r, bearerRequest("")).Code)
	assert.ErrorIs(t, got, errMissingToken)
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newTestTokenPair(t, jwtService, false)

	r := gin.New()
	r.Use(OptionalJWTAuthMiddleware(JWTMiddlewareConfig{JWTService: jwtService}))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})

	assert.Equal(t, input.UserID.String(), serve(r, bearerRequest(pair.AccessToken)).Body.String())

	w := serve(r, bearerRequest(""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = serve(r, bearerRequest("broken"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGetters_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Nil(t, GetJWTUserUUID(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTUsername(c))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc.def", "abc.def", true},
		{"Bearer   abc.def  ", "abc.def", true},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("Authorization", tt.header)

			token, err := bearerToken(c)
			if !tt.ok {
				assert.ErrorIs(t, err, errMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}
}
