package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "jossie-fancies",
		MaxRefreshCount:        2,
	})
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:      uuid.New(),
		Username:    "shopadmin",
		IsStaff:     true,
		IsSuperuser: true,
	}
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, pair.AccessTokenID)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "shopadmin", claims.Username)
	assert.True(t, claims.IsSuperuser)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, pair.AccessTokenID, claims.ID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	id, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, id)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.GetRemainingTTL().Seconds(), 5)
}

func TestValidateAccessToken_Errors(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  -1 * time.Hour,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "jossie-fancies",
		})
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := newTestJWTService().ValidateAccessToken("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token used as access token", func(t *testing.T) {
		svc := newTestJWTService()
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("different secret", func(t *testing.T) {
		pair, err := newTestJWTService().GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "jossie-fancies",
		})
		_, err = other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("different issuer", func(t *testing.T) {
		pair, err := newTestJWTService().GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "someone-else",
		})
		_, err = other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateAccessToken_Clock(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)
	assert.True(t, issued.Add(15*time.Minute).Equal(pair.AccessTokenExpiresAt))

	t.Run("within clock skew", func(t *testing.T) {
		svc.now = func() time.Time { return issued.Add(15*time.Minute + 10*time.Second) }
		_, err := svc.ValidateAccessToken(pair.AccessToken)
		assert.NoError(t, err)
	})

	t.Run("past clock skew", func(t *testing.T) {
		svc.now = func() time.Time { return issued.Add(16 * time.Minute) }
		_, err := svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("before issue", func(t *testing.T) {
		svc.now = func() time.Time { return issued.Add(-time.Hour) }
		_, err := svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("issues pair with current privileges", func(t *testing.T) {
		demoted := input
		demoted.IsSuperuser = false

		next, err := svc.RefreshTokenPair(pair.RefreshToken, demoted)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.False(t, claims.IsSuperuser)

		refreshClaims, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, refreshClaims.RefreshCount)
	})

	t.Run("stops at max refresh count", func(t *testing.T) {
		first, err := svc.RefreshTokenPair(pair.RefreshToken, input)
		require.NoError(t, err)
		second, err := svc.RefreshTokenPair(first.RefreshToken, input)
		require.NoError(t, err)

		_, err = svc.RefreshTokenPair(second.RefreshToken, input)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("rejects another user's token", func(t *testing.T) {
		other := newTestInput()
		_, err := svc.RefreshTokenPair(pair.RefreshToken, other)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("rejects access token", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.AccessToken, input)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}
