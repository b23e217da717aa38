package handler

import (
	"time"

	identityapp "github.com/jossiefancies/storefront/internal/application/identity"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
)

// RegisterRequest represents the request body for registration. Missing
// fields are reported by the service with a single message.
type RegisterRequest struct {
	Username  string `json:"username" example:"wanjiru"`
	Email     string `json:"email" example:"wanjiru@example.com"`
	Password  string `json:"password" example:"s3cretpass"`
	FirstName string `json:"first_name" example:"Wanjiru"`
	LastName  string `json:"last_name" example:"Kamau"`
}

// LoginRequest represents the request body for user and admin login
type LoginRequest struct {
	Username string `json:"username" example:"wanjiru"`
	Password string `json:"password" example:"s3cretpass"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterResponse is returned after registration
type RegisterResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Registration successful"`
	UserID  string `json:"user_id"`
}

// TokenFields are the token members of login and refresh responses
type TokenFields struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	TokenType             string    `json:"token_type" example:"Bearer"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Success bool                 `json:"success" example:"true"`
	Message string               `json:"message" example:"Login successful"`
	User    identityapp.UserInfo `json:"user"`
	TokenFields
}

// AdminLoginResponse is returned after a successful admin login
type AdminLoginResponse struct {
	LoginResponse
	RedirectURL string `json:"redirect_url" example:"/admin-dashboard/"`
}

// RefreshTokenResponse is returned after a token refresh
type RefreshTokenResponse struct {
	Success bool `json:"success" example:"true"`
	TokenFields
}

// CurrentUserResponse reports who the bearer token belongs to
type CurrentUserResponse struct {
	Authenticated bool                  `json:"authenticated"`
	User          *identityapp.UserInfo `json:"user"`
}

// RedirectResponse is a message with a client redirect target
type RedirectResponse struct {
	Success     bool   `json:"success" example:"true"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url"`
}

func tokenFields(pair *auth.TokenPair) TokenFields {
	return TokenFields{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		TokenType:             pair.TokenType,
		ExpiresAt:             pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
}
