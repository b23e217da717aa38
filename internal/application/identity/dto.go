package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IP       string `json:"-"` // Client IP for login tracking
	// SessionKey is the anonymous cart session to merge, if any
	SessionKey string `json:"-"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Tokens *auth.TokenPair
	User   UserInfo
}

// AdminLoginResult contains the result of a successful admin login
type AdminLoginResult struct {
	Tokens      *auth.TokenPair
	User        UserInfo
	RedirectURL string
}

// UserInfo is the public view of an account
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
}

// LogoutInput identifies the token being revoked
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	// ExpiresIn is the token's remaining lifetime
	ExpiresIn time.Duration
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

func tokenInput(u *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:      u.ID,
		Username:    u.Username,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}
