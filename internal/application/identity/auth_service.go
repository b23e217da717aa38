package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Redirect targets returned by the admin login endpoints
const (
	AdminDashboardURL = "/admin-dashboard/"
	AdminLoginURL     = "/admin-login/"
)

var (
	errCredentialsRequired = shared.NewDomainError("VALIDATION_ERROR", "Username and password are required")
	errAdminCredentials    = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid credentials or insufficient permissions")
	errAccountLocked       = shared.NewDomainError("ACCOUNT_LOCKED", "Account temporarily locked due to security policy")
)

// LoginTracker records failed admin logins and locks abused usernames
type LoginTracker interface {
	RecordFailure(ctx context.Context, ip, username string) error
	IsLocked(ctx context.Context, username string) (bool, error)
	Clear(ctx context.Context, ip, username string) error
}

// CartMerger moves an anonymous cart into the user's cart on login
type CartMerger interface {
	MergeSessionCart(ctx context.Context, sessionKey string, userID uuid.UUID) error
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// AdminSessionTTL bounds how long an admin session is stored
	AdminSessionTTL time.Duration
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{AdminSessionTTL: 4 * time.Hour}
}

// AuthService handles shopper and admin authentication
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	sessions       auth.AdminSessionStore
	tracker        LoginTracker
	carts          CartMerger
	eventPublisher shared.EventPublisher
	config         AuthServiceConfig
	logger         *zap.Logger
}

// AuthServiceDeps groups the collaborators of AuthService
type AuthServiceDeps struct {
	Users          identity.UserRepository
	JWT            *auth.JWTService
	Blacklist      auth.TokenBlacklist
	Sessions       auth.AdminSessionStore
	Tracker        LoginTracker
	Carts          CartMerger
	EventPublisher shared.EventPublisher
}

// NewAuthService creates a new authentication service
func NewAuthService(deps AuthServiceDeps, config AuthServiceConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.AdminSessionTTL <= 0 {
		config.AdminSessionTTL = DefaultAuthServiceConfig().AdminSessionTTL
	}
	return &AuthService{
		userRepo:       deps.Users,
		jwtService:     deps.JWT,
		blacklist:      deps.Blacklist,
		sessions:       deps.Sessions,
		tracker:        deps.Tracker,
		carts:          deps.Carts,
		eventPublisher: deps.EventPublisher,
		config:         config,
		logger:         logger,
	}
}

// Register creates a shopper account
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (uuid.UUID, error) {
	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return uuid.Nil, shared.NewDomainError("VALIDATION_ERROR", "Username, email, and password are required")
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return uuid.Nil, err
	}
	if taken {
		return uuid.Nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}
	registered, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return uuid.Nil, err
	}
	if registered {
		return uuid.Nil, shared.NewDomainError("EMAIL_EXISTS", "Email already registered")
	}

	user, err := identity.NewUser(input.Username, input.Email, input.Password)
	if err != nil {
		return uuid.Nil, err
	}
	user.SetName(input.FirstName, input.LastName)

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return uuid.Nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
		}
		return uuid.Nil, err
	}

	if events := user.PullDomainEvents(); s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish registration event", zap.Error(err))
		}
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return user.ID, nil
}

// Login authenticates a shopper and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, errCredentialsRequired
	}

	user, err := s.authenticate(ctx, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			s.logger.Warn("Invalid login attempt", zap.String("username", input.Username), zap.String("ip", input.IP))
		}
		return nil, err
	}

	tokens, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.recordLogin(ctx, user, input.IP)

	if s.carts != nil && input.SessionKey != "" {
		// Don't fail the login over the cart
		if err := s.carts.MergeSessionCart(ctx, input.SessionKey, user.ID); err != nil {
			s.logger.Warn("Failed to merge session cart",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{Tokens: tokens, User: toUserInfo(user)}, nil
}

// Logout revokes the access token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.ExpiresIn); err != nil {
			s.logger.Error("Failed to blacklist token", zap.Error(err))
			return err
		}
	}
	s.logger.Info("User logout", zap.String("user_id", input.UserID.String()))
	return nil
}

// CurrentUser returns the account behind a token
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrNotFound
	}
	info := toUserInfo(user)
	return &info, nil
}

// Refresh exchanges a refresh token for a new pair. Privileges are re-read
// from the user so a demoted admin loses access at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokens, err := s.jwtService.RefreshTokenPair(refreshToken, tokenInput(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, tokenError(err)
	}
	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))
	return tokens, nil
}

// AdminLogin authenticates a superuser and opens an admin session
func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput) (*AdminLoginResult, error) {
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, errCredentialsRequired
	}

	locked, err := s.tracker.IsLocked(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if locked {
		s.logger.Warn("Admin login for locked account",
			zap.String("username", input.Username),
			zap.String("ip", input.IP))
		return nil, errAccountLocked
	}

	user, err := s.authenticate(ctx, input.Username, input.Password)
	if err == nil && !user.IsAdmin() {
		err = shared.ErrInvalidCredentials
	}
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			return nil, err
		}
		if recErr := s.tracker.RecordFailure(ctx, input.IP, input.Username); recErr != nil {
			s.logger.Error("Failed to record failed admin login", zap.Error(recErr))
		}
		return nil, errAdminCredentials
	}

	tokens, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	now := time.Now()
	session := &auth.AdminSession{
		JTI:          tokens.AccessTokenID,
		UserID:       user.ID.String(),
		Username:     user.Username,
		IP:           input.IP,
		StartedAt:    now,
		LastActivity: now,
	}
	if err := s.sessions.Save(ctx, session, s.config.AdminSessionTTL); err != nil {
		return nil, err
	}

	s.recordLogin(ctx, user, input.IP)
	if err := s.tracker.Clear(ctx, input.IP, user.Username); err != nil {
		s.logger.Warn("Failed to clear failed login history", zap.Error(err))
	}

	s.logger.Info("Successful admin login",
		zap.String("username", user.Username),
		zap.String("ip", input.IP))

	return &AdminLoginResult{Tokens: tokens, User: toUserInfo(user), RedirectURL: AdminDashboardURL}, nil
}

// AdminLogout revokes the token and ends its admin session
func (s *AuthService) AdminLogout(ctx context.Context, input LogoutInput) (string, error) {
	if err := s.Logout(ctx, input); err != nil {
		return "", err
	}
	if input.TokenJTI != "" {
		if err := s.sessions.Delete(ctx, input.TokenJTI); err != nil {
			return "", err
		}
	}
	return AdminLoginURL, nil
}

// authenticate returns the active user matching the credentials, or
// ErrInvalidCredentials
func (s *AuthService) authenticate(ctx context.Context, username, password string) (*identity.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !user.VerifyPassword(password) {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) recordLogin(ctx context.Context, user *identity.User, ip string) {
	user.RecordLogin(ip)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
