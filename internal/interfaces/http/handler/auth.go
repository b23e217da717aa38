package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/jossiefancies/storefront/internal/application/identity"
	"github.com/jossiefancies/storefront/internal/interfaces/http/dto"
	"github.com/jossiefancies/storefront/internal/interfaces/http/middleware"
)

// AuthHandler handles shopper and admin authentication requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary      Register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Account"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} MessageResponse
// @Router       /auth/register/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid request body"})
		return
	}

	userID, err := h.authService.Register(c.Request.Context(), identityapp.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.FlatError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Success: true,
		Message: "Registration successful",
		UserID:  userID.String(),
	})
}

// Login godoc
// @Summary      User login
// @Description  Authenticates a shopper and merges the anonymous cart into theirs
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} MessageResponse
// @Failure      401 {object} MessageResponse
// @Failure      429 {object} MessageResponse
// @Router       /auth/login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid request body"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Username:   req.Username,
		Password:   req.Password,
		IP:         middleware.ClientIP(c),
		SessionKey: middleware.GetCartSessionKey(c),
	})
	if err != nil {
		h.FlatError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:     true,
		Message:     "Login successful",
		User:        result.User,
		TokenFields: tokenFields(result.Tokens),
	})
}

// Logout godoc
// @Summary      User logout
// @Description  Revokes the bearer token
// @Tags         auth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid user ID in token")
		return
	}

	err = h.authService.Logout(c.Request.Context(), identityapp.LogoutInput{
		UserID:    userID,
		TokenJTI:  claims.ID,
		ExpiresIn: claims.GetRemainingTTL(),
	})
	if err != nil {
		h.FlatError(c, err)
		return
	}
	h.Message(c, http.StatusOK, "Logged out successfully")
}

// CurrentUser godoc
// @Summary      Current user
// @Description  Reports whether the request is authenticated and as whom
// @Tags         auth
// @Produce      json
// @Success      200 {object} CurrentUserResponse
// @Router       /auth/user/ [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID := middleware.GetJWTUserUUID(c)
	if userID == nil {
		c.JSON(http.StatusOK, CurrentUserResponse{})
		return
	}
	user, err := h.authService.CurrentUser(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(http.StatusOK, CurrentUserResponse{})
		return
	}
	c.JSON(http.StatusOK, CurrentUserResponse{Authenticated: true, User: user})
}

// Refresh godoc
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} RefreshTokenResponse
// @Failure      400 {object} MessageResponse
// @Failure      401 {object} MessageResponse
// @Router       /auth/refresh/ [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "refresh_token is required"})
		return
	}
	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.FlatError(c, err)
		return
	}
	c.JSON(http.StatusOK, RefreshTokenResponse{Success: true, TokenFields: tokenFields(tokens)})
}

// AdminLogin godoc
// @Summary      Admin login
// @Description  Authenticates a superuser and opens an admin session
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AdminLoginResponse
// @Failure      400 {object} MessageResponse
// @Failure      401 {object} MessageResponse
// @Failure      403 {object} MessageResponse
// @Failure      429 {object} MessageResponse
// @Router       /admin/api/login/ [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid request body"})
		return
	}

	result, err := h.authService.AdminLogin(c.Request.Context(), identityapp.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       middleware.ClientIP(c),
	})
	if err != nil {
		h.FlatError(c, err)
		return
	}

	c.JSON(http.StatusOK, AdminLoginResponse{
		LoginResponse: LoginResponse{
			Success:     true,
			Message:     "Login successful",
			User:        result.User,
			TokenFields: tokenFields(result.Tokens),
		},
		RedirectURL: result.RedirectURL,
	})
}

// AdminLogout godoc
// @Summary      Admin logout
// @Description  Revokes the token, if any, and ends its admin session
// @Tags         admin-auth
// @Produce      json
// @Success      200 {object} RedirectResponse
// @Router       /admin/api/logout/ [post]
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	input := identityapp.LogoutInput{}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		if id, err := claims.GetUserUUID(); err == nil {
			input.UserID = id
		}
		input.TokenJTI = claims.ID
		input.ExpiresIn = claims.GetRemainingTTL()
	}

	redirect, err := h.authService.AdminLogout(c.Request.Context(), input)
	if err != nil {
		h.FlatError(c, err)
		return
	}
	c.JSON(http.StatusOK, RedirectResponse{
		Success:     true,
		Message:     "Logged out successfully",
		RedirectURL: redirect,
	})
}
