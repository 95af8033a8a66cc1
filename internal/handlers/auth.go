package handlers

import (
	"errors"
	"net/http"

	"github.com/fttn/logproxy/internal/config"
	"github.com/fttn/logproxy/internal/middleware"
	"github.com/fttn/logproxy/internal/services"
	"github.com/fttn/logproxy/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, jwtCfg),
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles viewer login.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	result, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid username or password")
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me returns the current authenticated principal.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetPrincipal(c))
}

// Logout acknowledges logout; the session token is discarded client-side.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, "logged out successfully", nil)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword replaces the current user's own password.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "old_password and new_password (min 6 chars) are required")
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := h.authService.ChangeOwnPassword(principal.ID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.BadRequest(c, "incorrect old password")
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, "password changed", nil)
}
