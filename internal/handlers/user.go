package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fttn/logproxy/internal/services"
	"github.com/fttn/logproxy/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler exposes admin-user management. All routes require the
// admin role.
type UserHandler struct {
	userService *services.AdminUserService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		userService: services.NewAdminUserService(db),
	}
}

// List returns every account, oldest first.
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetByID returns one account.
// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required,min=2"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role" binding:"required"`
}

// Create adds a new viewer or admin account.
// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(req.Username, req.Password, req.DisplayName, req.Role)
	if err != nil {
		h.writeUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type updateUserRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role" binding:"required"`
	IsActive    *bool  `json:"is_active" binding:"required"`
}

// Update changes display name, role and active flag.
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(uint(id), req.DisplayName, req.Role, *req.IsActive)
	if err != nil {
		h.writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type setPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// SetPassword replaces another account's password.
// PUT /api/users/:id/password
func (h *UserHandler) SetPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "password (min 6 chars) is required")
		return
	}

	if err := h.userService.ChangePassword(uint(id), req.Password); err != nil {
		h.writeUserError(c, err)
		return
	}

	response.Success(c, "password updated", nil)
}

// Delete removes an account, refusing to delete the last active admin.
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.Delete(uint(id)); err != nil {
		h.writeUserError(c, err)
		return
	}

	response.Success(c, "user deleted", nil)
}

// writeUserError maps service errors onto HTTP responses.
func (h *UserHandler) writeUserError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, services.ErrDuplicateUsername):
		response.Error(c, response.NewConflict("username already exists"))
	case errors.Is(err, services.ErrLastAdmin):
		response.Error(c, response.NewConflict("cannot delete the last active admin user"))
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Error())
	default:
		response.Error(c, err)
	}
}
