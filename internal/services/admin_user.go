package services

import (
	"errors"
	"strings"

	"github.com/fttn/logproxy/internal/models"
	"github.com/fttn/logproxy/internal/utils"
	"gorm.io/gorm"
)

// AdminUserService manages viewer/admin accounts. Username uniqueness is
// checked before insert and additionally enforced by the unique index, so
// a concurrent duplicate create still fails cleanly. The last-active-admin
// check remains check-then-act; admin operations are low-concurrency.
type AdminUserService struct {
	db *gorm.DB
}

func NewAdminUserService(db *gorm.DB) *AdminUserService {
	return &AdminUserService{db: db}
}

// List returns all accounts, oldest first.
func (s *AdminUserService) List() ([]models.AdminUser, error) {
	var users []models.AdminUser
	if err := s.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, &StorageError{Op: "list users", Err: err}
	}
	return users, nil
}

// GetByID returns a single account or ErrNotFound.
func (s *AdminUserService) GetByID(id uint) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "get user", Err: err}
	}
	return &user, nil
}

// Create adds a new account. The password is hashed before storage;
// plaintext is never persisted. Returns ErrDuplicateUsername if the
// username is taken.
func (s *AdminUserService) Create(username, password, displayName, role string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Message: "must be a non-empty string"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "is required"}
	}
	if !models.IsValidRole(role) {
		return nil, &ValidationError{Field: "role", Message: "must be 'admin' or 'viewer'"}
	}

	var count int64
	if err := s.db.Model(&models.AdminUser{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, &StorageError{Op: "create user", Err: err}
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.AdminUser{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         role,
		IsActive:     true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		// The unique index closes the check-then-act race window.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, &StorageError{Op: "create user", Err: err}
	}

	return &user, nil
}

// Update changes display name, role and active flag in place. Username
// and password are untouched.
func (s *AdminUserService) Update(id uint, displayName, role string, isActive bool) (*models.AdminUser, error) {
	if !models.IsValidRole(role) {
		return nil, &ValidationError{Field: "role", Message: "must be 'admin' or 'viewer'"}
	}

	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"display_name": displayName,
		"role":         role,
		"is_active":    isActive,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, &StorageError{Op: "update user", Err: err}
	}

	return s.GetByID(id)
}

// ChangePassword rehashes and replaces the password hash only.
func (s *AdminUserService) ChangePassword(id uint, newPassword string) error {
	if newPassword == "" {
		return &ValidationError{Field: "password", Message: "is required"}
	}

	user, err := s.GetByID(id)
	if err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.db.Model(user).Update("password_hash", hash).Error; err != nil {
		return &StorageError{Op: "change password", Err: err}
	}
	return nil
}

// Delete removes an account. Deleting the sole remaining active admin
// fails with ErrLastAdmin.
func (s *AdminUserService) Delete(id uint) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if user.Role == models.RoleAdmin && user.IsActive {
		var otherAdmins int64
		if err := s.db.Model(&models.AdminUser{}).
			Where("role = ? AND is_active = ? AND id <> ?", models.RoleAdmin, true, id).
			Count(&otherAdmins).Error; err != nil {
			return &StorageError{Op: "delete user", Err: err}
		}
		if otherAdmins == 0 {
			return ErrLastAdmin
		}
	}

	if err := s.db.Delete(&models.AdminUser{}, id).Error; err != nil {
		return &StorageError{Op: "delete user", Err: err}
	}
	return nil
}

// CreateAdminIfNotExists seeds a default admin account when no admin-role
// user exists yet. Called once during bootstrap.
func (s *AdminUserService) CreateAdminIfNotExists(username, password string) error {
	var count int64
	if err := s.db.Model(&models.AdminUser{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return &StorageError{Op: "seed admin", Err: err}
	}
	if count > 0 {
		return nil
	}

	_, err := s.Create(username, password, "Administrator", models.RoleAdmin)
	return err
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// Matched by message since each driver reports its own error type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
