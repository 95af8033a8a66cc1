package services

import (
	"errors"
	"time"

	"github.com/fttn/logproxy/internal/config"
	"github.com/fttn/logproxy/internal/models"
	"github.com/fttn/logproxy/internal/utils"
	"github.com/fttn/logproxy/pkg/logger"
	"gorm.io/gorm"
)

// Principal is an authenticated staff identity with its role.
type Principal struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// AuthService authenticates viewer users against the admin_users table
// and issues session tokens.
type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

// LoginResult carries the principal and its signed session token.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpireAt  time.Time  `json:"expire_at"`
	Principal *Principal `json:"user"`
}

// Login verifies username and password against an active account.
// Unknown username, inactive account and password mismatch all return
// ErrInvalidCredentials. On success last_login is updated best-effort:
// a failed update is logged but never blocks the login.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	var user models.AdminUser
	if err := s.db.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &StorageError{Op: "login", Err: err}
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		logger.Warn().Err(err).Str("username", user.Username).Msg("failed to update last_login")
	}

	expireHours := s.jwtConfig.ExpireHour
	token, err := utils.GenerateToken(user.ID, user.Username, user.DisplayName, user.Role, expireHours)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		ExpireAt: now.Add(time.Duration(expireHours) * time.Hour),
		Principal: &Principal{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
	}, nil
}

// ChangeOwnPassword lets an authenticated user replace their own
// password after proving the current one.
func (s *AuthService) ChangeOwnPassword(userID uint, oldPassword, newPassword string) error {
	var user models.AdminUser
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return &StorageError{Op: "change password", Err: err}
	}

	if !utils.CheckPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		return &StorageError{Op: "change password", Err: err}
	}
	return nil
}

// RequireRole reports whether the principal holds the required role.
// Pure predicate; HTTP enforcement lives in the middleware layer.
func RequireRole(p *Principal, role string) bool {
	return p != nil && p.Role == role
}
