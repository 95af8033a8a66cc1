package services

import (
	"errors"
	"testing"
	"time"

	"github.com/fttn/logproxy/internal/config"
	"github.com/fttn/logproxy/internal/models"
	"github.com/fttn/logproxy/internal/utils"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*gorm.DB, *AuthService, *AdminUserService) {
	t.Helper()
	db := newTestDB(t)
	jwtCfg := &config.JWTConfig{Secret: "test-secret-for-service-testing", ExpireHour: 24}
	return db, NewAuthService(db, jwtCfg), NewAdminUserService(db)
}

func TestLogin_Success(t *testing.T) {
	_, auth, users := newAuthFixture(t)
	users.Create("alice", "password123", "Alice", models.RoleAdmin)

	result, err := auth.Login("alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
	if result.Principal == nil {
		t.Fatal("Login() returned nil principal")
	}
	if result.Principal.Username != "alice" {
		t.Errorf("Username = %q, expected %q", result.Principal.Username, "alice")
	}
	if result.Principal.Role != models.RoleAdmin {
		t.Errorf("Role = %q, expected %q", result.Principal.Role, models.RoleAdmin)
	}
	if !result.ExpireAt.After(time.Now()) {
		t.Error("ExpireAt should be in the future")
	}

	claims, err := utils.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
	if claims.UserID != result.Principal.ID {
		t.Errorf("token UserID = %d, expected %d", claims.UserID, result.Principal.ID)
	}
}

func TestLogin_Failures(t *testing.T) {
	db, auth, users := newAuthFixture(t)

	users.Create("alice", "password123", "Alice", models.RoleAdmin)
	inactive, _ := users.Create("bob", "password123", "Bob", models.RoleViewer)
	users.Update(inactive.ID, "Bob", models.RoleViewer, false)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown username", "nosuchuser", "password123"},
		{"wrong password", "alice", "wrongpassword"},
		{"inactive account", "bob", "password123"},
		{"empty credentials", "", ""},
	}

	// Every failure mode returns the same error so callers cannot probe
	// which usernames exist.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, expected ErrInvalidCredentials", err)
			}
		})
	}

	var user models.AdminUser
	db.Where("username = ?", "alice").First(&user)
	if user.LastLogin != nil {
		t.Error("failed logins must not update last_login")
	}
}

func TestLogin_UpdatesLastLogin(t *testing.T) {
	db, auth, users := newAuthFixture(t)
	users.Create("alice", "password123", "Alice", models.RoleAdmin)

	if _, err := auth.Login("alice", "password123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var user models.AdminUser
	db.Where("username = ?", "alice").First(&user)
	if user.LastLogin == nil {
		t.Fatal("last_login should be set after a successful login")
	}
	if time.Since(*user.LastLogin) > time.Minute {
		t.Errorf("last_login = %v, expected a recent timestamp", *user.LastLogin)
	}
}

func TestChangeOwnPassword(t *testing.T) {
	_, auth, users := newAuthFixture(t)
	created, _ := users.Create("alice", "oldpassword", "Alice", models.RoleAdmin)

	if err := auth.ChangeOwnPassword(created.ID, "wrongpassword", "newpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ChangeOwnPassword() with wrong old password error = %v, expected ErrInvalidCredentials", err)
	}

	if err := auth.ChangeOwnPassword(created.ID, "oldpassword", "newpassword"); err != nil {
		t.Fatalf("ChangeOwnPassword() error = %v", err)
	}

	if _, err := auth.Login("alice", "oldpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password should be rejected after change")
	}
	if _, err := auth.Login("alice", "newpassword"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}

	if err := auth.ChangeOwnPassword(9999, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ChangeOwnPassword(9999) error = %v, expected ErrNotFound", err)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		role      string
		expected  bool
	}{
		{"admin has admin", &Principal{Role: models.RoleAdmin}, models.RoleAdmin, true},
		{"viewer lacks admin", &Principal{Role: models.RoleViewer}, models.RoleAdmin, false},
		{"viewer has viewer", &Principal{Role: models.RoleViewer}, models.RoleViewer, true},
		{"nil principal", nil, models.RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequireRole(tt.principal, tt.role); got != tt.expected {
				t.Errorf("RequireRole() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
