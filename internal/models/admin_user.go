package models

import "time"

// Admin user roles.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// AdminUser represents a staff account for the log viewer. Username is
// immutable after creation; password is stored as a bcrypt hash only.
type AdminUser struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	DisplayName  string     `gorm:"size:255" json:"display_name"`
	Role         string     `gorm:"size:20;not null;default:viewer" json:"role"` // admin, viewer
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdminUser) TableName() string { return "admin_users" }

// IsValidRole reports whether role is one of the known admin-user roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleViewer
}
