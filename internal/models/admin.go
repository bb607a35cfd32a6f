package models

import "time"

// Admin roles.
const (
	// AdminRoleFounder grants read and write access.
	AdminRoleFounder = "founder"
	// AdminRoleViewer grants read-only access.
	AdminRoleViewer = "viewer"
)

// Admin represents an operator account for the founder dashboard.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`             // Hashed password.
	Name     string `gorm:"type:text"`                      // Display name.
	Role     string `gorm:"type:text;not null;default:'founder'"`

	Active bool `gorm:"not null;default:true"` // Whether the admin can sign in.

	LastLoginAt *time.Time // Last successful login.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsReadOnly reports whether the admin may only read.
func (a Admin) IsReadOnly() bool {
	return a.Role == AdminRoleViewer
}
