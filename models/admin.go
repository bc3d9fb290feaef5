package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a staff account for the internal dashboard
type Admin struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"not null;default:'STAFF'" json:"role"`
	Active       bool   `gorm:"not null;default:true" json:"active"`
	// SessionVersion is bumped on password change; older session cookies stop working
	SessionVersion int            `gorm:"not null;default:0" json:"-"`
	LastLoginAt    *time.Time     `json:"last_login_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Admin model
func (Admin) TableName() string {
	return "admins"
}

// Can reports whether the admin's role grants the permission.
// Inactive accounts have no permissions.
func (a *Admin) Can(p Permission) bool {
	return a.Active && a.Role.Can(p)
}
