package models

import (
	"time"

	"gorm.io/gorm"
)

// Badge is a label shown on product cards ("New", "Sale", "Genuine")
type Badge struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Color     string         `gorm:"not null;default:'#1f2937'" json:"color"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Badge model
func (Badge) TableName() string {
	return "badges"
}
