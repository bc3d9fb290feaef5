package models

import (
	"time"

	"gorm.io/gorm"
)

// Service is a bookable workshop service (oil change, detailing, tuning)
type Service struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description     string         `gorm:"type:text" json:"description"`
	Price           int64          `gorm:"not null;default:0" json:"price"` // whole rupees, starting price
	DurationMinutes int            `gorm:"not null;default:60" json:"duration_minutes"`
	SlotCapacity    int            `gorm:"not null;default:1" json:"slot_capacity"` // bays available per slot
	Active          bool           `gorm:"not null;default:true;index" json:"active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}
