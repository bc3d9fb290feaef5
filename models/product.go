package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a storefront catalog item (parts, accessories, care products)
type Product struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`
	SKU            string         `gorm:"index" json:"sku"`
	Description    string         `gorm:"type:text" json:"description"`
	Category       string         `gorm:"index" json:"category"`
	Brand          string         `json:"brand"`
	Price          int64          `gorm:"not null;check:price >= 0" json:"price"` // whole rupees
	CompareAtPrice *int64         `json:"compare_at_price"`                       // nullable, shown struck through
	Stock          int            `gorm:"not null;default:0" json:"stock"`
	Published      bool           `gorm:"not null;default:false;index" json:"published"`
	ImageS3Key     *string        `json:"image_s3_key"`                 // nullable, storage key for uploaded image
	ImageURL       *string        `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL for image
	Badges         []Badge        `gorm:"many2many:product_badges;" json:"badges"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// InStock reports whether at least qty units are available
func (p *Product) InStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}
