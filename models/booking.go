package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus is the lifecycle state of a service booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingNoShow    BookingStatus = "NO_SHOW"
)

var bookingNext = map[BookingStatus]map[BookingStatus]bool{
	BookingPending:   {BookingConfirmed: true, BookingCancelled: true},
	BookingConfirmed: {BookingCompleted: true, BookingCancelled: true, BookingNoShow: true},
	BookingCompleted: {},
	BookingCancelled: {},
	BookingNoShow:    {},
}

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	_, ok := bookingNext[s]
	return ok
}

// CanTransitionBooking reports whether a booking may move from one status to another
func CanTransitionBooking(from, to BookingStatus) bool {
	return bookingNext[from][to]
}

// HoldsSlot reports whether a booking in this status occupies slot capacity
func (s BookingStatus) HoldsSlot() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking reserves one slot of a service on a given day
type Booking struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Reference           string         `gorm:"uniqueIndex;not null" json:"reference"`
	CustomerID          uint           `gorm:"not null;index" json:"customer_id"`
	Customer            Customer       `gorm:"foreignKey:CustomerID" json:"customer"`
	ServiceID           uint           `gorm:"not null;index:idx_booking_slot" json:"service_id"`
	Service             Service        `gorm:"foreignKey:ServiceID" json:"service"`
	Date                string         `gorm:"size:10;not null;index:idx_booking_slot" json:"date"` // YYYY-MM-DD, shop local
	Slot                string         `gorm:"size:5;not null;index:idx_booking_slot" json:"slot"`  // HH:MM
	VehicleMake         string         `json:"vehicle_make"`
	VehicleModel        string         `json:"vehicle_model"`
	VehicleRegistration string         `json:"vehicle_registration"`
	Notes               string         `gorm:"type:text" json:"notes"`
	Status              BookingStatus  `gorm:"not null;default:'PENDING';index" json:"status"`
	WhatsAppLink        string         `gorm:"-" json:"whatsapp_link,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}
