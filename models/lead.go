package models

import (
	"time"

	"gorm.io/gorm"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadClosed    LeadStatus = "CLOSED"
)

var leadNext = map[LeadStatus]map[LeadStatus]bool{
	LeadNew:       {LeadContacted: true, LeadClosed: true},
	LeadContacted: {LeadClosed: true},
	LeadClosed:    {},
}

// Valid reports whether s is a known lead status
func (s LeadStatus) Valid() bool {
	_, ok := leadNext[s]
	return ok
}

// CanTransitionLead reports whether a lead may move between statuses
func CanTransitionLead(from, to LeadStatus) bool {
	return leadNext[from][to]
}

// Lead is a contact-form or quote enquiry from the storefront
type Lead struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"index" json:"email"`
	Phone     string         `json:"phone"`
	Subject   string         `json:"subject"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Source    string         `gorm:"not null;default:'contact_form'" json:"source"`
	Status    LeadStatus     `gorm:"not null;default:'NEW';index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Lead model
func (Lead) TableName() string {
	return "leads"
}
