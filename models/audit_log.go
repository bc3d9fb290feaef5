package models

import "time"

// AuditLog records one admin action
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdminID   *uint     `gorm:"index" json:"admin_id"` // nil for system actions such as the stale sweep
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;index:idx_audit_entity" json:"entity"`
	EntityID  string    `gorm:"size:64;index:idx_audit_entity" json:"entity_id"`
	Metadata  string    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
