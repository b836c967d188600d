package model

import "time"

// AuditAction identifies the kind of operation an audit record describes.
type AuditAction string

const (
	AuditCreate  AuditAction = "CREATE"
	AuditUpdate  AuditAction = "UPDATE"
	AuditDelete  AuditAction = "DELETE"
	AuditLogin   AuditAction = "LOGIN"
	AuditLogout  AuditAction = "LOGOUT"
	AuditApprove AuditAction = "APPROVE"
	AuditReject  AuditAction = "REJECT"
)

// AuditRecord is one immutable entry in the audit trail. Records are
// append-only: nothing in the system updates or deletes them after creation.
type AuditRecord struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	UserID     string      `gorm:"index;size:36;not null" json:"userId"`
	Action     AuditAction `gorm:"size:16;not null;index" json:"action"`
	EntityType string      `gorm:"size:32;not null;index" json:"entityType"`
	EntityID   string      `gorm:"size:36;index" json:"entityId,omitempty"`
	OldValue   *string     `gorm:"type:text" json:"oldValue,omitempty"`
	NewValue   *string     `gorm:"type:text" json:"newValue,omitempty"`
	Reason     string      `gorm:"size:512" json:"reason,omitempty"`
	Timestamp  time.Time   `gorm:"not null;index" json:"timestamp"`
}

// TableName keeps the relational name used by the reporting views.
func (AuditRecord) TableName() string {
	return "audit_trail"
}
