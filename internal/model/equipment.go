package model

import "time"

// EquipmentStatus describes the operational state of an asset.
type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "Operational"
	EquipmentInUse       EquipmentStatus = "In Use"
	EquipmentMaintenance EquipmentStatus = "Maintenance"
	EquipmentOffline     EquipmentStatus = "Offline"
)

// ValidEquipmentStatus reports whether s is a recognized equipment status.
func ValidEquipmentStatus(s EquipmentStatus) bool {
	switch s {
	case EquipmentOperational, EquipmentInUse, EquipmentMaintenance, EquipmentOffline:
		return true
	}
	return false
}

// Equipment represents a physical manufacturing asset. EquipmentID is the
// human-readable business key (e.g. "EQ-2024-001"); ID is the internal key
// referenced by log entries and PM schedules.
type Equipment struct {
	ID                  string          `gorm:"primaryKey;size:36" json:"id"`
	EquipmentID         string          `gorm:"uniqueIndex;size:32;not null" json:"equipmentId"`
	Name                string          `gorm:"size:128;not null" json:"name"`
	Type                string          `gorm:"size:64;not null" json:"type"`
	Location            string          `gorm:"size:128;not null" json:"location"`
	Status              EquipmentStatus `gorm:"size:16;not null" json:"status"`
	Manufacturer        string          `gorm:"size:128" json:"manufacturer,omitempty"`
	Model               string          `gorm:"size:128" json:"model,omitempty"`
	SerialNumber        string          `gorm:"size:64" json:"serialNumber,omitempty"`
	QualificationStatus string          `gorm:"size:64" json:"qualificationStatus,omitempty"`
	PMFrequency         string          `gorm:"size:32" json:"pmFrequency,omitempty"`
	Description         string          `gorm:"size:1024" json:"description,omitempty"`
	CreatedAt           time.Time       `gorm:"not null" json:"createdAt"`
}
