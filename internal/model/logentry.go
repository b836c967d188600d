package model

import "time"

// LogStatus is the lifecycle state of a log entry. Transitions are
// one-directional: Draft -> Submitted -> Approved.
type LogStatus string

const (
	LogDraft     LogStatus = "Draft"
	LogSubmitted LogStatus = "Submitted"
	LogApproved  LogStatus = "Approved"
)

// ActivityType classifies the activity recorded in a log entry.
type ActivityType string

const (
	ActivityOperation   ActivityType = "Operation"
	ActivityCleaning    ActivityType = "Cleaning"
	ActivityMaintenance ActivityType = "Maintenance"
	ActivityCalibration ActivityType = "Calibration"
	ActivitySampling    ActivityType = "Sampling"
)

// ValidActivityType reports whether t is a recognized activity type.
func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityOperation, ActivityCleaning, ActivityMaintenance, ActivityCalibration, ActivitySampling:
		return true
	}
	return false
}

// LogEntry is the central e-log record. SubmittedAt, ApprovedAt and
// ApprovedBy are write-once: they are populated exactly once by their
// transition and never cleared afterwards.
type LogEntry struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	LogID        string       `gorm:"uniqueIndex;size:32;not null" json:"logId"`
	EquipmentID  string       `gorm:"index;size:36;not null" json:"equipmentId"`
	ActivityType ActivityType `gorm:"size:16;not null" json:"activityType"`
	StartTime    time.Time    `gorm:"not null" json:"startTime"`
	EndTime      *time.Time   `json:"endTime,omitempty"`
	Description  string       `gorm:"size:2048;not null" json:"description"`
	BatchNumber  string       `gorm:"size:64" json:"batchNumber,omitempty"`
	Readings     string       `gorm:"size:1024" json:"readings,omitempty"`
	Status       LogStatus    `gorm:"size:16;not null;index" json:"status"`
	CreatedBy    string       `gorm:"size:36;not null" json:"createdBy"`
	CreatedAt    time.Time    `gorm:"not null" json:"createdAt"`
	SubmittedAt  *time.Time   `json:"submittedAt,omitempty"`
	ApprovedBy   *string      `gorm:"size:36" json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time   `json:"approvedAt,omitempty"`
}
