package model

import "time"

// PM schedule display statuses derived at read time.
const (
	PMOverdue   = "Overdue"
	PMDueToday  = "Due Today"
	PMUpcoming  = "Upcoming"
	PMCompleted = "Completed"
)

// PMSchedule defines a recurring preventive maintenance task for a piece of
// equipment. The displayed due status is not persisted; it is derived from
// NextDue at read time.
type PMSchedule struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	EquipmentID   string     `gorm:"index;size:36;not null" json:"equipmentId"`
	TaskName      string     `gorm:"size:128;not null" json:"taskName"`
	Frequency     string     `gorm:"size:32;not null" json:"frequency"`
	LastCompleted *time.Time `json:"lastCompleted,omitempty"`
	NextDue       time.Time  `gorm:"not null" json:"nextDue"`
	Status        string     `gorm:"size:16;not null" json:"status"`
	CreatedAt     time.Time  `gorm:"not null" json:"createdAt"`
}

// DerivedStatus computes the display status by comparing NextDue to the
// current date. A schedule marked Completed keeps that status.
func (s *PMSchedule) DerivedStatus(now time.Time) string {
	if s.Status == PMCompleted {
		return PMCompleted
	}
	y1, m1, d1 := s.NextDue.Date()
	y2, m2, d2 := now.Date()
	due := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	switch {
	case due.Before(today):
		return PMOverdue
	case due.Equal(today):
		return PMDueToday
	default:
		return PMUpcoming
	}
}
