package model

import "time"

// Role is the authorization level of a user account.
type Role string

const (
	RoleOperator   Role = "Operator"
	RoleSupervisor Role = "Supervisor"
	RoleQA         Role = "QA"
	RoleAdmin      Role = "Admin"
)

// ValidRole reports whether r is one of the recognized roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleOperator, RoleSupervisor, RoleQA, RoleAdmin:
		return true
	}
	return false
}

// User represents an operator account. The password hash is excluded from
// JSON serialization so it can never appear in API responses or in audit
// trail snapshots.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	FullName     string    `gorm:"size:128;not null" json:"fullName"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	Department   string    `gorm:"size:64" json:"department,omitempty"`
	IsActive     bool      `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

// UserSummary is the caller-facing view of an account.
type UserSummary struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	Role       Role      `json:"role"`
	Department string    `json:"department,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Summary returns the sanitized view of the account.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Role:       u.Role,
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}
