package models

import "time"

// Staff roles. Only these three roles count as staff anywhere in the API.
const (
	RoleWriter  = "writer"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Staff account statuses.
const (
	StaffStatusActive  = "active"
	StaffStatusBlocked = "blocked"
)

// StaffMember is a platform user with a staff role. Counter columns are
// denormalized by the write paths elsewhere in the platform and are read
// here for leaderboards and activity weighting.
type StaffMember struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Email        string     `gorm:"size:160;uniqueIndex;not null" json:"email"`
	Role         string     `gorm:"size:32;not null;index" json:"role"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	PostsCount   int        `gorm:"not null;default:0" json:"posts_count"`
	ReviewsCount int        `gorm:"not null;default:0" json:"reviews_count"`
	TotalViews   int64      `gorm:"not null;default:0" json:"total_views"`
	LastLoginAt  *time.Time `gorm:"index" json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsStaffRole reports whether role belongs to the staff role set.
func IsStaffRole(role string) bool {
	switch role {
	case RoleWriter, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}
