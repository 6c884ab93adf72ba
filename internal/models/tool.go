package models

import "time"

// Tool statuses.
const (
	ToolStatusActive   = "active"
	ToolStatusArchived = "archived"
)

// Tool is a directory listing snapshot. CreatedBy/UpdatedBy attribute the
// last staff actor; older rows may carry neither, in which case activity is
// approximated from the timestamps.
type Tool struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:255;uniqueIndex" json:"slug"`
	Category  string    `gorm:"size:64;index" json:"category"`
	Status    string    `gorm:"size:32;not null;index" json:"status"`
	CreatedBy *uint     `gorm:"index" json:"created_by"`
	UpdatedBy *uint     `gorm:"index" json:"updated_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
