package models

import "time"

// Review visibility statuses.
const (
	ReviewStatusVisible = "visible"
	ReviewStatusHidden  = "hidden"
)

// Review is a user-submitted tool review snapshot. HiddenBy/RestoredBy
// attribute the last moderation actor; there is no full audit trail for
// review moderation at the source, so derived activity for reviews is
// best-effort.
type Review struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	ToolID     uint          `gorm:"not null;index" json:"tool_id"`
	AuthorName string        `gorm:"size:128" json:"author_name"`
	Rating     int           `gorm:"not null" json:"rating"`
	Body       string        `gorm:"type:text" json:"body"`
	Status     string        `gorm:"size:32;not null;index" json:"status"`
	HiddenBy   *uint         `gorm:"index" json:"hidden_by"`
	RestoredBy *uint         `gorm:"index" json:"restored_by"`
	Replies    []ReviewReply `gorm:"foreignKey:ReviewID" json:"replies"`
	CreatedAt  time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ReviewReply is a staff reply attached to a review.
type ReviewReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReviewID  uint      `gorm:"not null;index" json:"review_id"`
	ReplierID uint      `gorm:"not null;index" json:"replier_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
