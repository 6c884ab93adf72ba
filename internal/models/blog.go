package models

import "time"

// Blog statuses driven by the moderation workflow.
const (
	BlogStatusDraft     = "draft"
	BlogStatusPending   = "pending"
	BlogStatusPublished = "published"
	BlogStatusRejected  = "rejected"
	BlogStatusTrashed   = "trashed"
)

// Blog is a post snapshot. The *By/*At actor pairs are denormalized
// last-actor attribution written by the moderation endpoints; they predate
// the audit trail and remain the fallback source for legacy activity.
type Blog struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Slug          string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Category      string     `gorm:"size:64;index" json:"category"`
	Status        string     `gorm:"size:32;not null;index" json:"status"`
	AuthorID      uint       `gorm:"not null;index" json:"author_id"`
	Views         int64      `gorm:"not null;default:0" json:"views"`
	Likes         int64      `gorm:"not null;default:0" json:"likes"`
	CommentsCount int64      `gorm:"not null;default:0" json:"comments_count"`
	ApprovedBy    *uint      `gorm:"index" json:"approved_by"`
	ApprovedAt    *time.Time `json:"approved_at"`
	RejectedBy    *uint      `gorm:"index" json:"rejected_by"`
	RejectedAt    *time.Time `json:"rejected_at"`
	RepostedBy    *uint      `gorm:"index" json:"reposted_by"`
	RepostedAt    *time.Time `json:"reposted_at"`
	TrashedBy     *uint      `gorm:"index" json:"trashed_by"`
	TrashedAt     *time.Time `json:"trashed_at"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
