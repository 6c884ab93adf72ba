package models

import (
	"time"

	"gorm.io/datatypes"
)

// Actions recorded in the audit trail. The set is closed: classification and
// export code switch over these values and route anything else to "other".
const (
	ActionRoleChanged    = "role_changed"
	ActionBlocked        = "blocked"
	ActionUnblocked      = "unblocked"
	ActionProfileUpdated = "profile_updated"
	ActionDataModified   = "data_modified"
	ActionAccountDeleted = "account_deleted"
	ActionCreated        = "created"
	ActionUpdated        = "updated"
	ActionDeleted        = "deleted"
	ActionHidden         = "hidden"
	ActionRestored       = "restored"
	ActionReplied        = "replied"
	ActionApproved       = "approved"
	ActionRejected       = "rejected"
	ActionReposted       = "reposted"
	ActionMovedToTrash   = "moved_to_trash"
	ActionPublished      = "published"
	ActionUnpublished    = "unpublished"
	ActionVerified       = "verified"
	ActionUnverified     = "unverified"
)

// Target entity types an audit record can reference.
const (
	TargetUser   = "user"
	TargetTool   = "tool"
	TargetReview = "review"
	TargetBlog   = "blog"
)

// FieldChange records a single field mutation captured by a staff action.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// AuditRecord is one immutable entry in the staff action log. Records are
// written when a moderation action succeeds and are never updated or deleted.
type AuditRecord struct {
	ID         uint                            `gorm:"primaryKey" json:"id"`
	ActorID    uint                            `gorm:"not null;index" json:"actor_id"`
	ActorName  string                          `gorm:"size:128;not null" json:"actor_name"`
	ActorRole  string                          `gorm:"size:32;not null" json:"actor_role"`
	Action     string                          `gorm:"size:64;not null" json:"action"`
	TargetType string                          `gorm:"size:32;not null" json:"target_type"`
	TargetID   uint                            `gorm:"not null;index" json:"target_id"`
	TargetName string                          `gorm:"size:255" json:"target_name"`
	Changes    datatypes.JSONSlice[FieldChange] `gorm:"type:json" json:"changes"`
	Reason     string                          `gorm:"type:text" json:"reason"`
	Metadata   datatypes.JSONMap               `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time                       `gorm:"index" json:"created_at"`
}
