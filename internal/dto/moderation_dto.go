package dto

import (
	"time"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// ModerationRequest carries the optional free-text justification attached to
// a status transition. The text is sanitized before it reaches the audit
// trail.
type ModerationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

// ReviewReplyRequest is the payload for a staff reply on a review.
type ReviewReplyRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// ToolCreateRequest creates a directory tool entry.
type ToolCreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Slug     string `json:"slug" validate:"required,min=1,max=255"`
	Category string `json:"category" validate:"omitempty,max=64"`
}

// ToolUpdateRequest applies a partial update to a tool.
type ToolUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Category *string `json:"category" validate:"omitempty,max=64"`
	Status   *string `json:"status" validate:"omitempty,oneof=active archived"`
}

// ModerationResult reports the outcome of a status transition together with
// the audit record it appended.
type ModerationResult struct {
	TargetType string              `json:"target_type"`
	TargetID   uint                `json:"target_id"`
	Status     string              `json:"status"`
	Audit      AuditRecordResponse `json:"audit"`
}

// AuditRecordResponse serializes a persisted audit record.
type AuditRecordResponse struct {
	ID         uint                 `json:"id"`
	ActorID    uint                 `json:"actor_id"`
	ActorName  string               `json:"actor_name"`
	ActorRole  string               `json:"actor_role"`
	Action     string               `json:"action"`
	TargetType string               `json:"target_type"`
	TargetID   uint                 `json:"target_id"`
	TargetName string               `json:"target_name"`
	Changes    []models.FieldChange `json:"changes"`
	Reason     string               `json:"reason,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NewAuditRecordResponse maps the storage model to its response shape.
func NewAuditRecordResponse(record models.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:         record.ID,
		ActorID:    record.ActorID,
		ActorName:  record.ActorName,
		ActorRole:  record.ActorRole,
		Action:     record.Action,
		TargetType: record.TargetType,
		TargetID:   record.TargetID,
		TargetName: record.TargetName,
		Changes:    record.Changes,
		Reason:     record.Reason,
		CreatedAt:  record.CreatedAt,
	}
}
