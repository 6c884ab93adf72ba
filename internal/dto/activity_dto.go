package dto

import (
	"fmt"
	"time"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// Activity event sources. Audit-backed events are authoritative; derived
// events are synthesized from snapshot actor fields and may be approximate.
const (
	EventSourceAudit   = "audit"
	EventSourceDerived = "derived"
)

// ActorRef identifies the staff member who performed an action.
type ActorRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// EventDetails carries free-form context attached to an activity event.
type EventDetails struct {
	Description string `json:"description,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Note        string `json:"note,omitempty"`
}

// ActivityEvent is the request-scoped representation of one staff action,
// merged from the audit trail and snapshot-derived attribution.
type ActivityEvent struct {
	ID          string               `json:"id"`
	EntityType  string               `json:"entity_type"`
	EntityID    uint                 `json:"entity_id"`
	EntityName  string               `json:"entity_name"`
	Action      string               `json:"action"`
	Category    string               `json:"category"`
	Timestamp   time.Time            `json:"timestamp"`
	Changes     []models.FieldChange `json:"changes,omitempty"`
	Details     EventDetails         `json:"details"`
	PerformedBy ActorRef             `json:"performed_by"`
	Source      string               `json:"source"`
}

// DedupKey returns the composite key used to collapse the same action seen
// through both the audit trail and snapshot attribution.
func (e ActivityEvent) DedupKey() string {
	return fmt.Sprintf("%s|%d|%d", e.Action, e.Timestamp.UnixMilli(), e.EntityID)
}

// NewEventID derives the stable event identifier from the dedup key parts.
func NewEventID(action string, ts time.Time, targetID uint) string {
	return fmt.Sprintf("%s|%d|%d", action, ts.UnixMilli(), targetID)
}
