package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

const approximatedNote = "approximated from snapshot timestamps"

// NoLimit disables truncation on ListPlatformActivity. Exports use it to
// serialize the full window.
const NoLimit = -1

const defaultPlatformActivityLimit = 50

// ActivityService merges the audit trail with snapshot-derived attribution
// into one chronological, deduplicated activity list.
type ActivityService interface {
	ListStaffActivity(ctx context.Context, staffID uint, windowStart, windowEnd time.Time) ([]dto.ActivityEvent, error)
	// ListPlatformActivity truncates to limit newest events. A zero limit
	// applies the feed default; pass NoLimit to return the full window.
	ListPlatformActivity(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]dto.ActivityEvent, error)
}

type activityService struct {
	audits   repository.AuditRecordRepository
	staff    repository.StaffRepository
	blogs    repository.BlogRepository
	tools    repository.ToolRepository
	reviews  repository.ReviewRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewActivityService constructs the activity aggregation service.
func NewActivityService(
	audits repository.AuditRecordRepository,
	staff repository.StaffRepository,
	blogs repository.BlogRepository,
	tools repository.ToolRepository,
	reviews repository.ReviewRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ActivityService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &activityService{
		audits:   audits,
		staff:    staff,
		blogs:    blogs,
		tools:    tools,
		reviews:  reviews,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) ListStaffActivity(ctx context.Context, staffID uint, windowStart, windowEnd time.Time) ([]dto.ActivityEvent, error) {
	if err := validateWindow(windowStart, windowEnd); err != nil {
		return nil, err
	}

	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("staff member %d: %w", staffID, ErrNotFound)
		}
		return nil, err
	}
	actor := actorRef(staff)

	records, err := s.audits.ListByActor(ctx, staffID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	events := s.auditEvents(records)

	// Snapshot queries are unwindowed on purpose: the actor timestamps are
	// range-checked per synthesized event, not at query time.
	blogs, err := s.blogs.ListByActor(ctx, staffID)
	if err != nil {
		return nil, err
	}
	events = append(events, s.blogEvents(blogs, actor, windowStart, windowEnd)...)

	tools, err := s.tools.ListByActor(ctx, staffID)
	if err != nil {
		return nil, err
	}
	events = append(events, s.toolEvents(tools, actor, windowStart, windowEnd)...)

	unattributed, err := s.tools.ListTouchedBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	events = append(events, s.approximatedToolEvents(unattributed, actor, windowStart, windowEnd)...)

	reviews, err := s.reviews.ListByActor(ctx, staffID)
	if err != nil {
		return nil, err
	}
	events = append(events, s.reviewEvents(reviews, actor, windowStart, windowEnd)...)

	return dedupe(sortEvents(events)), nil
}

func (s *activityService) ListPlatformActivity(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]dto.ActivityEvent, error) {
	if err := validateWindow(windowStart, windowEnd); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = defaultPlatformActivityLimit
	}

	cacheKey := fmt.Sprintf("activity:platform:v1:%d:%d:%d", windowStart.Unix(), windowEnd.Unix(), limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var events []dto.ActivityEvent
			if err := json.Unmarshal([]byte(cached), &events); err == nil {
				return events, nil
			}
		}
	}

	staffList, err := s.staff.List(ctx)
	if err != nil {
		return nil, err
	}
	actors := make(map[uint]dto.ActorRef, len(staffList))
	for _, member := range staffList {
		actors[member.ID] = actorRef(member)
	}

	records, err := s.audits.ListWindow(ctx, windowStart, windowEnd, 0)
	if err != nil {
		return nil, err
	}
	events := s.auditEvents(records)

	blogs, err := s.blogs.ListActedBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	for _, blog := range blogs {
		events = append(events, s.blogEventsForActors(blog, actors, windowStart, windowEnd)...)
	}

	tools, err := s.tools.ListTouchedBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	for _, tool := range tools {
		events = append(events, s.toolEventsForActors(tool, actors, windowStart, windowEnd)...)
	}

	reviews, err := s.reviews.ListActedBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	for _, review := range reviews {
		events = append(events, s.reviewEventsForActors(review, actors, windowStart, windowEnd)...)
	}

	merged := dedupe(sortEvents(events))
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	if s.cache != nil {
		if payload, err := json.Marshal(merged); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write platform activity cache")
			}
		}
	}

	return merged, nil
}

func (s *activityService) auditEvents(records []models.AuditRecord) []dto.ActivityEvent {
	events := make([]dto.ActivityEvent, 0, len(records))
	for _, record := range records {
		category := Classify(record.Action, record.TargetType)
		if category == CategoryOther {
			s.logger.Warn().
				Str("action", record.Action).
				Str("target_type", record.TargetType).
				Uint("record_id", record.ID).
				Msg("audit record outside category table")
		}
		events = append(events, dto.ActivityEvent{
			ID:         dto.NewEventID(record.Action, record.CreatedAt, record.TargetID),
			EntityType: record.TargetType,
			EntityID:   record.TargetID,
			EntityName: record.TargetName,
			Action:     record.Action,
			Category:   category,
			Timestamp:  record.CreatedAt,
			Changes:    record.Changes,
			Details:    dto.EventDetails{Reason: record.Reason},
			PerformedBy: dto.ActorRef{
				ID:   record.ActorID,
				Name: record.ActorName,
				Role: record.ActorRole,
			},
			Source: dto.EventSourceAudit,
		})
	}
	return events
}

func (s *activityService) blogEvents(blogs []models.Blog, actor dto.ActorRef, start, end time.Time) []dto.ActivityEvent {
	var events []dto.ActivityEvent
	for _, blog := range blogs {
		events = append(events, s.blogEventsForActors(blog, map[uint]dto.ActorRef{actor.ID: actor}, start, end)...)
	}
	return events
}

// blogEventsForActors synthesizes one event per non-null actor field, plus a
// creation event attributed to the author when the author is staff.
func (s *activityService) blogEventsForActors(blog models.Blog, actors map[uint]dto.ActorRef, start, end time.Time) []dto.ActivityEvent {
	var events []dto.ActivityEvent
	add := func(actorID *uint, at *time.Time, action string) {
		if actorID == nil || at == nil {
			return
		}
		actor, ok := actors[*actorID]
		if !ok {
			return
		}
		if !inWindow(*at, start, end) {
			return
		}
		events = append(events, derivedEvent(action, models.TargetBlog, blog.ID, blog.Title, *at, actor, ""))
	}

	add(blog.ApprovedBy, blog.ApprovedAt, models.ActionApproved)
	add(blog.RejectedBy, blog.RejectedAt, models.ActionRejected)
	add(blog.RepostedBy, blog.RepostedAt, models.ActionReposted)
	add(blog.TrashedBy, blog.TrashedAt, models.ActionMovedToTrash)

	if author, ok := actors[blog.AuthorID]; ok && inWindow(blog.CreatedAt, start, end) {
		events = append(events, derivedEvent(models.ActionCreated, models.TargetBlog, blog.ID, blog.Title, blog.CreatedAt, author, ""))
	}
	return events
}

func (s *activityService) toolEvents(tools []models.Tool, actor dto.ActorRef, start, end time.Time) []dto.ActivityEvent {
	var events []dto.ActivityEvent
	for _, tool := range tools {
		events = append(events, s.toolEventsForActors(tool, map[uint]dto.ActorRef{actor.ID: actor}, start, end)...)
	}
	return events
}

func (s *activityService) toolEventsForActors(tool models.Tool, actors map[uint]dto.ActorRef, start, end time.Time) []dto.ActivityEvent {
	var events []dto.ActivityEvent
	if tool.CreatedBy != nil {
		if actor, ok := actors[*tool.CreatedBy]; ok && inWindow(tool.CreatedAt, start, end) {
			events = append(events, derivedEvent(models.ActionCreated, models.TargetTool, tool.ID, tool.Name, tool.CreatedAt, actor, ""))
		}
	}
	if tool.UpdatedBy != nil && tool.UpdatedAt.After(tool.CreatedAt) {
		if actor, ok := actors[*tool.UpdatedBy]; ok && inWindow(tool.UpdatedAt, start, end) {
			events = append(events, derivedEvent(models.ActionUpdated, models.TargetTool, tool.ID, tool.Name, tool.UpdatedAt, actor, ""))
		}
	}
	return events
}

// approximatedToolEvents covers tools predating actor attribution: when no
// createdBy/updatedBy exists, activity inside the window is attributed to
// the queried staff member and flagged as approximated.
func (s *activityService) approximatedToolEvents(tools []models.Tool, actor dto.ActorRef, start, end time.Time) []dto.ActivityEvent {
	var events []dto.ActivityEvent
	for _, tool := range tools {
		if tool.CreatedBy == nil && inWindow(tool.CreatedAt, start, end) {
			events = append(events, derivedEvent(models.ActionCreated, models.TargetTool, tool.ID, tool.Name, tool.CreatedAt, actor, approximatedNote))
		}
		if tool.UpdatedBy == nil && tool.UpdatedAt.After(tool.CreatedAt) && inWindow(tool.UpdatedAt, start, end) {
			events = append(events, derivedEvent(models.ActionUpdated, models.TargetTool, tool.ID, tool.Name, tool.UpdatedAt, actor, approximatedNote))
		}
	}
	return events
}

func (s *activityService) reviewEvents(reviews []models.Review, actor dto.ActorRef, start, end time.Time) []dto.ActivityEvent {
	var events []dto.ActivityEvent
	for _, review := range reviews {
		events = append(events, s.reviewEventsForActors(review, map[uint]dto.ActorRef{actor.ID: actor}, start, end)...)
	}
	return events
}

// reviewEventsForActors is best-effort: review moderation carries no audit
// trail at the source, so hidden/restored events are inferred from the actor
// stamp plus a mutated updatedAt matching the resulting status.
func (s *activityService) reviewEventsForActors(review models.Review, actors map[uint]dto.ActorRef, start, end time.Time) []dto.ActivityEvent {
	var events []dto.ActivityEvent

	for _, reply := range review.Replies {
		if actor, ok := actors[reply.ReplierID]; ok && inWindow(reply.CreatedAt, start, end) {
			events = append(events, derivedEvent(models.ActionReplied, models.TargetReview, review.ID, reviewLabel(review), reply.CreatedAt, actor, ""))
		}
	}

	touched := !review.UpdatedAt.Equal(review.CreatedAt)
	if review.HiddenBy != nil && review.Status == models.ReviewStatusHidden && touched {
		if actor, ok := actors[*review.HiddenBy]; ok && inWindow(review.UpdatedAt, start, end) {
			events = append(events, derivedEvent(models.ActionHidden, models.TargetReview, review.ID, reviewLabel(review), review.UpdatedAt, actor, approximatedNote))
		}
	}
	if review.RestoredBy != nil && review.Status == models.ReviewStatusVisible && touched {
		if actor, ok := actors[*review.RestoredBy]; ok && inWindow(review.UpdatedAt, start, end) {
			events = append(events, derivedEvent(models.ActionRestored, models.TargetReview, review.ID, reviewLabel(review), review.UpdatedAt, actor, approximatedNote))
		}
	}
	return events
}

func derivedEvent(action, entityType string, entityID uint, entityName string, at time.Time, actor dto.ActorRef, note string) dto.ActivityEvent {
	return dto.ActivityEvent{
		ID:          dto.NewEventID(action, at, entityID),
		EntityType:  entityType,
		EntityID:    entityID,
		EntityName:  entityName,
		Action:      action,
		Category:    Classify(action, entityType),
		Timestamp:   at,
		Details:     dto.EventDetails{Note: note},
		PerformedBy: actor,
		Source:      dto.EventSourceDerived,
	}
}

// sortEvents orders events newest first. Ties prefer audit-backed events so
// dedupe keeps the authoritative record over the snapshot inference.
func sortEvents(events []dto.ActivityEvent) []dto.ActivityEvent {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		if events[i].Source != events[j].Source {
			return events[i].Source == dto.EventSourceAudit
		}
		return events[i].ID < events[j].ID
	})
	return events
}

// dedupe removes later occurrences of the same action|timestamp|target key;
// first occurrence wins.
func dedupe(events []dto.ActivityEvent) []dto.ActivityEvent {
	seen := make(map[string]struct{}, len(events))
	result := make([]dto.ActivityEvent, 0, len(events))
	for _, event := range events {
		key := event.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, event)
	}
	return result
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("window bounds are required: %w", ErrInvalidArgument)
	}
	if start.After(end) {
		return fmt.Errorf("window start after end: %w", ErrInvalidArgument)
	}
	return nil
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func actorRef(staff models.StaffMember) dto.ActorRef {
	return dto.ActorRef{ID: staff.ID, Name: staff.Name, Role: staff.Role}
}

func reviewLabel(review models.Review) string {
	if review.AuthorName != "" {
		return "Review by " + review.AuthorName
	}
	return fmt.Sprintf("Review #%d", review.ID)
}
