package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/observability"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

// ModerationService applies staff moderation actions. Every successful
// transition appends one audit record and fans the event out to the live
// stream; the snapshot actor fields are updated in the same call so derived
// activity stays consistent with the audit trail.
type ModerationService interface {
	ApproveBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error)
	RejectBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error)
	RepostBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error)
	TrashBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error)
	RestoreBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error)

	HideReview(ctx context.Context, actor models.StaffMember, reviewID uint, req dto.ModerationRequest) (dto.ModerationResult, error)
	RestoreReview(ctx context.Context, actor models.StaffMember, reviewID uint, req dto.ModerationRequest) (dto.ModerationResult, error)
	ReplyToReview(ctx context.Context, actor models.StaffMember, reviewID uint, req dto.ReviewReplyRequest) (dto.ModerationResult, error)

	CreateTool(ctx context.Context, actor models.StaffMember, req dto.ToolCreateRequest) (dto.ModerationResult, error)
	UpdateTool(ctx context.Context, actor models.StaffMember, toolID uint, req dto.ToolUpdateRequest) (dto.ModerationResult, error)
	DeleteTool(ctx context.Context, actor models.StaffMember, toolID uint, req dto.ModerationRequest) (dto.ModerationResult, error)
}

type moderationService struct {
	blogs     repository.BlogRepository
	reviews   repository.ReviewRepository
	tools     repository.ToolRepository
	audits    repository.AuditRecordRepository
	stream    ActivityStreamService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewModerationService constructs the moderation service.
func NewModerationService(
	blogs repository.BlogRepository,
	reviews repository.ReviewRepository,
	tools repository.ToolRepository,
	audits repository.AuditRecordRepository,
	stream ActivityStreamService,
	validate *validator.Validate,
	logger zerolog.Logger,
) ModerationService {
	return &moderationService{
		blogs:     blogs,
		reviews:   reviews,
		tools:     tools,
		audits:    audits,
		stream:    stream,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "moderation_service").Logger(),
		tracer:    otel.Tracer("github.com/inkwell-labs/inkwell-admin-api/internal/service/moderation"),
		now:       time.Now,
	}
}

func (s *moderationService) ApproveBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return s.blogTransition(ctx, actor, blogID, req, models.ActionApproved, func(blog *models.Blog, at time.Time) error {
		if blog.Status != models.BlogStatusPending {
			return fmt.Errorf("blog %d is %s, only pending blogs can be approved: %w", blog.ID, blog.Status, ErrInvalidState)
		}
		blog.Status = models.BlogStatusPublished
		blog.ApprovedBy = &actor.ID
		blog.ApprovedAt = &at
		if blog.PublishedAt == nil {
			blog.PublishedAt = &at
		}
		return nil
	})
}

func (s *moderationService) RejectBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return s.blogTransition(ctx, actor, blogID, req, models.ActionRejected, func(blog *models.Blog, at time.Time) error {
		if blog.Status != models.BlogStatusPending {
			return fmt.Errorf("blog %d is %s, only pending blogs can be rejected: %w", blog.ID, blog.Status, ErrInvalidState)
		}
		blog.Status = models.BlogStatusRejected
		blog.RejectedBy = &actor.ID
		blog.RejectedAt = &at
		return nil
	})
}

func (s *moderationService) RepostBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return s.blogTransition(ctx, actor, blogID, req, models.ActionReposted, func(blog *models.Blog, at time.Time) error {
		if blog.Status != models.BlogStatusRejected && blog.Status != models.BlogStatusTrashed {
			return fmt.Errorf("blog %d is %s, only rejected or trashed blogs can be reposted: %w", blog.ID, blog.Status, ErrInvalidState)
		}
		blog.Status = models.BlogStatusPublished
		blog.RepostedBy = &actor.ID
		blog.RepostedAt = &at
		blog.PublishedAt = &at
		return nil
	})
}

func (s *moderationService) TrashBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return s.blogTransition(ctx, actor, blogID, req, models.ActionMovedToTrash, func(blog *models.Blog, at time.Time) error {
		if blog.Status == models.BlogStatusTrashed {
			return fmt.Errorf("blog %d is already trashed: %w", blog.ID, ErrInvalidState)
		}
		blog.Status = models.BlogStatusTrashed
		blog.TrashedBy = &actor.ID
		blog.TrashedAt = &at
		return nil
	})
}

func (s *moderationService) RestoreBlog(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return s.blogTransition(ctx, actor, blogID, req, models.ActionRestored, func(blog *models.Blog, at time.Time) error {
		if blog.Status != models.BlogStatusTrashed {
			return fmt.Errorf("blog %d is %s, only trashed blogs can be restored: %w", blog.ID, blog.Status, ErrInvalidState)
		}
		blog.Status = models.BlogStatusDraft
		return nil
	})
}

func (s *moderationService) blogTransition(ctx context.Context, actor models.StaffMember, blogID uint, req dto.ModerationRequest, action string, apply func(*models.Blog, time.Time) error) (dto.ModerationResult, error) {
	reason, err := s.cleanReason(req)
	if err != nil {
		return dto.ModerationResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "moderation.blog."+action, trace.WithAttributes(
		attribute.Int("moderation.blog_id", int(blogID)),
		attribute.Int("moderation.actor_id", int(actor.ID)),
	))
	defer span.End()

	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModerationResult{}, fmt.Errorf("blog %d: %w", blogID, ErrNotFound)
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	at := s.now().UTC()
	previousStatus := blog.Status
	if err := apply(&blog, at); err != nil {
		return dto.ModerationResult{}, err
	}

	if err := s.blogs.Update(ctx, &blog); err != nil {
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	record := models.AuditRecord{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: models.TargetBlog,
		TargetID:   blog.ID,
		TargetName: blog.Title,
		Changes: datatypes.NewJSONSlice([]models.FieldChange{
			{Field: "status", OldValue: previousStatus, NewValue: blog.Status},
		}),
		Reason:    reason,
		Metadata:  datatypes.JSONMap{"author_id": blog.AuthorID},
		CreatedAt: at,
	}
	return s.finish(ctx, &record, blog.Status)
}

func (s *moderationService) HideReview(ctx context.Context, actor models.StaffMember, reviewID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return s.reviewTransition(ctx, actor, reviewID, req, models.ActionHidden, func(review *models.Review) error {
		if review.Status == models.ReviewStatusHidden {
			return fmt.Errorf("review %d is already hidden: %w", review.ID, ErrInvalidState)
		}
		review.Status = models.ReviewStatusHidden
		review.HiddenBy = &actor.ID
		return nil
	})
}

func (s *moderationService) RestoreReview(ctx context.Context, actor models.StaffMember, reviewID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return s.reviewTransition(ctx, actor, reviewID, req, models.ActionRestored, func(review *models.Review) error {
		if review.Status != models.ReviewStatusHidden {
			return fmt.Errorf("review %d is %s, only hidden reviews can be restored: %w", review.ID, review.Status, ErrInvalidState)
		}
		review.Status = models.ReviewStatusVisible
		review.RestoredBy = &actor.ID
		return nil
	})
}

func (s *moderationService) reviewTransition(ctx context.Context, actor models.StaffMember, reviewID uint, req dto.ModerationRequest, action string, apply func(*models.Review) error) (dto.ModerationResult, error) {
	reason, err := s.cleanReason(req)
	if err != nil {
		return dto.ModerationResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "moderation.review."+action, trace.WithAttributes(
		attribute.Int("moderation.review_id", int(reviewID)),
		attribute.Int("moderation.actor_id", int(actor.ID)),
	))
	defer span.End()

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModerationResult{}, fmt.Errorf("review %d: %w", reviewID, ErrNotFound)
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	previousStatus := review.Status
	if err := apply(&review); err != nil {
		return dto.ModerationResult{}, err
	}

	if err := s.reviews.Update(ctx, &review); err != nil {
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	record := models.AuditRecord{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: models.TargetReview,
		TargetID:   review.ID,
		TargetName: reviewTargetName(review),
		Changes: datatypes.NewJSONSlice([]models.FieldChange{
			{Field: "status", OldValue: previousStatus, NewValue: review.Status},
		}),
		Reason:    reason,
		Metadata:  datatypes.JSONMap{"tool_id": review.ToolID, "rating": review.Rating},
		CreatedAt: s.now().UTC(),
	}
	return s.finish(ctx, &record, review.Status)
}

func (s *moderationService) ReplyToReview(ctx context.Context, actor models.StaffMember, reviewID uint, req dto.ReviewReplyRequest) (dto.ModerationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ModerationResult{}, err
	}
	body := strings.TrimSpace(s.sanitizer.Sanitize(req.Body))
	if body == "" {
		return dto.ModerationResult{}, fmt.Errorf("reply body empty after sanitization: %w", ErrInvalidArgument)
	}

	ctx, span := s.tracer.Start(ctx, "moderation.review.reply", trace.WithAttributes(
		attribute.Int("moderation.review_id", int(reviewID)),
		attribute.Int("moderation.actor_id", int(actor.ID)),
	))
	defer span.End()

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModerationResult{}, fmt.Errorf("review %d: %w", reviewID, ErrNotFound)
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	at := s.now().UTC()
	reply := models.ReviewReply{
		ReviewID:  review.ID,
		ReplierID: actor.ID,
		Body:      body,
		CreatedAt: at,
	}
	if err := s.reviews.AddReply(ctx, &reply); err != nil {
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	record := models.AuditRecord{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Action:     models.ActionReplied,
		TargetType: models.TargetReview,
		TargetID:   review.ID,
		TargetName: reviewTargetName(review),
		Metadata:   datatypes.JSONMap{"tool_id": review.ToolID, "reply_id": reply.ID},
		CreatedAt:  at,
	}
	return s.finish(ctx, &record, review.Status)
}

func (s *moderationService) CreateTool(ctx context.Context, actor models.StaffMember, req dto.ToolCreateRequest) (dto.ModerationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ModerationResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "moderation.tool.create", trace.WithAttributes(
		attribute.Int("moderation.actor_id", int(actor.ID)),
	))
	defer span.End()

	at := s.now().UTC()
	tool := models.Tool{
		Name:      strings.TrimSpace(s.sanitizer.Sanitize(req.Name)),
		Slug:      strings.TrimSpace(req.Slug),
		Category:  strings.TrimSpace(req.Category),
		Status:    models.ToolStatusActive,
		CreatedBy: &actor.ID,
	}
	if tool.Name == "" {
		return dto.ModerationResult{}, fmt.Errorf("tool name empty after sanitization: %w", ErrInvalidArgument)
	}
	if err := s.tools.Create(ctx, &tool); err != nil {
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	record := models.AuditRecord{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Action:     models.ActionCreated,
		TargetType: models.TargetTool,
		TargetID:   tool.ID,
		TargetName: tool.Name,
		Metadata:   datatypes.JSONMap{"slug": tool.Slug, "category": tool.Category},
		CreatedAt:  at,
	}
	return s.finish(ctx, &record, tool.Status)
}

func (s *moderationService) UpdateTool(ctx context.Context, actor models.StaffMember, toolID uint, req dto.ToolUpdateRequest) (dto.ModerationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ModerationResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "moderation.tool.update", trace.WithAttributes(
		attribute.Int("moderation.tool_id", int(toolID)),
		attribute.Int("moderation.actor_id", int(actor.ID)),
	))
	defer span.End()

	tool, err := s.tools.GetByID(ctx, toolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModerationResult{}, fmt.Errorf("tool %d: %w", toolID, ErrNotFound)
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	var changes []models.FieldChange
	if req.Name != nil {
		name := strings.TrimSpace(s.sanitizer.Sanitize(*req.Name))
		if name == "" {
			return dto.ModerationResult{}, fmt.Errorf("tool name empty after sanitization: %w", ErrInvalidArgument)
		}
		if name != tool.Name {
			changes = append(changes, models.FieldChange{Field: "name", OldValue: tool.Name, NewValue: name})
			tool.Name = name
		}
	}
	if req.Category != nil && *req.Category != tool.Category {
		changes = append(changes, models.FieldChange{Field: "category", OldValue: tool.Category, NewValue: *req.Category})
		tool.Category = *req.Category
	}
	if req.Status != nil && *req.Status != tool.Status {
		changes = append(changes, models.FieldChange{Field: "status", OldValue: tool.Status, NewValue: *req.Status})
		tool.Status = *req.Status
	}
	if len(changes) == 0 {
		return dto.ModerationResult{}, fmt.Errorf("no fields to update: %w", ErrInvalidArgument)
	}

	tool.UpdatedBy = &actor.ID
	if err := s.tools.Update(ctx, &tool); err != nil {
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	record := models.AuditRecord{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Action:     models.ActionUpdated,
		TargetType: models.TargetTool,
		TargetID:   tool.ID,
		TargetName: tool.Name,
		Changes:    datatypes.NewJSONSlice(changes),
		CreatedAt:  s.now().UTC(),
	}
	return s.finish(ctx, &record, tool.Status)
}

func (s *moderationService) DeleteTool(ctx context.Context, actor models.StaffMember, toolID uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	reason, err := s.cleanReason(req)
	if err != nil {
		return dto.ModerationResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "moderation.tool.delete", trace.WithAttributes(
		attribute.Int("moderation.tool_id", int(toolID)),
		attribute.Int("moderation.actor_id", int(actor.ID)),
	))
	defer span.End()

	tool, err := s.tools.GetByID(ctx, toolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModerationResult{}, fmt.Errorf("tool %d: %w", toolID, ErrNotFound)
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	if err := s.tools.Delete(ctx, toolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModerationResult{}, fmt.Errorf("tool %d: %w", toolID, ErrNotFound)
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	record := models.AuditRecord{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Action:     models.ActionDeleted,
		TargetType: models.TargetTool,
		TargetID:   tool.ID,
		TargetName: tool.Name,
		Reason:     reason,
		Metadata:   datatypes.JSONMap{"slug": tool.Slug},
		CreatedAt:  s.now().UTC(),
	}
	return s.finish(ctx, &record, "deleted")
}

// finish persists the audit record, streams the resulting event, and shapes
// the response. The audit write is the commit point: a failed write fails the
// whole action even though the snapshot already changed, and the caller sees
// the error.
func (s *moderationService) finish(ctx context.Context, record *models.AuditRecord, status string) (dto.ModerationResult, error) {
	if err := s.audits.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).
			Str("action", record.Action).
			Str("target_type", record.TargetType).
			Uint("target_id", record.TargetID).
			Msg("failed to append audit record")
		return dto.ModerationResult{}, err
	}

	event := dto.ActivityEvent{
		ID:         dto.NewEventID(record.Action, record.CreatedAt, record.TargetID),
		EntityType: record.TargetType,
		EntityID:   record.TargetID,
		EntityName: record.TargetName,
		Action:     record.Action,
		Category:   Classify(record.Action, record.TargetType),
		Timestamp:  record.CreatedAt,
		Changes:    record.Changes,
		Details:    dto.EventDetails{Reason: record.Reason},
		PerformedBy: dto.ActorRef{
			ID:   record.ActorID,
			Name: record.ActorName,
			Role: record.ActorRole,
		},
		Source: dto.EventSourceAudit,
	}
	if s.stream != nil {
		s.stream.Broadcast(ctx, event)
	}

	observability.ModerationActionsTotal().WithLabelValues(record.Action, record.TargetType).Inc()

	return dto.ModerationResult{
		TargetType: record.TargetType,
		TargetID:   record.TargetID,
		Status:     status,
		Audit:      dto.NewAuditRecordResponse(*record),
	}, nil
}

func (s *moderationService) cleanReason(req dto.ModerationRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", err
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(req.Reason)), nil
}

func reviewTargetName(review models.Review) string {
	if review.AuthorName != "" {
		return "Review by " + review.AuthorName
	}
	return fmt.Sprintf("Review #%d", review.ID)
}
