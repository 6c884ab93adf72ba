package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

func newModerationService(t *testing.T, db *gorm.DB) ModerationService {
	t.Helper()
	return NewModerationService(
		repository.NewBlogRepository(db),
		repository.NewReviewRepository(db),
		repository.NewToolRepository(db),
		repository.NewAuditRecordRepository(db),
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)
}

func auditRecords(t *testing.T, db *gorm.DB) []models.AuditRecord {
	t.Helper()
	var records []models.AuditRecord
	require.NoError(t, db.Order("id").Find(&records).Error)
	return records
}

func TestApproveBlogWritesAuditAndSnapshot(t *testing.T) {
	db := openTestDB(t, "moderation_approve")
	svc := newModerationService(t, db)

	actor := seedStaff(t, db, 1, "hana", models.RoleManager)
	blog := models.Blog{ID: 1, Title: "Pending Post", Status: models.BlogStatusPending, AuthorID: 2}
	require.NoError(t, db.Create(&blog).Error)

	result, err := svc.ApproveBlog(context.Background(), actor, blog.ID, dto.ModerationRequest{Reason: "looks good"})
	require.NoError(t, err)
	require.Equal(t, models.TargetBlog, result.TargetType)
	require.Equal(t, models.BlogStatusPublished, result.Status)

	var updated models.Blog
	require.NoError(t, db.First(&updated, blog.ID).Error)
	require.Equal(t, models.BlogStatusPublished, updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	require.Equal(t, actor.ID, *updated.ApprovedBy)
	require.NotNil(t, updated.ApprovedAt)
	require.NotNil(t, updated.PublishedAt)

	records := auditRecords(t, db)
	require.Len(t, records, 1)
	require.Equal(t, models.ActionApproved, records[0].Action)
	require.Equal(t, "looks good", records[0].Reason)
	require.Equal(t, actor.ID, records[0].ActorID)
	require.Len(t, records[0].Changes, 1)
	require.Equal(t, "status", records[0].Changes[0].Field)
	require.Equal(t, models.BlogStatusPending, records[0].Changes[0].OldValue)
	require.Equal(t, models.BlogStatusPublished, records[0].Changes[0].NewValue)
}

func TestApproveBlogRejectsWrongState(t *testing.T) {
	db := openTestDB(t, "moderation_state")
	svc := newModerationService(t, db)

	actor := seedStaff(t, db, 1, "iris", models.RoleAdmin)
	blog := models.Blog{ID: 1, Title: "Already Live", Status: models.BlogStatusPublished, AuthorID: 2}
	require.NoError(t, db.Create(&blog).Error)

	_, err := svc.ApproveBlog(context.Background(), actor, blog.ID, dto.ModerationRequest{})
	require.ErrorIs(t, err, ErrInvalidState)

	// No audit record for a refused transition.
	require.Empty(t, auditRecords(t, db))
}

func TestBlogModerationNotFound(t *testing.T) {
	db := openTestDB(t, "moderation_missing")
	svc := newModerationService(t, db)
	actor := seedStaff(t, db, 1, "jo", models.RoleManager)

	_, err := svc.RejectBlog(context.Background(), actor, 99, dto.ModerationRequest{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepostTrashedBlog(t *testing.T) {
	db := openTestDB(t, "moderation_repost")
	svc := newModerationService(t, db)

	actor := seedStaff(t, db, 1, "kim", models.RoleManager)
	blog := models.Blog{ID: 1, Title: "Second Chance", Status: models.BlogStatusTrashed, AuthorID: 2}
	require.NoError(t, db.Create(&blog).Error)

	result, err := svc.RepostBlog(context.Background(), actor, blog.ID, dto.ModerationRequest{})
	require.NoError(t, err)
	require.Equal(t, models.BlogStatusPublished, result.Status)

	var updated models.Blog
	require.NoError(t, db.First(&updated, blog.ID).Error)
	require.NotNil(t, updated.RepostedBy)
	require.NotNil(t, updated.PublishedAt)
}

func TestModerationReasonIsSanitized(t *testing.T) {
	db := openTestDB(t, "moderation_sanitize")
	svc := newModerationService(t, db)

	actor := seedStaff(t, db, 1, "lee", models.RoleManager)
	blog := models.Blog{ID: 1, Title: "Spam Post", Status: models.BlogStatusPending, AuthorID: 2}
	require.NoError(t, db.Create(&blog).Error)

	_, err := svc.RejectBlog(context.Background(), actor, blog.ID, dto.ModerationRequest{
		Reason: `<script>alert("x")</script>duplicate content`,
	})
	require.NoError(t, err)

	records := auditRecords(t, db)
	require.Len(t, records, 1)
	require.Equal(t, "duplicate content", records[0].Reason)
}

func TestHideAndRestoreReview(t *testing.T) {
	db := openTestDB(t, "moderation_review")
	svc := newModerationService(t, db)

	actor := seedStaff(t, db, 1, "mia", models.RoleManager)
	review := models.Review{ID: 1, ToolID: 3, AuthorName: "Visitor", Rating: 2, Status: models.ReviewStatusVisible}
	require.NoError(t, db.Create(&review).Error)

	result, err := svc.HideReview(context.Background(), actor, review.ID, dto.ModerationRequest{Reason: "abusive"})
	require.NoError(t, err)
	require.Equal(t, models.ReviewStatusHidden, result.Status)

	// Hiding twice is refused.
	_, err = svc.HideReview(context.Background(), actor, review.ID, dto.ModerationRequest{})
	require.ErrorIs(t, err, ErrInvalidState)

	result, err = svc.RestoreReview(context.Background(), actor, review.ID, dto.ModerationRequest{})
	require.NoError(t, err)
	require.Equal(t, models.ReviewStatusVisible, result.Status)

	var updated models.Review
	require.NoError(t, db.First(&updated, review.ID).Error)
	require.NotNil(t, updated.HiddenBy)
	require.NotNil(t, updated.RestoredBy)

	records := auditRecords(t, db)
	require.Len(t, records, 2)
	require.Equal(t, models.ActionHidden, records[0].Action)
	require.Equal(t, models.ActionRestored, records[1].Action)
}

func TestReplyToReviewValidation(t *testing.T) {
	db := openTestDB(t, "moderation_reply")
	svc := newModerationService(t, db)

	actor := seedStaff(t, db, 1, "noa", models.RoleWriter)
	review := models.Review{ID: 1, ToolID: 3, AuthorName: "Visitor", Rating: 5, Status: models.ReviewStatusVisible}
	require.NoError(t, db.Create(&review).Error)

	_, err := svc.ReplyToReview(context.Background(), actor, review.ID, dto.ReviewReplyRequest{Body: ""})
	require.Error(t, err)

	_, err = svc.ReplyToReview(context.Background(), actor, review.ID, dto.ReviewReplyRequest{Body: "<script>x</script>"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	result, err := svc.ReplyToReview(context.Background(), actor, review.ID, dto.ReviewReplyRequest{Body: "Thanks for the report."})
	require.NoError(t, err)
	require.Equal(t, models.TargetReview, result.TargetType)

	var replies []models.ReviewReply
	require.NoError(t, db.Find(&replies).Error)
	require.Len(t, replies, 1)
	require.Equal(t, "Thanks for the report.", replies[0].Body)
	require.Equal(t, actor.ID, replies[0].ReplierID)
}

func TestCreateUpdateDeleteTool(t *testing.T) {
	db := openTestDB(t, "moderation_tool")
	svc := newModerationService(t, db)
	actor := seedStaff(t, db, 1, "ola", models.RoleAdmin)

	created, err := svc.CreateTool(context.Background(), actor, dto.ToolCreateRequest{
		Name:     "Headline Grader",
		Slug:     "headline-grader",
		Category: "writing",
	})
	require.NoError(t, err)
	require.Equal(t, models.ToolStatusActive, created.Status)

	var tool models.Tool
	require.NoError(t, db.First(&tool, created.TargetID).Error)
	require.NotNil(t, tool.CreatedBy)
	require.Equal(t, actor.ID, *tool.CreatedBy)

	newName := "Headline Grader Pro"
	archived := models.ToolStatusArchived
	updated, err := svc.UpdateTool(context.Background(), actor, tool.ID, dto.ToolUpdateRequest{
		Name:   &newName,
		Status: &archived,
	})
	require.NoError(t, err)
	require.Equal(t, models.ToolStatusArchived, updated.Status)
	require.Len(t, updated.Audit.Changes, 2)
	require.Equal(t, "name", updated.Audit.Changes[0].Field)
	require.Equal(t, "Headline Grader", updated.Audit.Changes[0].OldValue)
	require.Equal(t, "Headline Grader Pro", updated.Audit.Changes[0].NewValue)

	// Submitting the current values again is not an update.
	_, err = svc.UpdateTool(context.Background(), actor, tool.ID, dto.ToolUpdateRequest{Name: &newName})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.DeleteTool(context.Background(), actor, tool.ID, dto.ModerationRequest{Reason: "superseded"})
	require.NoError(t, err)

	err = db.First(&models.Tool{}, tool.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.DeleteTool(context.Background(), actor, tool.ID, dto.ModerationRequest{})
	require.ErrorIs(t, err, ErrNotFound)

	records := auditRecords(t, db)
	require.Len(t, records, 3)
	require.Equal(t, models.ActionCreated, records[0].Action)
	require.Equal(t, models.ActionUpdated, records[1].Action)
	require.Equal(t, models.ActionDeleted, records[2].Action)
}

func TestModerationTimestampsAreUTC(t *testing.T) {
	db := openTestDB(t, "moderation_utc")
	svc := newModerationService(t, db).(*moderationService)
	svc.now = func() time.Time {
		loc := time.FixedZone("UTC+7", 7*3600)
		return time.Date(2026, 8, 22, 19, 0, 0, 0, loc)
	}

	actor := seedStaff(t, db, 1, "pia", models.RoleManager)
	blog := models.Blog{ID: 1, Title: "Zones", Status: models.BlogStatusPending, AuthorID: 2}
	require.NoError(t, db.Create(&blog).Error)

	_, err := svc.ApproveBlog(context.Background(), actor, blog.ID, dto.ModerationRequest{})
	require.NoError(t, err)

	records := auditRecords(t, db)
	require.Len(t, records, 1)
	require.Equal(t, time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC), records[0].CreatedAt.UTC())
}
