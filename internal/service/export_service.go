package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

// csvBOM makes spreadsheet apps detect UTF-8. Prepended to every export.
const csvBOM = "\uFEFF"

// Column orders are part of the reporting contract and must stay stable.
var activityCSVHeader = []string{
	"Date", "Time", "Staff Name", "Staff Email", "Staff Role", "Action Type",
	"Entity Type", "Entity Name", "Entity ID", "Description", "Reason",
	"Changes Count", "Field Changes", "Entity Category", "Entity Status",
	"Entity Email", "Entity Role", "Rating", "Tool Name", "Author Name",
	"Activity ID", "Source", "ISO Timestamp",
}

var postCSVHeader = []string{
	"Title", "Status", "Category", "Views", "Likes", "Comments",
	"Engagement Rate (%)", "Published Date", "Created Date", "Last Updated",
}

// ExportService renders activity and post-performance CSV downloads. Empty
// datasets produce a header-only file; both export paths carry the BOM.
type ExportService interface {
	ActivityCSV(ctx context.Context, days int, staffID *uint) ([]byte, error)
	PostPerformanceCSV(ctx context.Context, days int) ([]byte, error)
}

type exportService struct {
	activity ActivityService
	staff    repository.StaffRepository
	blogs    repository.BlogRepository
	tools    repository.ToolRepository
	reviews  repository.ReviewRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(
	activity ActivityService,
	staff repository.StaffRepository,
	blogs repository.BlogRepository,
	tools repository.ToolRepository,
	reviews repository.ReviewRepository,
	logger zerolog.Logger,
) ExportService {
	return &exportService{
		activity: activity,
		staff:    staff,
		blogs:    blogs,
		tools:    tools,
		reviews:  reviews,
		logger:   logger.With().Str("component", "export_service").Logger(),
		now:      time.Now,
	}
}

func (s *exportService) ActivityCSV(ctx context.Context, days int, staffID *uint) ([]byte, error) {
	if days <= 0 {
		return nil, fmt.Errorf("time range must be positive: %w", ErrInvalidArgument)
	}

	now := s.now()
	windowStart := now.AddDate(0, 0, -days)

	var events []dto.ActivityEvent
	var err error
	if staffID != nil {
		events, err = s.activity.ListStaffActivity(ctx, *staffID, windowStart, now)
	} else {
		events, err = s.activity.ListPlatformActivity(ctx, windowStart, now, NoLimit)
	}
	if err != nil {
		return nil, err
	}

	staffByID, err := s.staffIndex(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, s.activityRow(ctx, event, staffByID))
	}
	return encodeCSV(activityCSVHeader, rows)
}

func (s *exportService) PostPerformanceCSV(ctx context.Context, days int) ([]byte, error) {
	if days <= 0 {
		return nil, fmt.Errorf("time range must be positive: %w", ErrInvalidArgument)
	}

	blogs, err := s.blogs.ListSince(ctx, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(blogs))
	for _, blog := range blogs {
		post := postPerformance(blog)
		rows = append(rows, []string{
			post.Title,
			post.Status,
			post.Category,
			strconv.FormatInt(post.Views, 10),
			strconv.FormatInt(post.Likes, 10),
			strconv.FormatInt(post.Comments, 10),
			strconv.FormatFloat(post.EngagementRate, 'f', 1, 64),
			formatOptionalDate(post.PublishedAt),
			post.CreatedAt.UTC().Format("2006-01-02"),
			post.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}
	return encodeCSV(postCSVHeader, rows)
}

// activityRow enriches one event with entity context. Lookups are best
// effort; a missing entity leaves its columns blank rather than failing the
// export.
func (s *exportService) activityRow(ctx context.Context, event dto.ActivityEvent, staffByID map[uint]models.StaffMember) []string {
	ts := event.Timestamp.UTC()

	staffEmail := ""
	if actor, ok := staffByID[event.PerformedBy.ID]; ok {
		staffEmail = actor.Email
	}

	description := event.Details.Description
	if description == "" {
		description = LastActionTitle(event.Action)
	}

	entityStatus, entityEmail, entityRole, rating, toolName, authorName := s.entityColumns(ctx, event, staffByID)

	return []string{
		ts.Format("2006-01-02"),
		ts.Format("15:04:05"),
		event.PerformedBy.Name,
		staffEmail,
		event.PerformedBy.Role,
		event.Action,
		event.EntityType,
		event.EntityName,
		strconv.FormatUint(uint64(event.EntityID), 10),
		description,
		event.Details.Reason,
		strconv.Itoa(len(event.Changes)),
		formatFieldChanges(event.Changes),
		event.Category,
		entityStatus,
		entityEmail,
		entityRole,
		rating,
		toolName,
		authorName,
		event.ID,
		event.Source,
		ts.Format(time.RFC3339),
	}
}

func (s *exportService) entityColumns(ctx context.Context, event dto.ActivityEvent, staffByID map[uint]models.StaffMember) (status, email, role, rating, toolName, authorName string) {
	switch event.EntityType {
	case models.TargetUser:
		if member, ok := staffByID[event.EntityID]; ok {
			status = member.Status
			email = member.Email
			role = member.Role
		}
	case models.TargetBlog:
		blog, err := s.blogs.GetByID(ctx, event.EntityID)
		if err != nil {
			return
		}
		status = blog.Status
		if author, ok := staffByID[blog.AuthorID]; ok {
			authorName = author.Name
		}
	case models.TargetTool:
		tool, err := s.tools.GetByID(ctx, event.EntityID)
		if err != nil {
			return
		}
		status = tool.Status
		toolName = tool.Name
	case models.TargetReview:
		review, err := s.reviews.GetByID(ctx, event.EntityID)
		if err != nil {
			return
		}
		status = review.Status
		rating = strconv.Itoa(review.Rating)
		authorName = review.AuthorName
	}
	return
}

func (s *exportService) staffIndex(ctx context.Context) (map[uint]models.StaffMember, error) {
	staffList, err := s.staff.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.StaffMember, len(staffList))
	for _, member := range staffList {
		byID[member.ID] = member
	}
	return byID, nil
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(csvBOM)

	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFieldChanges(changes []models.FieldChange) string {
	if len(changes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(changes))
	for _, change := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", change.Field, change.OldValue, change.NewValue))
	}
	return strings.Join(parts, "; ")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
