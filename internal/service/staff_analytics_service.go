package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

const (
	overviewActivityLimit = 1000
	recentActivityLimit   = 20
	recentLoginsLimit     = 10
	staleDraftAge         = 14 * 24 * time.Hour
	inactiveWriterDays    = 30
)

// StaffAnalyticsService aggregates staff analytics for the admin dashboard.
type StaffAnalyticsService interface {
	StaffDetail(ctx context.Context, staffID uint, days int) (dto.StaffDetailResponse, error)
	Overview(ctx context.Context, days int) (dto.StaffOverviewResponse, error)
}

type staffAnalyticsService struct {
	activity ActivityService
	staff    repository.StaffRepository
	blogs    repository.BlogRepository
	reviews  repository.ReviewRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStaffAnalyticsService constructs the staff analytics service.
func NewStaffAnalyticsService(
	activity ActivityService,
	staff repository.StaffRepository,
	blogs repository.BlogRepository,
	reviews repository.ReviewRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) StaffAnalyticsService {
	return &staffAnalyticsService{
		activity: activity,
		staff:    staff,
		blogs:    blogs,
		reviews:  reviews,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "staff_analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *staffAnalyticsService) StaffDetail(ctx context.Context, staffID uint, days int) (dto.StaffDetailResponse, error) {
	if days <= 0 {
		return dto.StaffDetailResponse{}, fmt.Errorf("time range must be positive: %w", ErrInvalidArgument)
	}

	tracer := otel.Tracer("github.com/inkwell-labs/inkwell-admin-api/internal/service/staff_analytics")
	ctx, span := tracer.Start(ctx, "analytics.staff_detail")
	span.SetAttributes(attribute.Int("analytics.staff_id", int(staffID)), attribute.Int("analytics.days", days))
	defer span.End()

	now := s.now()
	windowStart := now.AddDate(0, 0, -days)

	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StaffDetailResponse{}, fmt.Errorf("staff member %d: %w", staffID, ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "staff_lookup_failed")
		return dto.StaffDetailResponse{}, err
	}

	events, err := s.activity.ListStaffActivity(ctx, staffID, windowStart, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "activity_merge_failed")
		return dto.StaffDetailResponse{}, err
	}

	// Decision impact is intentionally all-time from snapshot counts while
	// everything else is windowed.
	decisions, err := s.blogs.CountDecisionsByActor(ctx, staffID)
	if err != nil {
		span.RecordError(err)
		return dto.StaffDetailResponse{}, err
	}

	stats, err := ComputeStaffStats(staff, events, decisions, days, now)
	if err != nil {
		return dto.StaffDetailResponse{}, err
	}

	authored, err := s.blogs.ListByActor(ctx, staffID)
	if err != nil {
		span.RecordError(err)
		return dto.StaffDetailResponse{}, err
	}
	ownBlogs := make([]models.Blog, 0, len(authored))
	for _, blog := range authored {
		if blog.AuthorID == staffID {
			ownBlogs = append(ownBlogs, blog)
		}
	}

	timeline, err := ComputeDailyTimeSeries(days, ownBlogs, nil, events, now)
	if err != nil {
		return dto.StaffDetailResponse{}, err
	}

	breakdown := make(map[string]int)
	for _, event := range events {
		breakdown[event.Action]++
	}

	span.SetAttributes(attribute.Int("analytics.event_count", len(events)))

	return dto.StaffDetailResponse{
		StaffMember:     staffSummary(staff),
		Stats:           stats,
		Activities:      events,
		Timeline:        timeline,
		ActionBreakdown: breakdown,
		RecentActivity:  headEvents(events, 10),
		ModerationLogs:  filterEvents(events, func(e dto.ActivityEvent) bool {
			return e.Category == CategoryBlogModeration || e.Category == CategoryReviewManagement
		}),
		AuditLogs: filterEvents(events, func(e dto.ActivityEvent) bool {
			return e.Source == dto.EventSourceAudit
		}),
	}, nil
}

func (s *staffAnalyticsService) Overview(ctx context.Context, days int) (dto.StaffOverviewResponse, error) {
	if days <= 0 {
		return dto.StaffOverviewResponse{}, fmt.Errorf("time range must be positive: %w", ErrInvalidArgument)
	}

	tracer := otel.Tracer("github.com/inkwell-labs/inkwell-admin-api/internal/service/staff_analytics")
	ctx, span := tracer.Start(ctx, "analytics.staff_overview")
	span.SetAttributes(attribute.Int("analytics.days", days))
	defer span.End()

	cacheKey := fmt.Sprintf("analytics:staff:overview:v1:%d", days)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.StaffOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != nil && err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read overview cache")
		}
	}

	now := s.now()
	windowStart := now.AddDate(0, 0, -days)

	staffList, err := s.staff.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "staff_list_failed")
		return dto.StaffOverviewResponse{}, err
	}

	events, err := s.activity.ListPlatformActivity(ctx, windowStart, now, overviewActivityLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "activity_merge_failed")
		return dto.StaffOverviewResponse{}, err
	}

	blogs, err := s.blogs.ListSince(ctx, windowStart)
	if err != nil {
		span.RecordError(err)
		return dto.StaffOverviewResponse{}, err
	}
	reviews, err := s.reviews.ListSince(ctx, windowStart)
	if err != nil {
		span.RecordError(err)
		return dto.StaffOverviewResponse{}, err
	}

	dailyStats, err := ComputeDailyTimeSeries(days, blogs, reviews, events, now)
	if err != nil {
		return dto.StaffOverviewResponse{}, err
	}

	response := dto.StaffOverviewResponse{
		Overview:                   s.buildOverviewTotals(staffList, events, blogs, reviews, now),
		RoleStats:                  ComputeRoleStats(staffList, events),
		StaffLeaderboard:           buildLeaderboard(staffList, events),
		DailyStats:                 dailyStats,
		RecentActivity:             headEvents(events, recentActivityLimit),
		StaffByRole:                countByRole(staffList),
		LoginFrequencyDistribution: loginDistribution(staffList, now),
		InactiveWriters:            inactiveWriters(staffList, now),
		TimeRange:                  days,
	}

	s.attachEnrichments(ctx, &response, now)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store overview cache")
			}
		}
	}

	span.SetAttributes(
		attribute.Int("analytics.staff_count", len(staffList)),
		attribute.Int("analytics.event_count", len(events)),
	)

	return response, nil
}

// attachEnrichments loads the optional overview sections concurrently. Each
// section degrades to an empty default on failure so one slow or broken
// query never blanks the whole dashboard.
func (s *staffAnalyticsService) attachEnrichments(ctx context.Context, response *dto.StaffOverviewResponse, now time.Time) {
	response.RecentLogins = []dto.StaffMemberSummary{}
	response.NewStaffMembers = []dto.StaffMemberSummary{}
	response.StaleDrafts = []dto.PostPerformance{}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		logins, err := s.staff.ListLoggedInSince(ctx, now.AddDate(0, 0, -7), recentLoginsLimit)
		if err != nil {
			s.logger.Warn().Err(err).Msg("recent logins unavailable, serving empty section")
			return
		}
		response.RecentLogins = staffSummaries(logins)
	}()

	go func() {
		defer wg.Done()
		created, err := s.staff.ListCreatedSince(ctx, now.AddDate(0, 0, -30))
		if err != nil {
			s.logger.Warn().Err(err).Msg("new staff members unavailable, serving empty section")
			return
		}
		response.NewStaffMembers = staffSummaries(created)
	}()

	go func() {
		defer wg.Done()
		drafts, err := s.blogs.ListStaleDrafts(ctx, now.Add(-staleDraftAge), 0)
		if err != nil {
			s.logger.Warn().Err(err).Msg("stale drafts unavailable, serving empty section")
			return
		}
		response.StaleDrafts = postPerformances(drafts)
	}()

	wg.Wait()
}

func (s *staffAnalyticsService) buildOverviewTotals(staff []models.StaffMember, events []dto.ActivityEvent, blogs []models.Blog, reviews []models.Review, now time.Time) dto.OverviewTotals {
	today := startOfDay(now)
	activeToday := make(map[uint]struct{})
	for _, event := range events {
		if !event.Timestamp.Before(today) {
			activeToday[event.PerformedBy.ID] = struct{}{}
		}
	}
	return dto.OverviewTotals{
		TotalStaff:   len(staff),
		ActiveToday:  len(activeToday),
		TotalActions: len(events),
		TotalBlogs:   int64(len(blogs)),
		TotalReviews: int64(len(reviews)),
	}
}

func buildLeaderboard(staff []models.StaffMember, events []dto.ActivityEvent) []dto.LeaderboardEntry {
	actions := make(map[uint]int)
	impact := make(map[uint]int)
	for _, event := range events {
		actions[event.PerformedBy.ID]++
		switch event.Action {
		case models.ActionApproved:
			impact[event.PerformedBy.ID] += impactApprovalWeight
		case models.ActionReposted:
			impact[event.PerformedBy.ID]++
		case models.ActionRejected:
			impact[event.PerformedBy.ID]--
		}
	}

	entries := make([]dto.LeaderboardEntry, 0, len(staff))
	for _, member := range staff {
		if actions[member.ID] == 0 {
			continue
		}
		entries = append(entries, dto.LeaderboardEntry{
			Staff:        staffSummary(member),
			TotalActions: actions[member.ID],
			ImpactScore:  impact[member.ID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalActions != entries[j].TotalActions {
			return entries[i].TotalActions > entries[j].TotalActions
		}
		return entries[i].Staff.ID < entries[j].Staff.ID
	})
	return entries
}

func countByRole(staff []models.StaffMember) map[string]int {
	byRole := make(map[string]int)
	for _, member := range staff {
		byRole[member.Role]++
	}
	return byRole
}

func loginDistribution(staff []models.StaffMember, now time.Time) map[string]int {
	distribution := map[string]int{
		dto.LoginVeryActive: 0,
		dto.LoginActive:     0,
		dto.LoginModerate:   0,
		dto.LoginInactive:   0,
	}
	for _, member := range staff {
		distribution[LoginFrequencyBucket(DaysSinceLogin(now, member.LastLoginAt))]++
	}
	return distribution
}

func inactiveWriters(staff []models.StaffMember, now time.Time) []dto.StaffMemberSummary {
	var inactive []dto.StaffMemberSummary
	for _, member := range staff {
		if member.Role != models.RoleWriter {
			continue
		}
		days := DaysSinceLogin(now, member.LastLoginAt)
		if days < 0 || days > inactiveWriterDays {
			inactive = append(inactive, staffSummary(member))
		}
	}
	if inactive == nil {
		inactive = []dto.StaffMemberSummary{}
	}
	return inactive
}

func staffSummary(member models.StaffMember) dto.StaffMemberSummary {
	return dto.StaffMemberSummary{
		ID:          member.ID,
		Name:        member.Name,
		Email:       member.Email,
		Role:        member.Role,
		Status:      member.Status,
		LastLoginAt: member.LastLoginAt,
		CreatedAt:   member.CreatedAt,
	}
}

func staffSummaries(members []models.StaffMember) []dto.StaffMemberSummary {
	summaries := make([]dto.StaffMemberSummary, 0, len(members))
	for _, member := range members {
		summaries = append(summaries, staffSummary(member))
	}
	return summaries
}

func postPerformances(blogs []models.Blog) []dto.PostPerformance {
	posts := make([]dto.PostPerformance, 0, len(blogs))
	for _, blog := range blogs {
		posts = append(posts, postPerformance(blog))
	}
	return posts
}

func postPerformance(blog models.Blog) dto.PostPerformance {
	return dto.PostPerformance{
		ID:             blog.ID,
		Title:          blog.Title,
		Status:         blog.Status,
		Category:       blog.Category,
		Views:          blog.Views,
		Likes:          blog.Likes,
		Comments:       blog.CommentsCount,
		EngagementRate: ComputeEngagementRate(blog.Likes, blog.CommentsCount, blog.Views),
		PublishedAt:    blog.PublishedAt,
		CreatedAt:      blog.CreatedAt,
		UpdatedAt:      blog.UpdatedAt,
	}
}

func headEvents(events []dto.ActivityEvent, limit int) []dto.ActivityEvent {
	if len(events) <= limit {
		return events
	}
	return events[:limit]
}

func filterEvents(events []dto.ActivityEvent, keep func(dto.ActivityEvent) bool) []dto.ActivityEvent {
	filtered := make([]dto.ActivityEvent, 0, len(events))
	for _, event := range events {
		if keep(event) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
