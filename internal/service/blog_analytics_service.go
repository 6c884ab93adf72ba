package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

const topPostsLimit = 10

// BlogAnalyticsService builds the blog performance dashboard.
type BlogAnalyticsService interface {
	BlogAnalytics(ctx context.Context, days int) (dto.BlogAnalyticsResponse, error)
	WriterAnalytics(ctx context.Context, days int) (dto.WriterAnalyticsResponse, error)
}

type blogAnalyticsService struct {
	blogs    repository.BlogRepository
	staff    repository.StaffRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBlogAnalyticsService constructs the blog analytics service.
func NewBlogAnalyticsService(
	blogs repository.BlogRepository,
	staff repository.StaffRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) BlogAnalyticsService {
	return &blogAnalyticsService{
		blogs:    blogs,
		staff:    staff,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "blog_analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *blogAnalyticsService) BlogAnalytics(ctx context.Context, days int) (dto.BlogAnalyticsResponse, error) {
	if days <= 0 {
		return dto.BlogAnalyticsResponse{}, fmt.Errorf("time range must be positive: %w", ErrInvalidArgument)
	}

	tracer := otel.Tracer("github.com/inkwell-labs/inkwell-admin-api/internal/service/blog_analytics")
	ctx, span := tracer.Start(ctx, "analytics.blog")
	span.SetAttributes(attribute.Int("analytics.days", days))
	defer span.End()

	cacheKey := fmt.Sprintf("analytics:blog:v1:%d", days)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.BlogAnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != nil && err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read blog analytics cache")
		}
	}

	now := s.now()
	windowStart := now.AddDate(0, 0, -days)

	blogs, err := s.blogs.ListSince(ctx, windowStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "blog_list_failed")
		return dto.BlogAnalyticsResponse{}, err
	}

	topBlogs, err := s.blogs.ListTopBySince(ctx, windowStart, topPostsLimit)
	if err != nil {
		span.RecordError(err)
		return dto.BlogAnalyticsResponse{}, err
	}

	response := dto.BlogAnalyticsResponse{
		Overview:            buildBlogOverview(blogs),
		DailyStats:          buildBlogDailySeries(days, blogs, now),
		TopPosts:            postPerformances(topBlogs),
		CategoryPerformance: buildCategoryStats(blogs),
		HourlyViews:         buildHourlyViews(blogs),
		TimeRange:           days,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store blog analytics cache")
			}
		}
	}

	span.SetAttributes(attribute.Int("analytics.blog_count", len(blogs)))
	return response, nil
}

func (s *blogAnalyticsService) WriterAnalytics(ctx context.Context, days int) (dto.WriterAnalyticsResponse, error) {
	if days <= 0 {
		return dto.WriterAnalyticsResponse{}, fmt.Errorf("time range must be positive: %w", ErrInvalidArgument)
	}

	tracer := otel.Tracer("github.com/inkwell-labs/inkwell-admin-api/internal/service/blog_analytics")
	ctx, span := tracer.Start(ctx, "analytics.writers")
	span.SetAttributes(attribute.Int("analytics.days", days))
	defer span.End()

	now := s.now()
	windowStart := now.AddDate(0, 0, -days)

	staffList, err := s.staff.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "staff_list_failed")
		return dto.WriterAnalyticsResponse{}, err
	}

	blogs, err := s.blogs.ListSince(ctx, windowStart)
	if err != nil {
		span.RecordError(err)
		return dto.WriterAnalyticsResponse{}, err
	}

	type tally struct {
		posts    int
		views    int64
		likes    int64
		comments int64
	}
	byAuthor := make(map[uint]*tally)
	for _, blog := range blogs {
		t, ok := byAuthor[blog.AuthorID]
		if !ok {
			t = &tally{}
			byAuthor[blog.AuthorID] = t
		}
		t.posts++
		t.views += blog.Views
		t.likes += blog.Likes
		t.comments += blog.CommentsCount
	}

	writers := make([]dto.WriterStats, 0, len(staffList))
	for _, member := range staffList {
		if member.Role != models.RoleWriter {
			continue
		}
		stats := dto.WriterStats{ID: member.ID, Name: member.Name}
		if t, ok := byAuthor[member.ID]; ok {
			stats.Posts = t.posts
			stats.Views = t.views
			stats.Likes = t.likes
			stats.Comments = t.comments
			stats.EngagementRate = ComputeEngagementRate(t.likes, t.comments, t.views)
		}
		writers = append(writers, stats)
	}
	sort.SliceStable(writers, func(i, j int) bool {
		if writers[i].Views != writers[j].Views {
			return writers[i].Views > writers[j].Views
		}
		return writers[i].ID < writers[j].ID
	})

	return dto.WriterAnalyticsResponse{Writers: writers, TimeRange: days}, nil
}

func buildBlogOverview(blogs []models.Blog) dto.BlogOverview {
	var overview dto.BlogOverview
	overview.TotalPosts = int64(len(blogs))
	for _, blog := range blogs {
		if blog.Status == models.BlogStatusPublished {
			overview.PublishedPosts++
		}
		overview.TotalViews += blog.Views
		overview.TotalLikes += blog.Likes
		overview.TotalComments += blog.CommentsCount
	}
	overview.AvgEngagement = ComputeEngagementRate(overview.TotalLikes, overview.TotalComments, overview.TotalViews)
	return overview
}

func buildBlogDailySeries(windowDays int, blogs []models.Blog, now time.Time) []dto.BlogDailyPoint {
	today := startOfDay(now)
	points := make([]dto.BlogDailyPoint, windowDays)
	index := make(map[string]int, windowDays)
	for i := 0; i < windowDays; i++ {
		date := today.AddDate(0, 0, -(windowDays - 1 - i)).Format("2006-01-02")
		points[i] = dto.BlogDailyPoint{Date: date}
		index[date] = i
	}
	for _, blog := range blogs {
		if i, ok := index[startOfDay(blog.CreatedAt).Format("2006-01-02")]; ok {
			points[i].Posts++
			points[i].Views += blog.Views
		}
	}
	return points
}

func buildCategoryStats(blogs []models.Blog) []dto.CategoryStat {
	type tally struct {
		posts    int
		views    int64
		likes    int64
		comments int64
	}
	byCategory := make(map[string]*tally)
	for _, blog := range blogs {
		category := blog.Category
		if category == "" {
			category = "uncategorized"
		}
		t, ok := byCategory[category]
		if !ok {
			t = &tally{}
			byCategory[category] = t
		}
		t.posts++
		t.views += blog.Views
		t.likes += blog.Likes
		t.comments += blog.CommentsCount
	}

	stats := make([]dto.CategoryStat, 0, len(byCategory))
	for category, t := range byCategory {
		stats = append(stats, dto.CategoryStat{
			Category:       category,
			Posts:          t.posts,
			Views:          t.views,
			EngagementRate: ComputeEngagementRate(t.likes, t.comments, t.views),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Views != stats[j].Views {
			return stats[i].Views > stats[j].Views
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

// buildHourlyViews attributes a post's views to its publication hour. There
// is no per-view event store, so this is a coarse publishing-time profile
// rather than a read-time one.
func buildHourlyViews(blogs []models.Blog) []int64 {
	hours := make([]int64, 24)
	for _, blog := range blogs {
		at := blog.CreatedAt
		if blog.PublishedAt != nil {
			at = *blog.PublishedAt
		}
		hours[at.UTC().Hour()] += blog.Views
	}
	return hours
}
