package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

func newStaffAnalyticsService(t *testing.T, db *gorm.DB, cache *redis.Client) StaffAnalyticsService {
	t.Helper()
	return NewStaffAnalyticsService(
		newActivityService(t, db, nil),
		repository.NewStaffRepository(db),
		repository.NewBlogRepository(db),
		repository.NewReviewRepository(db),
		cache,
		5*time.Minute,
		testLogger(),
	)
}

func TestStaffDetailAggregates(t *testing.T) {
	db := openTestDB(t, "detail_agg")
	svc := newStaffAnalyticsService(t, db, nil)

	staff := seedStaff(t, db, 1, "quin", models.RoleManager)
	now := time.Now().UTC()

	blog := models.Blog{
		ID:         1,
		Title:      "Reviewed Post",
		Status:     models.BlogStatusPublished,
		AuthorID:   9,
		ApprovedBy: &staff.ID,
	}
	require.NoError(t, db.Create(&blog).Error)

	for i, action := range []string{models.ActionApproved, models.ActionApproved, models.ActionHidden} {
		target := models.TargetBlog
		targetID := blog.ID
		if action == models.ActionHidden {
			target = models.TargetReview
			targetID = 50
		}
		record := models.AuditRecord{
			ActorID:    staff.ID,
			ActorName:  staff.Name,
			ActorRole:  staff.Role,
			Action:     action,
			TargetType: target,
			TargetID:   targetID,
			CreatedAt:  now.Add(-time.Duration(i+1) * time.Hour),
		}
		require.NoError(t, db.Create(&record).Error)
	}

	detail, err := svc.StaffDetail(context.Background(), staff.ID, 7)
	require.NoError(t, err)

	require.Equal(t, staff.ID, detail.StaffMember.ID)
	require.Equal(t, 2, detail.ActionBreakdown[models.ActionApproved])
	require.Equal(t, 1, detail.ActionBreakdown[models.ActionHidden])
	require.Len(t, detail.Timeline, 7)
	require.NotEmpty(t, detail.Activities)
	require.Len(t, detail.AuditLogs, len(detail.Activities))
	for _, event := range detail.ModerationLogs {
		require.Contains(t, []string{CategoryBlogModeration, CategoryReviewManagement}, event.Category)
	}

	// Approval decisions recorded on the snapshot feed the impact score.
	require.Equal(t, impactApprovalWeight, detail.Stats.DecisionImpactScore)
}

func TestStaffDetailErrors(t *testing.T) {
	db := openTestDB(t, "detail_errors")
	svc := newStaffAnalyticsService(t, db, nil)
	seedStaff(t, db, 1, "rae", models.RoleWriter)

	_, err := svc.StaffDetail(context.Background(), 404, 7)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.StaffDetail(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOverviewEmptyPlatform(t *testing.T) {
	db := openTestDB(t, "overview_empty")
	svc := newStaffAnalyticsService(t, db, nil)

	overview, err := svc.Overview(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, 0, overview.Overview.TotalStaff)
	require.Equal(t, 0, overview.Overview.TotalActions)
	require.Len(t, overview.DailyStats, 7)
	for _, day := range overview.DailyStats {
		require.Zero(t, day.Blogs)
		require.Zero(t, day.ActiveUsers)
	}
	require.Empty(t, overview.StaffLeaderboard)
	require.NotNil(t, overview.InactiveWriters)
	require.NotNil(t, overview.RecentLogins)
	require.NotNil(t, overview.StaleDrafts)
	require.False(t, overview.CacheHit)
	require.Equal(t, 7, overview.TimeRange)
}

func TestOverviewLeaderboardAndBuckets(t *testing.T) {
	db := openTestDB(t, "overview_board")
	svc := newStaffAnalyticsService(t, db, nil)

	now := time.Now().UTC()
	recent := now.Add(-2 * time.Hour)
	stale := now.Add(-60 * 24 * time.Hour)

	busy := seedStaff(t, db, 1, "sam", models.RoleManager)
	quiet := seedStaff(t, db, 2, "tess", models.RoleWriter)
	require.NoError(t, db.Model(&models.StaffMember{}).Where("id = ?", busy.ID).Update("last_login_at", recent).Error)
	require.NoError(t, db.Model(&models.StaffMember{}).Where("id = ?", quiet.ID).Update("last_login_at", stale).Error)

	for i := 0; i < 3; i++ {
		record := models.AuditRecord{
			ActorID:    busy.ID,
			ActorName:  busy.Name,
			ActorRole:  busy.Role,
			Action:     models.ActionApproved,
			TargetType: models.TargetBlog,
			TargetID:   uint(10 + i),
			CreatedAt:  now.Add(-time.Duration(i+1) * time.Hour),
		}
		require.NoError(t, db.Create(&record).Error)
	}

	overview, err := svc.Overview(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, overview.StaffLeaderboard, 1)
	require.Equal(t, busy.ID, overview.StaffLeaderboard[0].Staff.ID)
	require.Equal(t, 3, overview.StaffLeaderboard[0].TotalActions)
	require.Equal(t, 3*impactApprovalWeight, overview.StaffLeaderboard[0].ImpactScore)

	require.Equal(t, 1, overview.StaffByRole[models.RoleManager])
	require.Equal(t, 1, overview.StaffByRole[models.RoleWriter])
	require.Equal(t, 1, overview.LoginFrequencyDistribution[dto.LoginVeryActive])
	require.Equal(t, 1, overview.LoginFrequencyDistribution[dto.LoginInactive])

	require.Len(t, overview.InactiveWriters, 1)
	require.Equal(t, quiet.ID, overview.InactiveWriters[0].ID)

	require.Len(t, overview.RecentLogins, 1)
	require.Equal(t, busy.ID, overview.RecentLogins[0].ID)
}

func TestOverviewServesFromCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	db := openTestDB(t, "overview_cache")
	svc := newStaffAnalyticsService(t, db, client)

	first, err := svc.Overview(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// Staff added after the snapshot stays invisible until the TTL expires.
	seedStaff(t, db, 1, "uma", models.RoleWriter)

	second, err := svc.Overview(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, 0, second.Overview.TotalStaff)

	server.FastForward(10 * time.Minute)

	third, err := svc.Overview(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, 1, third.Overview.TotalStaff)
}

func TestOverviewStaleDrafts(t *testing.T) {
	db := openTestDB(t, "overview_drafts")
	svc := newStaffAnalyticsService(t, db, nil)

	old := time.Now().UTC().Add(-30 * 24 * time.Hour)
	draft := models.Blog{
		ID:        1,
		Title:     "Abandoned Draft",
		Status:    models.BlogStatusDraft,
		AuthorID:  1,
		CreatedAt: old,
		UpdatedAt: old,
	}
	require.NoError(t, db.Create(&draft).Error)

	fresh := models.Blog{ID: 2, Title: "Fresh Draft", Slug: "fresh-draft", Status: models.BlogStatusDraft, AuthorID: 1}
	require.NoError(t, db.Create(&fresh).Error)

	overview, err := svc.Overview(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, overview.StaleDrafts, 1)
	require.Equal(t, "Abandoned Draft", overview.StaleDrafts[0].Title)
}
