package service

import (
	"fmt"
	"math"
	"time"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
)

// Weights used by the derived staff statistics. Fixed constants: exports and
// historical dashboards depend on them.
const (
	impactApprovalWeight = 2
	activityPostWeight   = 3
	activityReviewWeight = 2
	maxAvgOnlineHours    = 8.0
)

// Login frequency thresholds in days since last login.
const (
	loginVeryActiveDays = 1
	loginActiveDays     = 7
	loginModerateDays   = 30
)

// ComputeEngagementRate returns (likes+comments)/views*100 rounded to one
// decimal. No views, or counters driven negative by reconciliation jobs,
// yield 0 so the rate never goes below zero.
func ComputeEngagementRate(likes, comments, views int64) float64 {
	if views <= 0 {
		return 0
	}
	rate := float64(likes+comments) / float64(views) * 100
	if rate < 0 {
		return 0
	}
	return round1(rate)
}

// DecisionImpactScore weighs approvals double, adds reposts, subtracts
// rejections. The result can be negative.
func DecisionImpactScore(counts repository.DecisionCounts) int {
	return int(counts.Approvals)*impactApprovalWeight + int(counts.Reposts) - int(counts.Rejections)
}

// LoginFrequencyBucket classifies days since last login against the fixed
// thresholds. Negative input means the member never logged in.
func LoginFrequencyBucket(daysSinceLastLogin int) string {
	switch {
	case daysSinceLastLogin < 0:
		return dto.LoginInactive
	case daysSinceLastLogin <= loginVeryActiveDays:
		return dto.LoginVeryActive
	case daysSinceLastLogin <= loginActiveDays:
		return dto.LoginActive
	case daysSinceLastLogin <= loginModerateDays:
		return dto.LoginModerate
	default:
		return dto.LoginInactive
	}
}

// DaysSinceLogin returns whole days between the last login and now, or -1
// when the member never logged in.
func DaysSinceLogin(now time.Time, lastLogin *time.Time) int {
	if lastLogin == nil || lastLogin.IsZero() {
		return -1
	}
	days := int(now.Sub(*lastLogin).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ComputeStaffStats reduces a staff member's windowed events plus all-time
// decision counts into the dashboard card metrics. Events must already be
// sorted newest first.
func ComputeStaffStats(staff models.StaffMember, events []dto.ActivityEvent, decisions repository.DecisionCounts, windowDays int, now time.Time) (dto.StaffMetrics, error) {
	if windowDays <= 0 {
		return dto.StaffMetrics{}, fmt.Errorf("window days must be positive: %w", ErrInvalidArgument)
	}

	categoryCounts := make(map[string]int)
	for _, event := range events {
		categoryCounts[event.Category]++
	}

	lastAction := ""
	if len(events) > 0 {
		lastAction = events[0].Action
	}

	days := DaysSinceLogin(now, staff.LastLoginAt)
	totalActivity := int64(staff.PostsCount)*activityPostWeight +
		int64(staff.ReviewsCount)*activityReviewWeight +
		staff.TotalViews/100

	// Heuristic estimate, not a session measurement.
	avgOnline := math.Min(maxAvgOnlineHours, float64(len(events))*0.5/float64(windowDays))

	return dto.StaffMetrics{
		TotalActions:        len(events),
		CategoryCounts:      categoryCounts,
		DecisionImpactScore: DecisionImpactScore(decisions),
		LoginFrequency:      LoginFrequencyBucket(days),
		DaysSinceLastLogin:  days,
		LastActionTitle:     LastActionTitle(lastAction),
		TotalActivity:       totalActivity,
		AvgOnlinePerDay:     round1(avgOnline),
	}, nil
}

// ComputeRoleStats buckets staff by role and sums their content and
// moderation volumes. avgBlogsPerWriter guards the zero-writer case.
func ComputeRoleStats(staff []models.StaffMember, events []dto.ActivityEvent) dto.RoleStats {
	roles := make(map[string]dto.RoleBucket)
	roleByID := make(map[uint]string, len(staff))

	for _, member := range staff {
		bucket := roles[member.Role]
		bucket.StaffCount++
		bucket.Blogs += member.PostsCount
		bucket.Reviews += member.ReviewsCount
		bucket.Views += member.TotalViews
		roles[member.Role] = bucket
		roleByID[member.ID] = member.Role
	}

	for _, event := range events {
		if event.Category == CategoryBlogCreation || event.Category == CategoryOther {
			continue
		}
		role, ok := roleByID[event.PerformedBy.ID]
		if !ok {
			continue
		}
		bucket := roles[role]
		bucket.ModerationActions++
		roles[role] = bucket
	}

	avg := 0.0
	if writers := roles[models.RoleWriter]; writers.StaffCount > 0 {
		avg = round1(float64(writers.Blogs) / float64(writers.StaffCount))
	}

	return dto.RoleStats{Roles: roles, AvgBlogsPerWriter: avg}
}

// ComputeDailyTimeSeries buckets blogs, reviews and events into consecutive
// calendar days ending today. Every day appears even with zero activity.
// Blog views are attributed to the blog's creation day; activeUsers is the
// count of distinct actors with at least one event that day.
func ComputeDailyTimeSeries(windowDays int, blogs []models.Blog, reviews []models.Review, events []dto.ActivityEvent, now time.Time) ([]dto.DailyBucket, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("window days must be positive: %w", ErrInvalidArgument)
	}

	today := startOfDay(now)
	buckets := make([]dto.DailyBucket, windowDays)
	index := make(map[string]int, windowDays)
	actorsByDay := make([]map[uint]struct{}, windowDays)

	for i := 0; i < windowDays; i++ {
		day := today.AddDate(0, 0, -(windowDays - 1 - i))
		date := day.Format("2006-01-02")
		buckets[i] = dto.DailyBucket{Date: date}
		index[date] = i
		actorsByDay[i] = make(map[uint]struct{})
	}

	dayOf := func(t time.Time) (int, bool) {
		i, ok := index[startOfDay(t).Format("2006-01-02")]
		return i, ok
	}

	for _, blog := range blogs {
		if i, ok := dayOf(blog.CreatedAt); ok {
			buckets[i].Blogs++
			buckets[i].Views += blog.Views
		}
	}
	for _, review := range reviews {
		if i, ok := dayOf(review.CreatedAt); ok {
			buckets[i].Reviews++
		}
	}
	for _, event := range events {
		if i, ok := dayOf(event.Timestamp); ok {
			actorsByDay[i][event.PerformedBy.ID] = struct{}{}
		}
	}
	for i := range buckets {
		buckets[i].ActiveUsers = len(actorsByDay[i])
	}

	return buckets, nil
}

func startOfDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
