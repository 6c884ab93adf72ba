package dto

import "time"

// Login frequency buckets derived from days since last login.
const (
	LoginVeryActive = "Very Active"
	LoginActive     = "Active"
	LoginModerate   = "Moderate"
	LoginInactive   = "Inactive"
)

// StaffMemberSummary is the compact staff shape embedded in analytics
// responses.
type StaffMemberSummary struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StaffMetrics aggregates one staff member's activity for the dashboard
// cards. DecisionImpactScore intentionally counts all-time snapshot
// decisions while TotalActions is windowed; the dashboard has always mixed
// the two and historical exports depend on it.
type StaffMetrics struct {
	TotalActions        int            `json:"total_actions"`
	CategoryCounts      map[string]int `json:"category_counts"`
	DecisionImpactScore int            `json:"decision_impact_score"`
	LoginFrequency      string         `json:"login_frequency"`
	DaysSinceLastLogin  int            `json:"days_since_last_login"`
	LastActionTitle     string         `json:"last_action_title"`
	TotalActivity       int64          `json:"total_activity"`
	AvgOnlinePerDay     float64        `json:"avg_online_per_day"`
}

// RoleBucket sums activity for one staff role.
type RoleBucket struct {
	StaffCount        int   `json:"staff_count"`
	Blogs             int   `json:"blogs"`
	Reviews           int   `json:"reviews"`
	Views             int64 `json:"views"`
	ModerationActions int   `json:"moderation_actions"`
}

// RoleStats groups per-role activity with derived writer averages.
type RoleStats struct {
	Roles             map[string]RoleBucket `json:"roles"`
	AvgBlogsPerWriter float64               `json:"avg_blogs_per_writer"`
}

// DailyBucket is one calendar day of platform activity. Days with no
// activity still appear zero-filled so charts keep a fixed-length series.
type DailyBucket struct {
	Date        string `json:"date"`
	Blogs       int    `json:"blogs"`
	Reviews     int    `json:"reviews"`
	Views       int64  `json:"views"`
	ActiveUsers int    `json:"active_users"`
}

// LeaderboardEntry ranks a staff member by windowed action volume.
type LeaderboardEntry struct {
	Staff        StaffMemberSummary `json:"staff"`
	TotalActions int                `json:"total_actions"`
	ImpactScore  int                `json:"impact_score"`
}

// StaffDetailResponse is the payload for a single staff member's analytics.
type StaffDetailResponse struct {
	StaffMember     StaffMemberSummary `json:"staff_member"`
	Stats           StaffMetrics       `json:"stats"`
	Activities      []ActivityEvent    `json:"activities"`
	Timeline        []DailyBucket      `json:"timeline"`
	ActionBreakdown map[string]int     `json:"action_breakdown"`
	RecentActivity  []ActivityEvent    `json:"recent_activity"`
	ModerationLogs  []ActivityEvent    `json:"moderation_logs"`
	AuditLogs       []ActivityEvent    `json:"audit_logs"`
}

// OverviewTotals summarises the platform for the dashboard header cards.
type OverviewTotals struct {
	TotalStaff   int   `json:"total_staff"`
	ActiveToday  int   `json:"active_today"`
	TotalActions int   `json:"total_actions"`
	TotalBlogs   int64 `json:"total_blogs"`
	TotalReviews int64 `json:"total_reviews"`
}

// StaffOverviewResponse is the platform-wide staff analytics payload.
type StaffOverviewResponse struct {
	Overview                   OverviewTotals       `json:"overview"`
	RoleStats                  RoleStats            `json:"role_stats"`
	StaffLeaderboard           []LeaderboardEntry   `json:"staff_leaderboard"`
	DailyStats                 []DailyBucket        `json:"daily_stats"`
	RecentActivity             []ActivityEvent      `json:"recent_activity"`
	RecentLogins               []StaffMemberSummary `json:"recent_logins"`
	NewStaffMembers            []StaffMemberSummary `json:"new_staff_members"`
	InactiveWriters            []StaffMemberSummary `json:"inactive_writers"`
	StaleDrafts                []PostPerformance    `json:"stale_drafts"`
	StaffByRole                map[string]int       `json:"staff_by_role"`
	LoginFrequencyDistribution map[string]int       `json:"login_frequency_distribution"`
	TimeRange                  int                  `json:"time_range"`
	CacheHit                   bool                 `json:"cache_hit,omitempty"`
}

// PostPerformance is the per-post shape used for top-post cards and the
// post-performance CSV export.
type PostPerformance struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Category       string     `json:"category"`
	Views          int64      `json:"views"`
	Likes          int64      `json:"likes"`
	Comments       int64      `json:"comments"`
	EngagementRate float64    `json:"engagement_rate"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CategoryStat aggregates post performance for one content category.
type CategoryStat struct {
	Category       string  `json:"category"`
	Posts          int     `json:"posts"`
	Views          int64   `json:"views"`
	EngagementRate float64 `json:"engagement_rate"`
}

// BlogDailyPoint is one day of publishing and view activity.
type BlogDailyPoint struct {
	Date  string `json:"date"`
	Posts int    `json:"posts"`
	Views int64  `json:"views"`
}

// BlogAnalyticsResponse backs the blog analytics dashboard.
type BlogAnalyticsResponse struct {
	Overview            BlogOverview      `json:"overview"`
	DailyStats          []BlogDailyPoint  `json:"daily_stats"`
	TopPosts            []PostPerformance `json:"top_posts"`
	CategoryPerformance []CategoryStat    `json:"category_performance"`
	HourlyViews         []int64           `json:"hourly_views"`
	TimeRange           int               `json:"time_range"`
	CacheHit            bool              `json:"cache_hit,omitempty"`
}

// BlogOverview holds the blog dashboard header totals.
type BlogOverview struct {
	TotalPosts     int64   `json:"total_posts"`
	PublishedPosts int64   `json:"published_posts"`
	TotalViews     int64   `json:"total_views"`
	TotalLikes     int64   `json:"total_likes"`
	TotalComments  int64   `json:"total_comments"`
	AvgEngagement  float64 `json:"avg_engagement"`
}

// WriterStats is the per-writer row of the writers analytics table.
type WriterStats struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Posts          int     `json:"posts"`
	Views          int64   `json:"views"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	EngagementRate float64 `json:"engagement_rate"`
}

// WriterAnalyticsResponse lists per-writer content performance.
type WriterAnalyticsResponse struct {
	Writers   []WriterStats `json:"writers"`
	TimeRange int           `json:"time_range"`
}
