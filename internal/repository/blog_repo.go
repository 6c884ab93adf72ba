package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// DecisionCounts tallies a staff member's all-time blog moderation decisions
// from the snapshot actor fields.
type DecisionCounts struct {
	Approvals  int64
	Rejections int64
	Reposts    int64
}

// BlogRepository reads blog snapshots and applies moderation transitions.
type BlogRepository interface {
	GetByID(ctx context.Context, id uint) (models.Blog, error)
	ListByActor(ctx context.Context, staffID uint) ([]models.Blog, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Blog, error)
	ListActedBetween(ctx context.Context, start, end time.Time) ([]models.Blog, error)
	CountDecisionsByActor(ctx context.Context, staffID uint) (DecisionCounts, error)
	ListTopBySince(ctx context.Context, since time.Time, limit int) ([]models.Blog, error)
	ListStaleDrafts(ctx context.Context, olderThan time.Time, limit int) ([]models.Blog, error)
	Update(ctx context.Context, blog *models.Blog) error
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository constructs the blog repository.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).First(&blog, id).Error
	return blog, err
}

// ListByActor returns blogs the staff member authored or acted on through
// any of the denormalized actor fields, regardless of date. Window filtering
// happens per synthesized event at merge time.
func (r *blogRepository) ListByActor(ctx context.Context, staffID uint) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where(
			"author_id = ? OR approved_by = ? OR rejected_by = ? OR reposted_by = ? OR trashed_by = ?",
			staffID, staffID, staffID, staffID, staffID,
		).
		Find(&blogs).Error
	return blogs, err
}

func (r *blogRepository) ListSince(ctx context.Context, since time.Time) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Find(&blogs).Error
	return blogs, err
}

// ListActedBetween returns blogs with any actor timestamp or creation date
// inside the window, feeding the platform-wide activity merge.
func (r *blogRepository) ListActedBetween(ctx context.Context, start, end time.Time) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where(
			"(created_at BETWEEN ? AND ?) OR (approved_at BETWEEN ? AND ?) OR (rejected_at BETWEEN ? AND ?) OR (reposted_at BETWEEN ? AND ?) OR (trashed_at BETWEEN ? AND ?)",
			start, end, start, end, start, end, start, end, start, end,
		).
		Find(&blogs).Error
	return blogs, err
}

func (r *blogRepository) CountDecisionsByActor(ctx context.Context, staffID uint) (DecisionCounts, error) {
	var counts DecisionCounts
	base := r.db.WithContext(ctx).Model(&models.Blog{})

	if err := base.Session(&gorm.Session{}).Where("approved_by = ?", staffID).Count(&counts.Approvals).Error; err != nil {
		return DecisionCounts{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("rejected_by = ?", staffID).Count(&counts.Rejections).Error; err != nil {
		return DecisionCounts{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("reposted_by = ?", staffID).Count(&counts.Reposts).Error; err != nil {
		return DecisionCounts{}, err
	}
	return counts, nil
}

func (r *blogRepository) ListTopBySince(ctx context.Context, since time.Time, limit int) ([]models.Blog, error) {
	if limit <= 0 {
		limit = 10
	}
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BlogStatusPublished).
		Where("published_at IS NOT NULL AND published_at >= ?", since).
		Order("views DESC").
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func (r *blogRepository) ListStaleDrafts(ctx context.Context, olderThan time.Time, limit int) ([]models.Blog, error) {
	if limit <= 0 {
		limit = 20
	}
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BlogStatusDraft).
		Where("updated_at < ?", olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Save(blog).Error
}
