package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// ReviewRepository reads and mutates review snapshots.
type ReviewRepository interface {
	GetByID(ctx context.Context, id uint) (models.Review, error)
	ListByActor(ctx context.Context, staffID uint) ([]models.Review, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Review, error)
	ListActedBetween(ctx context.Context, start, end time.Time) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	AddReply(ctx context.Context, reply *models.ReviewReply) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository constructs the review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Preload("Replies").First(&review, id).Error
	return review, err
}

// ListByActor returns reviews the staff member moderated or replied to.
func (r *reviewRepository) ListByActor(ctx context.Context, staffID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("Replies").
		Where(
			"hidden_by = ? OR restored_by = ? OR id IN (?)",
			staffID, staffID,
			r.db.Model(&models.ReviewReply{}).Select("review_id").Where("replier_id = ?", staffID),
		).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) ListSince(ctx context.Context, since time.Time) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("Replies").
		Where("created_at >= ?", since).
		Find(&reviews).Error
	return reviews, err
}

// ListActedBetween returns reviews created or touched inside the window.
func (r *reviewRepository) ListActedBetween(ctx context.Context, start, end time.Time) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("Replies").
		Where(
			"(created_at BETWEEN ? AND ?) OR (updated_at BETWEEN ? AND ?)",
			start, end, start, end,
		).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *reviewRepository) AddReply(ctx context.Context, reply *models.ReviewReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}
