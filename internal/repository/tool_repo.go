package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// ToolRepository reads and mutates tool snapshots.
type ToolRepository interface {
	GetByID(ctx context.Context, id uint) (models.Tool, error)
	ListByActor(ctx context.Context, staffID uint) ([]models.Tool, error)
	ListTouchedBetween(ctx context.Context, start, end time.Time) ([]models.Tool, error)
	Create(ctx context.Context, tool *models.Tool) error
	Update(ctx context.Context, tool *models.Tool) error
	Delete(ctx context.Context, id uint) error
}

type toolRepository struct {
	db *gorm.DB
}

// NewToolRepository constructs the tool repository.
func NewToolRepository(db *gorm.DB) ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) GetByID(ctx context.Context, id uint) (models.Tool, error) {
	var tool models.Tool
	err := r.db.WithContext(ctx).First(&tool, id).Error
	return tool, err
}

func (r *toolRepository) ListByActor(ctx context.Context, staffID uint) ([]models.Tool, error) {
	var tools []models.Tool
	err := r.db.WithContext(ctx).
		Where("created_by = ? OR updated_by = ?", staffID, staffID).
		Find(&tools).Error
	return tools, err
}

// ListTouchedBetween returns tools created or updated inside the window.
// Rows without actor attribution are still included; the aggregator
// approximates their events from the timestamps.
func (r *toolRepository) ListTouchedBetween(ctx context.Context, start, end time.Time) ([]models.Tool, error) {
	var tools []models.Tool
	err := r.db.WithContext(ctx).
		Where(
			"(created_at BETWEEN ? AND ?) OR (updated_at BETWEEN ? AND ?)",
			start, end, start, end,
		).
		Find(&tools).Error
	return tools, err
}

func (r *toolRepository) Create(ctx context.Context, tool *models.Tool) error {
	return r.db.WithContext(ctx).Create(tool).Error
}

func (r *toolRepository) Update(ctx context.Context, tool *models.Tool) error {
	return r.db.WithContext(ctx).Save(tool).Error
}

func (r *toolRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Tool{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
