package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// StaffRepository reads staff member snapshots.
type StaffRepository interface {
	GetByID(ctx context.Context, id uint) (models.StaffMember, error)
	List(ctx context.Context) ([]models.StaffMember, error)
	ListLoggedInSince(ctx context.Context, since time.Time, limit int) ([]models.StaffMember, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.StaffMember, error)
}

type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository constructs the staff repository.
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

var staffRoles = []string{models.RoleWriter, models.RoleManager, models.RoleAdmin}

func (r *staffRepository) GetByID(ctx context.Context, id uint) (models.StaffMember, error) {
	var staff models.StaffMember
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("role IN ?", staffRoles).
		First(&staff).Error
	return staff, err
}

func (r *staffRepository) List(ctx context.Context) ([]models.StaffMember, error) {
	var staff []models.StaffMember
	err := r.db.WithContext(ctx).
		Where("role IN ?", staffRoles).
		Order("created_at ASC").
		Find(&staff).Error
	return staff, err
}

func (r *staffRepository) ListLoggedInSince(ctx context.Context, since time.Time, limit int) ([]models.StaffMember, error) {
	query := r.db.WithContext(ctx).
		Where("role IN ?", staffRoles).
		Where("last_login_at IS NOT NULL AND last_login_at >= ?", since).
		Order("last_login_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var staff []models.StaffMember
	err := query.Find(&staff).Error
	return staff, err
}

func (r *staffRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.StaffMember, error) {
	var staff []models.StaffMember
	err := r.db.WithContext(ctx).
		Where("role IN ?", staffRoles).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&staff).Error
	return staff, err
}
