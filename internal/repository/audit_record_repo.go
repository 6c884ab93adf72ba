package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// AuditRecordRepository reads and appends the immutable staff action log.
// There is deliberately no update or delete.
type AuditRecordRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	ListByActor(ctx context.Context, actorID uint, start, end time.Time) ([]models.AuditRecord, error)
	ListWindow(ctx context.Context, start, end time.Time, limit int) ([]models.AuditRecord, error)
}

type auditRecordRepository struct {
	db *gorm.DB
}

// NewAuditRecordRepository constructs the audit record repository.
func NewAuditRecordRepository(db *gorm.DB) AuditRecordRepository {
	return &auditRecordRepository{db: db}
}

func (r *auditRecordRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *auditRecordRepository) ListByActor(ctx context.Context, actorID uint, start, end time.Time) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *auditRecordRepository) ListWindow(ctx context.Context, start, end time.Time, limit int) ([]models.AuditRecord, error) {
	query := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.AuditRecord
	err := query.Find(&records).Error
	return records, err
}
