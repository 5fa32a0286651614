package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShiftAuditLogRepository implements audit.Repository using GORM
type GormShiftAuditLogRepository struct {
	db *gorm.DB
}

// NewGormShiftAuditLogRepository creates a new GormShiftAuditLogRepository
func NewGormShiftAuditLogRepository(db *gorm.DB) *GormShiftAuditLogRepository {
	return &GormShiftAuditLogRepository{db: db}
}

// Create inserts the given rows in one statement
func (r *GormShiftAuditLogRepository) Create(ctx context.Context, logs ...*audit.ShiftAuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	rows := make([]*models.ShiftAuditLogModel, len(logs))
	for i, l := range logs {
		rows[i] = models.ShiftAuditLogModelFromDomain(l)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create shift audit logs: %w", err)
	}
	return nil
}

// ExistsSince reports whether a primary row with the action exists for the
// shift at or after since
func (r *GormShiftAuditLogRepository) ExistsSince(ctx context.Context, shiftID uuid.UUID, action audit.Action, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShiftAuditLogModel{}).
		Where("shift_id = ? AND action = ? AND created_at >= ? AND recipient_user_id IS NULL", shiftID, action, since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByShift lists annotations of a shift, newest first
func (r *GormShiftAuditLogRepository) FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]audit.ShiftAuditLog, error) {
	var rows []models.ShiftAuditLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND shift_id = ?", tenantID, shiftID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	logs := make([]audit.ShiftAuditLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, nil
}

// Ensure GormShiftAuditLogRepository implements audit.Repository
var _ audit.Repository = (*GormShiftAuditLogRepository)(nil)
