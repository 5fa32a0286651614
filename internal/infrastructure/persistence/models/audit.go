package models

import (
	"time"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// ShiftAuditLogModel is the persistence model for a shift annotation
type ShiftAuditLogModel struct {
	ID              uuid.UUID    `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	BranchID        uuid.UUID    `gorm:"type:uuid;not null"`
	ShiftID         uuid.UUID    `gorm:"type:uuid;not null;index:idx_shift_audit_lookup,priority:1"`
	SubjectUserID   uuid.UUID    `gorm:"type:uuid;not null"`
	RecipientUserID *uuid.UUID   `gorm:"type:uuid"`
	Action          audit.Action `gorm:"type:varchar(30);not null;index:idx_shift_audit_lookup,priority:2"`
	HoursOpen       float64      `gorm:"not null;default:0"`
	Description     string       `gorm:"type:text"`
	CreatedAt       time.Time    `gorm:"not null;index:idx_shift_audit_lookup,priority:3"`
}

// TableName returns the table name for GORM
func (ShiftAuditLogModel) TableName() string {
	return "shift_audit_logs"
}

// ToDomain converts the persistence model to a domain ShiftAuditLog
func (m *ShiftAuditLogModel) ToDomain() *audit.ShiftAuditLog {
	return &audit.ShiftAuditLog{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		TenantID:        m.TenantID,
		BranchID:        m.BranchID,
		ShiftID:         m.ShiftID,
		SubjectUserID:   m.SubjectUserID,
		RecipientUserID: m.RecipientUserID,
		Action:          m.Action,
		HoursOpen:       m.HoursOpen,
		Description:     m.Description,
	}
}

// ShiftAuditLogModelFromDomain creates a persistence model from a domain ShiftAuditLog
func ShiftAuditLogModelFromDomain(l *audit.ShiftAuditLog) *ShiftAuditLogModel {
	return &ShiftAuditLogModel{
		ID:              l.ID,
		TenantID:        l.TenantID,
		BranchID:        l.BranchID,
		ShiftID:         l.ShiftID,
		SubjectUserID:   l.SubjectUserID,
		RecipientUserID: l.RecipientUserID,
		Action:          l.Action,
		HoursOpen:       l.HoursOpen,
		Description:     l.Description,
		CreatedAt:       l.CreatedAt,
	}
}
