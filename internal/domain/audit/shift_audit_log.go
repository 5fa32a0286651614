// Package audit holds the annotations that background monitors attach to
// shifts.
package audit

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is the kind of annotation recorded against a shift
type Action string

const (
	ActionShiftWarning    Action = "SHIFT_WARNING"
	ActionShiftCritical   Action = "SHIFT_CRITICAL"
	ActionShiftAutoClosed Action = "SHIFT_AUTO_CLOSED"
)

// String returns the string representation of Action
func (a Action) String() string {
	return string(a)
}

// ShiftAuditLog is one annotation row. The primary row of a warning has no
// recipient; fan-out copies carry the administrator they notify.
type ShiftAuditLog struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	BranchID        uuid.UUID
	ShiftID         uuid.UUID
	SubjectUserID   uuid.UUID
	RecipientUserID *uuid.UUID
	Action          Action
	HoursOpen       float64
	Description     string
}

// NewShiftAuditLog creates an annotation for a shift
func NewShiftAuditLog(tenantID, branchID, shiftID, subjectUserID uuid.UUID, action Action, hoursOpen float64, description string, now time.Time) *ShiftAuditLog {
	return &ShiftAuditLog{
		BaseEntity:    shared.NewBaseEntityAt(now),
		TenantID:      tenantID,
		BranchID:      branchID,
		ShiftID:       shiftID,
		SubjectUserID: subjectUserID,
		Action:        action,
		HoursOpen:     hoursOpen,
		Description:   description,
	}
}

// ForRecipient copies the annotation for one notified administrator
func (l *ShiftAuditLog) ForRecipient(recipientID uuid.UUID) *ShiftAuditLog {
	cp := *l
	cp.BaseEntity = shared.NewBaseEntityAt(l.CreatedAt)
	cp.RecipientUserID = &recipientID
	return &cp
}

// IsPrimary reports whether the row is the shift-level record
func (l *ShiftAuditLog) IsPrimary() bool {
	return l.RecipientUserID == nil
}

// Repository persists shift annotations
type Repository interface {
	// Create inserts the given rows in one statement
	Create(ctx context.Context, logs ...*ShiftAuditLog) error

	// ExistsSince reports whether a primary row with this action exists for
	// the shift at or after since
	ExistsSince(ctx context.Context, shiftID uuid.UUID, action Action, since time.Time) (bool, error)

	// FindByShift lists annotations of a shift, newest first
	FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]ShiftAuditLog, error)
}
