package shift

import (
	"time"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenShiftInput carries the custodian triple and the counted float
type OpenShiftInput struct {
	TenantID       uuid.UUID
	BranchID       uuid.UUID
	UserID         uuid.UUID
	OpeningBalance decimal.Decimal
}

// CloseShiftInput closes the custodian's open shift
type CloseShiftInput struct {
	TenantID       uuid.UUID
	BranchID       uuid.UUID
	UserID         uuid.UUID
	ClosingBalance decimal.Decimal
	Notes          string
}

// ForceCloseShiftInput closes a shift administratively. A nil ActorID
// denotes an automated closure.
type ForceCloseShiftInput struct {
	TenantID      uuid.UUID
	ShiftID       uuid.UUID
	Reason        string
	ActorID       *uuid.UUID
	ActorName     string
	ActualBalance *decimal.Decimal
}

// HandoverShiftInput moves custody of an open shift to another user
type HandoverShiftInput struct {
	TenantID       uuid.UUID
	ShiftID        uuid.UUID
	FromUserID     uuid.UUID
	ToUserID       uuid.UUID
	CurrentBalance decimal.Decimal
	Notes          string
}

// ShiftListFilter represents filter options for the shift list
type ShiftListFilter struct {
	BranchID *uuid.UUID `form:"branch_id"`
	UserID   *uuid.UUID `form:"user_id"`
	IsClosed *bool      `form:"is_closed"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ShiftResponse represents a shift in API responses
type ShiftResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	UserID          uuid.UUID       `json:"user_id"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	ClosingBalance  decimal.Decimal `json:"closing_balance"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	Difference      decimal.Decimal `json:"difference"`
	TotalCash       decimal.Decimal `json:"total_cash"`
	TotalCard       decimal.Decimal `json:"total_card"`
	TotalOrders     decimal.Decimal `json:"total_orders"`
	OpenedAt        time.Time       `json:"opened_at"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	LastActivityAt  time.Time       `json:"last_activity_at"`
	Notes           string          `json:"notes,omitempty"`
	IsClosed        bool            `json:"is_closed"`
	IsForceClosed   bool            `json:"is_force_closed"`
	IsHandedOver    bool            `json:"is_handed_over"`

	ForceClosedByUserID   *uuid.UUID `json:"force_closed_by_user_id,omitempty"`
	ForceClosedByUserName string     `json:"force_closed_by_user_name,omitempty"`
	ForceClosedAt         *time.Time `json:"force_closed_at,omitempty"`
	ForceCloseReason      string     `json:"force_close_reason,omitempty"`

	HandedOverFromUserID *uuid.UUID      `json:"handed_over_from_user_id,omitempty"`
	HandedOverToUserID   *uuid.UUID      `json:"handed_over_to_user_id,omitempty"`
	HandedOverAt         *time.Time      `json:"handed_over_at,omitempty"`
	HandoverBalance      decimal.Decimal `json:"handover_balance"`
	HandoverNotes        string          `json:"handover_notes,omitempty"`

	HoursOpen float64 `json:"hours_open"`
	Version   int     `json:"version"`
}

// ToShiftResponse converts a domain Shift to a response
func ToShiftResponse(s *shift.Shift, now time.Time) ShiftResponse {
	return ShiftResponse{
		ID:                    s.ID,
		TenantID:              s.TenantID,
		BranchID:              s.BranchID,
		UserID:                s.UserID,
		OpeningBalance:        s.OpeningBalance,
		ClosingBalance:        s.ClosingBalance,
		ExpectedBalance:       s.ExpectedBalance,
		Difference:            s.Difference,
		TotalCash:             s.TotalCash,
		TotalCard:             s.TotalCard,
		TotalOrders:           s.TotalOrders,
		OpenedAt:              s.OpenedAt,
		ClosedAt:              s.ClosedAt,
		LastActivityAt:        s.LastActivityAt,
		Notes:                 s.Notes,
		IsClosed:              s.IsClosed,
		IsForceClosed:         s.IsForceClosed,
		IsHandedOver:          s.IsHandedOver,
		ForceClosedByUserID:   s.ForceClosedByUserID,
		ForceClosedByUserName: s.ForceClosedByUserName,
		ForceClosedAt:         s.ForceClosedAt,
		ForceCloseReason:      s.ForceCloseReason,
		HandedOverFromUserID:  s.HandedOverFromUserID,
		HandedOverToUserID:    s.HandedOverToUserID,
		HandedOverAt:          s.HandedOverAt,
		HandoverBalance:       s.HandoverBalance,
		HandoverNotes:         s.HandoverNotes,
		HoursOpen:             s.HoursOpen(now),
		Version:               s.Version,
	}
}

// WarningResponse is the warning state of the caller's open shift
type WarningResponse struct {
	Level     shift.WarningLevel `json:"level"`
	HoursOpen float64            `json:"hours_open"`
	ShiftID   *uuid.UUID         `json:"shift_id,omitempty"`
}

// AuditLogResponse represents one monitor annotation of a shift
type AuditLogResponse struct {
	ID              uuid.UUID    `json:"id"`
	ShiftID         uuid.UUID    `json:"shift_id"`
	SubjectUserID   uuid.UUID    `json:"subject_user_id"`
	RecipientUserID *uuid.UUID   `json:"recipient_user_id,omitempty"`
	Action          audit.Action `json:"action"`
	HoursOpen       float64      `json:"hours_open"`
	Description     string       `json:"description"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ToAuditLogResponse converts an audit row to a response
func ToAuditLogResponse(l *audit.ShiftAuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:              l.ID,
		ShiftID:         l.ShiftID,
		SubjectUserID:   l.SubjectUserID,
		RecipientUserID: l.RecipientUserID,
		Action:          l.Action,
		HoursOpen:       l.HoursOpen,
		Description:     l.Description,
		CreatedAt:       l.CreatedAt,
	}
}
