package models

import (
	"time"

	"github.com/erp/pos/internal/domain/shift"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShiftModel is the persistence model for the Shift aggregate.
// ux_shifts_open_custodian allows one open row per (tenant, branch, user).
type ShiftModel struct {
	AggregateModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_shifts_open_custodian,priority:1,where:is_closed = false"`
	BranchID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_shifts_open_custodian,priority:2"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_shifts_open_custodian,priority:3"`

	OpeningBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ClosingBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ExpectedBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Difference      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCash       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCard       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalOrders     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	OpenedAt       time.Time  `gorm:"not null;index"`
	ClosedAt       *time.Time `gorm:""`
	LastActivityAt time.Time  `gorm:"not null"`
	Notes          string     `gorm:"type:text"`

	IsClosed      bool `gorm:"not null;default:false;index"`
	IsForceClosed bool `gorm:"not null;default:false"`
	IsHandedOver  bool `gorm:"not null;default:false"`

	ForceClosedByUserID   *uuid.UUID `gorm:"type:uuid"`
	ForceClosedByUserName string     `gorm:"type:varchar(100)"`
	ForceClosedAt         *time.Time
	ForceCloseReason      string `gorm:"type:text"`

	HandedOverFromUserID *uuid.UUID `gorm:"type:uuid"`
	HandedOverToUserID   *uuid.UUID `gorm:"type:uuid"`
	HandedOverAt         *time.Time
	HandoverBalance      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	HandoverNotes        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ShiftModel) TableName() string {
	return "shifts"
}

// ToDomain converts the persistence model to a domain Shift
func (m *ShiftModel) ToDomain() *shift.Shift {
	return &shift.Shift{
		TenantAggregateRoot:   m.ToTenantAggregateRoot(m.TenantID),
		BranchID:              m.BranchID,
		UserID:                m.UserID,
		OpeningBalance:        m.OpeningBalance,
		ClosingBalance:        m.ClosingBalance,
		ExpectedBalance:       m.ExpectedBalance,
		Difference:            m.Difference,
		TotalCash:             m.TotalCash,
		TotalCard:             m.TotalCard,
		TotalOrders:           m.TotalOrders,
		OpenedAt:              m.OpenedAt,
		ClosedAt:              m.ClosedAt,
		LastActivityAt:        m.LastActivityAt,
		Notes:                 m.Notes,
		IsClosed:              m.IsClosed,
		IsForceClosed:         m.IsForceClosed,
		IsHandedOver:          m.IsHandedOver,
		ForceClosedByUserID:   m.ForceClosedByUserID,
		ForceClosedByUserName: m.ForceClosedByUserName,
		ForceClosedAt:         m.ForceClosedAt,
		ForceCloseReason:      m.ForceCloseReason,
		HandedOverFromUserID:  m.HandedOverFromUserID,
		HandedOverToUserID:    m.HandedOverToUserID,
		HandedOverAt:          m.HandedOverAt,
		HandoverBalance:       m.HandoverBalance,
		HandoverNotes:         m.HandoverNotes,
	}
}

// FromDomain populates the persistence model from a domain Shift
func (m *ShiftModel) FromDomain(s *shift.Shift) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.TenantID = s.TenantID
	m.BranchID = s.BranchID
	m.UserID = s.UserID
	m.OpeningBalance = s.OpeningBalance
	m.ClosingBalance = s.ClosingBalance
	m.ExpectedBalance = s.ExpectedBalance
	m.Difference = s.Difference
	m.TotalCash = s.TotalCash
	m.TotalCard = s.TotalCard
	m.TotalOrders = s.TotalOrders
	m.OpenedAt = s.OpenedAt
	m.ClosedAt = s.ClosedAt
	m.LastActivityAt = s.LastActivityAt
	m.Notes = s.Notes
	m.IsClosed = s.IsClosed
	m.IsForceClosed = s.IsForceClosed
	m.IsHandedOver = s.IsHandedOver
	m.ForceClosedByUserID = s.ForceClosedByUserID
	m.ForceClosedByUserName = s.ForceClosedByUserName
	m.ForceClosedAt = s.ForceClosedAt
	m.ForceCloseReason = s.ForceCloseReason
	m.HandedOverFromUserID = s.HandedOverFromUserID
	m.HandedOverToUserID = s.HandedOverToUserID
	m.HandedOverAt = s.HandedOverAt
	m.HandoverBalance = s.HandoverBalance
	m.HandoverNotes = s.HandoverNotes
}

// MutableColumns returns the columns a versioned update may change
func (m *ShiftModel) MutableColumns() map[string]any {
	return map[string]any{
		"user_id":                   m.UserID,
		"closing_balance":           m.ClosingBalance,
		"expected_balance":          m.ExpectedBalance,
		"difference":                m.Difference,
		"total_cash":                m.TotalCash,
		"total_card":                m.TotalCard,
		"total_orders":              m.TotalOrders,
		"closed_at":                 m.ClosedAt,
		"last_activity_at":          m.LastActivityAt,
		"notes":                     m.Notes,
		"is_closed":                 m.IsClosed,
		"is_force_closed":           m.IsForceClosed,
		"is_handed_over":            m.IsHandedOver,
		"force_closed_by_user_id":   m.ForceClosedByUserID,
		"force_closed_by_user_name": m.ForceClosedByUserName,
		"force_closed_at":           m.ForceClosedAt,
		"force_close_reason":        m.ForceCloseReason,
		"handed_over_from_user_id":  m.HandedOverFromUserID,
		"handed_over_to_user_id":    m.HandedOverToUserID,
		"handed_over_at":            m.HandedOverAt,
		"handover_balance":          m.HandoverBalance,
		"handover_notes":            m.HandoverNotes,
		"version":                   m.Version,
		"updated_at":                m.UpdatedAt,
	}
}

// ShiftModelFromDomain creates a new persistence model from a domain Shift
func ShiftModelFromDomain(s *shift.Shift) *ShiftModel {
	m := &ShiftModel{}
	m.FromDomain(s)
	return m
}
