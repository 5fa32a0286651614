package shift

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeShiftOpened      = "ShiftOpened"
	EventTypeShiftClosed      = "ShiftClosed"
	EventTypeShiftForceClosed = "ShiftForceClosed"
	EventTypeShiftHandedOver  = "ShiftHandedOver"
)

// ShiftOpenedEvent is raised when a custodian opens a drawer
type ShiftOpenedEvent struct {
	shared.BaseDomainEvent
	UserID         uuid.UUID       `json:"user_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// NewShiftOpenedEvent creates a ShiftOpenedEvent
func NewShiftOpenedEvent(s *Shift) *ShiftOpenedEvent {
	return &ShiftOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftOpened, s.ID, s.TenantID, s.BranchID, s.OpenedAt),
		UserID:          s.UserID,
		OpeningBalance:  s.OpeningBalance,
	}
}

// ShiftClosedEvent is raised on a normal close
type ShiftClosedEvent struct {
	shared.BaseDomainEvent
	UserID          uuid.UUID       `json:"user_id"`
	ClosingBalance  decimal.Decimal `json:"closing_balance"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	Difference      decimal.Decimal `json:"difference"`
}

// NewShiftClosedEvent creates a ShiftClosedEvent
func NewShiftClosedEvent(s *Shift) *ShiftClosedEvent {
	return &ShiftClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftClosed, s.ID, s.TenantID, s.BranchID, *s.ClosedAt),
		UserID:          s.UserID,
		ClosingBalance:  s.ClosingBalance,
		ExpectedBalance: s.ExpectedBalance,
		Difference:      s.Difference,
	}
}

// ShiftForceClosedEvent is raised on an administrative or automated close
type ShiftForceClosedEvent struct {
	shared.BaseDomainEvent
	UserID     uuid.UUID       `json:"user_id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	ActorName  string          `json:"actor_name"`
	Reason     string          `json:"reason"`
	Difference decimal.Decimal `json:"difference"`
}

// NewShiftForceClosedEvent creates a ShiftForceClosedEvent
func NewShiftForceClosedEvent(s *Shift) *ShiftForceClosedEvent {
	return &ShiftForceClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftForceClosed, s.ID, s.TenantID, s.BranchID, *s.ForceClosedAt),
		UserID:          s.UserID,
		ActorID:         s.ForceClosedByUserID,
		ActorName:       s.ForceClosedByUserName,
		Reason:          s.ForceCloseReason,
		Difference:      s.Difference,
	}
}

// ShiftHandedOverEvent is raised when custody moves to another user
type ShiftHandedOverEvent struct {
	shared.BaseDomainEvent
	FromUserID      uuid.UUID       `json:"from_user_id"`
	ToUserID        uuid.UUID       `json:"to_user_id"`
	HandoverBalance decimal.Decimal `json:"handover_balance"`
}

// NewShiftHandedOverEvent creates a ShiftHandedOverEvent
func NewShiftHandedOverEvent(s *Shift, from uuid.UUID) *ShiftHandedOverEvent {
	return &ShiftHandedOverEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftHandedOver, s.ID, s.TenantID, s.BranchID, *s.HandedOverAt),
		FromUserID:      from,
		ToUserID:        s.UserID,
		HandoverBalance: s.HandoverBalance,
	}
}
