// Package shift models a cashier's custody of a branch cash drawer for a
// bounded period of time.
package shift

import (
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SystemActorName identifies automated closures, which carry no actor id
const SystemActorName = "system"

// Totals holds the order-derived figures cached on a shift at close time
type Totals struct {
	Cash   decimal.Decimal
	Card   decimal.Decimal
	Orders decimal.Decimal
}

// Shift is the aggregate root for one custody period of a cash drawer.
// At most one open shift may exist per (tenant, branch, user).
type Shift struct {
	shared.TenantAggregateRoot
	BranchID uuid.UUID
	UserID   uuid.UUID

	OpeningBalance  decimal.Decimal
	ClosingBalance  decimal.Decimal
	ExpectedBalance decimal.Decimal
	Difference      decimal.Decimal
	TotalCash       decimal.Decimal
	TotalCard       decimal.Decimal
	TotalOrders     decimal.Decimal

	OpenedAt       time.Time
	ClosedAt       *time.Time
	LastActivityAt time.Time
	Notes          string

	IsClosed      bool
	IsForceClosed bool
	IsHandedOver  bool

	ForceClosedByUserID   *uuid.UUID
	ForceClosedByUserName string
	ForceClosedAt         *time.Time
	ForceCloseReason      string

	HandedOverFromUserID *uuid.UUID
	HandedOverToUserID   *uuid.UUID
	HandedOverAt         *time.Time
	HandoverBalance      decimal.Decimal
	HandoverNotes        string
}

// RoundMoney rounds an amount to cents
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NewShift opens a new custody period. The opening balance is rounded to
// two decimals and must not be negative.
func NewShift(tenantID, branchID, userID uuid.UUID, openingBalance decimal.Decimal, now time.Time) (*Shift, error) {
	if tenantID == uuid.Nil || branchID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant, branch and user are required to open a shift")
	}
	opening := RoundMoney(openingBalance)
	if opening.IsNegative() {
		return nil, ErrInvalidOpeningBalance
	}

	s := &Shift{
		TenantAggregateRoot: shared.NewTenantAggregateRootAt(tenantID, now),
		BranchID:            branchID,
		UserID:              userID,
		OpeningBalance:      opening,
		ClosingBalance:      decimal.Zero,
		ExpectedBalance:     decimal.Zero,
		Difference:          decimal.Zero,
		TotalCash:           decimal.Zero,
		TotalCard:           decimal.Zero,
		TotalOrders:         decimal.Zero,
		HandoverBalance:     decimal.Zero,
		OpenedAt:            now,
		LastActivityAt:      now,
	}
	s.AddDomainEvent(NewShiftOpenedEvent(s))
	return s, nil
}

// IsOpen reports whether the shift is still in custody
func (s *Shift) IsOpen() bool {
	return !s.IsClosed
}

// Close settles the shift against the expected balance. The expected
// balance is supplied by the caller from the branch ledger.
func (s *Shift) Close(closingBalance, expectedBalance decimal.Decimal, totals Totals, notes string, now time.Time) error {
	if s.IsClosed {
		return ErrShiftAlreadyClosed
	}
	closing := RoundMoney(closingBalance)
	if closing.IsNegative() {
		return ErrInvalidClosingBalance
	}

	s.settle(closing, expectedBalance, totals, now)
	s.Notes = strings.TrimSpace(notes)
	s.AddDomainEvent(NewShiftClosedEvent(s))
	return nil
}

// ForceCloseParams describes an administrative or automated closure
type ForceCloseParams struct {
	Reason          string
	ActorID         *uuid.UUID
	ActorName       string
	ActualBalance   *decimal.Decimal
	ExpectedBalance decimal.Decimal
	Totals          Totals
}

// ForceClose terminates the shift outside the normal close flow. When no
// actual balance is counted the closing balance defaults to
// openingBalance + totalCash. A nil actor means an automated closure.
func (s *Shift) ForceClose(p ForceCloseParams, now time.Time) error {
	if err := ValidateForceCloseReason(p.Reason); err != nil {
		return err
	}
	reason := strings.TrimSpace(p.Reason)
	if s.IsForceClosed {
		return ErrShiftAlreadyForceClosed
	}
	if s.IsClosed {
		return ErrShiftAlreadyClosed
	}

	closing := s.OpeningBalance.Add(p.Totals.Cash)
	if p.ActualBalance != nil {
		closing = *p.ActualBalance
	}
	closing = RoundMoney(closing)
	if closing.IsNegative() {
		return ErrInvalidClosingBalance
	}

	actorName := strings.TrimSpace(p.ActorName)
	if p.ActorID == nil && actorName == "" {
		actorName = SystemActorName
	}

	s.settle(closing, p.ExpectedBalance, p.Totals, now)
	s.IsForceClosed = true
	s.ForceClosedByUserID = p.ActorID
	s.ForceClosedByUserName = actorName
	s.ForceClosedAt = &now
	s.ForceCloseReason = reason
	s.AddDomainEvent(NewShiftForceClosedEvent(s))
	return nil
}

// ValidateForceCloseReason rejects blank reasons
func ValidateForceCloseReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrForceCloseReasonRequired
	}
	return nil
}

// IsSystemClosed reports whether the shift was force-closed by automation
func (s *Shift) IsSystemClosed() bool {
	return s.IsForceClosed && s.ForceClosedByUserID == nil
}

func (s *Shift) settle(closing, expected decimal.Decimal, totals Totals, now time.Time) {
	s.ApplyTotals(totals)
	s.ClosingBalance = closing
	s.ExpectedBalance = RoundMoney(expected)
	s.Difference = closing.Sub(s.ExpectedBalance)
	s.ClosedAt = &now
	s.IsClosed = true
	s.Touch(now)
	s.IncrementVersion()
}

// ApplyTotals copies order totals onto the shift
func (s *Shift) ApplyTotals(t Totals) {
	s.TotalCash = RoundMoney(t.Cash)
	s.TotalCard = RoundMoney(t.Card)
	s.TotalOrders = RoundMoney(t.Orders)
}

// Handover reassigns custody to another user without closing the shift.
// It is a custody transfer only and moves no money.
func (s *Shift) Handover(fromUserID, toUserID uuid.UUID, currentBalance decimal.Decimal, notes string, now time.Time) error {
	if err := s.CanHandover(fromUserID, toUserID); err != nil {
		return err
	}

	previous := s.UserID
	s.UserID = toUserID
	s.IsHandedOver = true
	s.HandedOverFromUserID = &previous
	s.HandedOverToUserID = &toUserID
	s.HandedOverAt = &now
	s.HandoverBalance = RoundMoney(currentBalance)
	s.HandoverNotes = strings.TrimSpace(notes)
	s.LastActivityAt = now
	s.Touch(now)
	s.IncrementVersion()
	s.AddDomainEvent(NewShiftHandedOverEvent(s, previous))
	return nil
}

// CanHandover checks the handover preconditions that depend on the shift alone
func (s *Shift) CanHandover(fromUserID, toUserID uuid.UUID) error {
	if toUserID == uuid.Nil {
		return ErrHandoverUserRequired
	}
	if toUserID == fromUserID || toUserID == s.UserID {
		return ErrHandoverToSameUser
	}
	if s.IsClosed {
		return ErrCannotHandoverClosed
	}
	if s.IsHandedOver {
		return ErrShiftAlreadyHandedOver
	}
	if fromUserID != s.UserID {
		return ErrHandoverNotCustodian
	}
	return nil
}

// TouchActivity records custodian activity. It returns false without
// changing anything when the shift is already closed.
func (s *Shift) TouchActivity(now time.Time) bool {
	if s.IsClosed {
		return false
	}
	s.LastActivityAt = now
	s.Touch(now)
	s.IncrementVersion()
	return true
}

// OpenDuration returns how long the shift has been (or was) open
func (s *Shift) OpenDuration(now time.Time) time.Duration {
	end := now
	if s.ClosedAt != nil {
		end = *s.ClosedAt
	}
	if end.Before(s.OpenedAt) {
		return 0
	}
	return end.Sub(s.OpenedAt)
}

// HoursOpen returns the open duration in hours, rounded to one decimal
func (s *Shift) HoursOpen(now time.Time) float64 {
	hours := s.OpenDuration(now).Hours()
	return float64(int64(hours*10+0.5)) / 10
}
