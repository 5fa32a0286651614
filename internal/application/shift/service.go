// Package shift implements the shift lifecycle: opening, closing,
// force-closing and handing over cash drawers, with each money-relevant
// step committed together with its ledger entry.
package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/directory"
	"github.com/erp/pos/internal/domain/sales"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service handles shift lifecycle operations
type Service struct {
	shiftRepo      shift.Repository
	auditRepo      audit.Repository
	directory      directory.Directory
	orders         sales.OrderReader
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	clock          shared.Clock
	thresholds     shift.Thresholds
	logger         *zap.Logger
}

// NewService creates a new shift Service
func NewService(
	shiftRepo shift.Repository,
	auditRepo audit.Repository,
	dir directory.Directory,
	orders sales.OrderReader,
	txScope TransactionScope,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		shiftRepo:  shiftRepo,
		auditRepo:  auditRepo,
		directory:  dir,
		orders:     orders,
		txScope:    txScope,
		clock:      shared.SystemClock{},
		thresholds: shift.DefaultThresholds(),
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the time source
func (s *Service) SetClock(clock shared.Clock) {
	s.clock = clock
}

// SetThresholds sets the open durations used by GetWarnings
func (s *Service) SetThresholds(t shift.Thresholds) {
	s.thresholds = t
}

// Open starts a shift for the custodian and records the opening float in
// the branch ledger within one transaction
func (s *Service) Open(ctx context.Context, in OpenShiftInput) (*ShiftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shift", "open")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, in.TenantID.String(),
		telemetry.SpanAttrBranchID, in.BranchID.String(),
		telemetry.SpanAttrUserID, in.UserID.String(),
	)

	if err := s.checkCustodian(ctx, in.TenantID, in.BranchID, in.UserID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.clock.Now()
	sh, err := shift.NewShift(in.TenantID, in.BranchID, in.UserID, in.OpeningBalance, now)
	if err != nil {
		return nil, err
	}

	exists, err := s.shiftRepo.ExistsOpenForUser(ctx, in.TenantID, in.BranchID, in.UserID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check open shift: %w", err)
	}
	if exists {
		return nil, shift.ErrShiftAlreadyOpen
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger := repos.LedgerStore()
		balance, err := ledger.LockBalance(ctx, in.TenantID, in.BranchID)
		if err != nil {
			return err
		}

		exists, err := repos.ShiftRepo().ExistsOpenForUser(ctx, in.TenantID, in.BranchID, in.UserID)
		if err != nil {
			return err
		}
		if exists {
			return shift.ErrShiftAlreadyOpen
		}
		if err := repos.ShiftRepo().Create(ctx, sh); err != nil {
			return err
		}

		txn, err := cashregister.NewTransaction(in.TenantID, in.BranchID, cashregister.TransactionTypeOpening, sh.OpeningBalance, balance, now)
		if err != nil {
			return err
		}
		txn.WithShift(sh.ID).
			WithUser(in.UserID).
			WithReference(cashregister.ShiftRef(sh.ID)).
			WithDescription("Shift opening balance")
		return ledger.Append(ctx, txn)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, sh)
	logger.L(ctx, s.logger).Info("Shift opened",
		zap.String("shift_id", sh.ID.String()),
		zap.String("tenant_id", sh.TenantID.String()),
		zap.String("branch_id", sh.BranchID.String()),
		zap.String("opening_balance", sh.OpeningBalance.StringFixed(2)),
	)

	resp := ToShiftResponse(sh, now)
	return &resp, nil
}

// Close settles the custodian's open shift against the branch ledger
// balance and appends the closing entry
func (s *Service) Close(ctx context.Context, in CloseShiftInput) (*ShiftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shift", "close")
	defer span.End()

	loaded, err := s.shiftRepo.FindOpenByCustodian(ctx, in.TenantID, in.BranchID, in.UserID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrShiftID, loaded.ID.String())

	now := s.clock.Now()
	var closed *shift.Shift
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger := repos.LedgerStore()
		ledgerBalance, err := ledger.LockBalance(ctx, loaded.TenantID, loaded.BranchID)
		if err != nil {
			return err
		}

		current, err := reload(ctx, repos.ShiftRepo(), loaded)
		if err != nil {
			return err
		}
		// Totals are read after the ledger lock so a sale that commits
		// before the lock is counted.
		totals, err := ComputeTotals(ctx, repos.OrderReader(), current)
		if err != nil {
			return err
		}
		if err := current.Close(in.ClosingBalance, ledgerBalance, totals, in.Notes, now); err != nil {
			return err
		}
		if err := repos.ShiftRepo().Save(ctx, current); err != nil {
			return err
		}

		if err := appendShiftClose(ctx, ledger, current, ledgerBalance, &in.UserID, now); err != nil {
			return err
		}
		closed = current
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, closed)
	logger.L(ctx, s.logger).Info("Shift closed",
		zap.String("shift_id", closed.ID.String()),
		zap.String("closing_balance", closed.ClosingBalance.StringFixed(2)),
		zap.String("expected_balance", closed.ExpectedBalance.StringFixed(2)),
		zap.String("difference", closed.Difference.StringFixed(2)),
	)

	resp := ToShiftResponse(closed, now)
	return &resp, nil
}

// ForceClose terminates a shift outside the normal close flow
func (s *Service) ForceClose(ctx context.Context, in ForceCloseShiftInput) (*ShiftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shift", "force_close")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrShiftID, in.ShiftID.String())

	closed, err := s.forceClose(ctx, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, closed)
	logger.L(ctx, s.logger).Warn("Shift force-closed",
		zap.String("shift_id", closed.ID.String()),
		zap.String("actor", closed.ForceClosedByUserName),
		zap.String("reason", closed.ForceCloseReason),
		zap.String("difference", closed.Difference.StringFixed(2)),
	)

	resp := ToShiftResponse(closed, s.clock.Now())
	return &resp, nil
}

func (s *Service) forceClose(ctx context.Context, in ForceCloseShiftInput) (*shift.Shift, error) {
	if err := shift.ValidateForceCloseReason(in.Reason); err != nil {
		return nil, err
	}

	loaded, err := s.shiftRepo.FindByID(ctx, in.TenantID, in.ShiftID)
	if err != nil {
		return nil, err
	}
	if loaded.IsForceClosed {
		return nil, shift.ErrShiftAlreadyForceClosed
	}
	if loaded.IsClosed {
		return nil, shift.ErrShiftAlreadyClosed
	}

	now := s.clock.Now()
	var closed *shift.Shift
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger := repos.LedgerStore()
		ledgerBalance, err := ledger.LockBalance(ctx, loaded.TenantID, loaded.BranchID)
		if err != nil {
			return err
		}

		current, err := reload(ctx, repos.ShiftRepo(), loaded)
		if err != nil {
			return err
		}
		totals, err := ComputeTotals(ctx, repos.OrderReader(), current)
		if err != nil {
			return err
		}
		if err := current.ForceClose(shift.ForceCloseParams{
			Reason:          in.Reason,
			ActorID:         in.ActorID,
			ActorName:       in.ActorName,
			ActualBalance:   in.ActualBalance,
			ExpectedBalance: ledgerBalance,
			Totals:          totals,
		}, now); err != nil {
			return err
		}
		if err := repos.ShiftRepo().Save(ctx, current); err != nil {
			return err
		}

		if err := appendShiftClose(ctx, ledger, current, ledgerBalance, in.ActorID, now); err != nil {
			return err
		}
		closed = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// Handover reassigns custody of an open shift. No money moves, so no
// ledger entry is written.
func (s *Service) Handover(ctx context.Context, in HandoverShiftInput) (*ShiftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shift", "handover")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrShiftID, in.ShiftID.String())

	loaded, err := s.shiftRepo.FindByID(ctx, in.TenantID, in.ShiftID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := loaded.CanHandover(in.FromUserID, in.ToUserID); err != nil {
		return nil, err
	}
	if _, err := s.directory.GetUser(ctx, in.TenantID, in.ToUserID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var handed *shift.Shift
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := reload(ctx, repos.ShiftRepo(), loaded)
		if err != nil {
			return err
		}

		busy, err := repos.ShiftRepo().ExistsOpenForUser(ctx, current.TenantID, current.BranchID, in.ToUserID)
		if err != nil {
			return err
		}
		if busy {
			return shift.ErrHandoverTargetHasOpenShift
		}

		if err := current.Handover(in.FromUserID, in.ToUserID, in.CurrentBalance, in.Notes, now); err != nil {
			return err
		}
		// The partial unique index on open custodians fires when the target
		// opened a shift after the check above.
		if err := repos.ShiftRepo().Save(ctx, current); err != nil {
			if errors.Is(err, shift.ErrShiftAlreadyOpen) {
				return shift.ErrHandoverTargetHasOpenShift
			}
			return err
		}
		handed = current
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, handed)
	logger.L(ctx, s.logger).Info("Shift handed over",
		zap.String("shift_id", handed.ID.String()),
		zap.String("from_user_id", in.FromUserID.String()),
		zap.String("to_user_id", in.ToUserID.String()),
	)

	resp := ToShiftResponse(handed, now)
	return &resp, nil
}

// UpdateActivity touches lastActivityAt. Closed shifts are left untouched
// and the call still succeeds.
func (s *Service) UpdateActivity(ctx context.Context, tenantID, shiftID uuid.UUID) error {
	sh, err := s.shiftRepo.FindByID(ctx, tenantID, shiftID)
	if err != nil {
		return err
	}
	if !sh.TouchActivity(s.clock.Now()) {
		return nil
	}
	return s.shiftRepo.Save(ctx, sh)
}

// GetWarnings classifies the custodian's open shift by elapsed time
func (s *Service) GetWarnings(ctx context.Context, tenantID, branchID, userID uuid.UUID) (*WarningResponse, error) {
	sh, err := s.shiftRepo.FindOpenByCustodian(ctx, tenantID, branchID, userID)
	if errors.Is(err, shift.ErrShiftNotFound) {
		return &WarningResponse{Level: shift.WarningLevelNone}, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	id := sh.ID
	return &WarningResponse{
		Level:     sh.WarningLevel(now, s.thresholds),
		HoursOpen: sh.HoursOpen(now),
		ShiftID:   &id,
	}, nil
}

// GetCurrentShift returns the custodian's open shift with live order
// totals, or nil when none is open
func (s *Service) GetCurrentShift(ctx context.Context, tenantID, branchID, userID uuid.UUID) (*ShiftResponse, error) {
	sh, err := s.shiftRepo.FindOpenByCustodian(ctx, tenantID, branchID, userID)
	if errors.Is(err, shift.ErrShiftNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	totals, err := s.totalsFor(ctx, sh)
	if err != nil {
		return nil, err
	}
	sh.ApplyTotals(totals)

	resp := ToShiftResponse(sh, s.clock.Now())
	return &resp, nil
}

// GetShift returns a shift by ID
func (s *Service) GetShift(ctx context.Context, tenantID, shiftID uuid.UUID) (*ShiftResponse, error) {
	sh, err := s.shiftRepo.FindByID(ctx, tenantID, shiftID)
	if err != nil {
		return nil, err
	}
	resp := ToShiftResponse(sh, s.clock.Now())
	return &resp, nil
}

// ListShifts lists shifts of a tenant
func (s *Service) ListShifts(ctx context.Context, tenantID uuid.UUID, f ShiftListFilter) (*shared.Paginated[ShiftResponse], error) {
	filter := shift.ListFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
		}.Normalize(),
		BranchID: f.BranchID,
		UserID:   f.UserID,
		IsClosed: f.IsClosed,
		From:     f.From,
		To:       f.To,
	}

	shifts, total, err := s.shiftRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items := make([]ShiftResponse, len(shifts))
	for i := range shifts {
		items[i] = ToShiftResponse(&shifts[i], now)
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetAuditTrail lists the monitor annotations of a shift
func (s *Service) GetAuditTrail(ctx context.Context, tenantID, shiftID uuid.UUID) ([]AuditLogResponse, error) {
	if _, err := s.shiftRepo.FindByID(ctx, tenantID, shiftID); err != nil {
		return nil, err
	}
	logs, err := s.auditRepo.FindByShift(ctx, tenantID, shiftID)
	if err != nil {
		return nil, err
	}
	items := make([]AuditLogResponse, len(logs))
	for i := range logs {
		items[i] = ToAuditLogResponse(&logs[i])
	}
	return items, nil
}

// Delete always fails: shifts are financial records
func (s *Service) Delete(_ context.Context, _, _ uuid.UUID) error {
	return shift.ErrShiftDeleteNotAllowed
}

func (s *Service) checkCustodian(ctx context.Context, tenantID, branchID, userID uuid.UUID) error {
	if _, err := s.directory.GetTenant(ctx, tenantID); err != nil {
		return err
	}
	if _, err := s.directory.GetBranch(ctx, tenantID, branchID); err != nil {
		return err
	}
	if _, err := s.directory.GetUser(ctx, tenantID, userID); err != nil {
		return err
	}
	return nil
}

func (s *Service) totalsFor(ctx context.Context, sh *shift.Shift) (shift.Totals, error) {
	return ComputeTotals(ctx, s.orders, sh)
}

func (s *Service) publish(ctx context.Context, sh *shift.Shift) {
	events := sh.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx, s.logger).Warn("Failed to publish shift events",
			zap.String("shift_id", sh.ID.String()),
			zap.Error(err),
		)
	}
}

// ComputeTotals splits the completed orders of a shift into cash and card
// totals. Shared with the auto-close monitor.
func ComputeTotals(ctx context.Context, orders sales.OrderReader, sh *shift.Shift) (shift.Totals, error) {
	completed, err := orders.CompletedOrdersForShift(ctx, sh.TenantID, sh.ID)
	if err != nil {
		return shift.Totals{}, fmt.Errorf("failed to read completed orders: %w", err)
	}
	summary := sales.Summarize(completed)
	return shift.Totals{
		Cash:   summary.Cash,
		Card:   summary.Card,
		Orders: summary.Orders,
	}, nil
}

// reload re-reads the shift inside the transaction and rejects it when
// another writer changed it since it was loaded
func reload(ctx context.Context, repo shift.Repository, loaded *shift.Shift) (*shift.Shift, error) {
	current, err := repo.FindByID(ctx, loaded.TenantID, loaded.ID)
	if err != nil {
		return nil, err
	}
	if current.Version != loaded.Version {
		return nil, shift.ErrShiftConcurrencyConflict
	}
	return current, nil
}

// appendShiftClose moves the branch chain from the ledger balance to the
// counted closing balance
func appendShiftClose(ctx context.Context, ledger cashregister.LedgerStore, sh *shift.Shift, ledgerBalance decimal.Decimal, actorID *uuid.UUID, now time.Time) error {
	txn, err := cashregister.NewShiftCloseTransaction(sh.TenantID, sh.BranchID, sh.ID, ledgerBalance, sh.ClosingBalance, now)
	if err != nil {
		return err
	}
	if actorID != nil {
		txn.WithUser(*actorID)
	}
	description := "Shift closed"
	if sh.IsForceClosed {
		description = "Shift force-closed: " + sh.ForceCloseReason
	}
	txn.WithDescription(description)
	return ledger.Append(ctx, txn)
}
