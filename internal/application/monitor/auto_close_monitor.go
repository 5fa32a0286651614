package monitor

import (
	"context"
	"fmt"
	"time"

	appshift "github.com/erp/pos/internal/application/shift"
	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"go.uber.org/zap"
)

// AutoCloseMonitorName is the name reported by the auto-close monitor
const AutoCloseMonitorName = "shift_auto_close"

// AutoCloseConfig controls which shifts are terminated
type AutoCloseConfig struct {
	After     time.Duration
	BatchSize int
}

// DefaultAutoCloseConfig closes shifts open for 12 hours or more
func DefaultAutoCloseConfig() AutoCloseConfig {
	return AutoCloseConfig{
		After:     12 * time.Hour,
		BatchSize: 500,
	}
}

// AutoCloseMonitor force-closes shifts left open past the configured age.
// The closure is committed on its own; the ledger entry and the audit row
// that follow are best effort.
type AutoCloseMonitor struct {
	shifts    shift.Repository
	audits    audit.Repository
	txScope   appshift.TransactionScope
	publisher shared.EventPublisher
	recorder  RunRecorder
	clock     shared.Clock
	cfg       AutoCloseConfig
	logger    *zap.Logger
}

// NewAutoCloseMonitor creates an AutoCloseMonitor
func NewAutoCloseMonitor(
	shifts shift.Repository,
	audits audit.Repository,
	txScope appshift.TransactionScope,
	cfg AutoCloseConfig,
	logger *zap.Logger,
) *AutoCloseMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoCloseMonitor{
		shifts:  shifts,
		audits:  audits,
		txScope: txScope,
		clock:   shared.SystemClock{},
		cfg:     cfg,
		logger:  logger.Named(AutoCloseMonitorName),
	}
}

// SetClock replaces the time source
func (m *AutoCloseMonitor) SetClock(clock shared.Clock) {
	m.clock = clock
}

// SetRecorder sets the sink for run metrics
func (m *AutoCloseMonitor) SetRecorder(r RunRecorder) {
	m.recorder = r
}

// SetEventPublisher sets the publisher for ShiftForceClosed events
func (m *AutoCloseMonitor) SetEventPublisher(p shared.EventPublisher) {
	m.publisher = p
}

// Name returns the monitor name
func (m *AutoCloseMonitor) Name() string {
	return AutoCloseMonitorName
}

// Reason returns the force-close reason stamped on auto-closed shifts
func (m *AutoCloseMonitor) Reason() string {
	return fmt.Sprintf("Automatically closed after exceeding %g hours open", m.cfg.After.Hours())
}

// RunOnce closes every shift open longer than the configured age
func (m *AutoCloseMonitor) RunOnce(ctx context.Context) (*RunStats, error) {
	now := m.clock.Now()
	stats := newRunStats(AutoCloseMonitorName, now)

	scanned, err := scanOpen(ctx, m.shifts, now.Add(-m.cfg.After), m.cfg.BatchSize, func(sh *shift.Shift) {
		closed, err := m.closeShift(ctx, sh, now)
		if err != nil {
			m.logger.Error("Failed to auto-close shift",
				zap.String("shift_id", sh.ID.String()),
				zap.String("tenant_id", sh.TenantID.String()),
				zap.Error(err),
			)
			stats.add(OutcomeFailed)
			return
		}
		if closed == nil {
			stats.add(OutcomeSkipped)
			return
		}

		m.appendLedgerEntry(ctx, closed, now)
		m.writeAudit(ctx, closed, now)
		m.publish(ctx, closed)
		stats.add(OutcomeAutoClosed)
	})
	stats.Scanned = scanned
	if err != nil {
		stats.FinishedAt = m.clock.Now()
		err = fmt.Errorf("failed to load open shifts: %w", err)
		record(ctx, m.recorder, stats, err)
		return nil, err
	}

	stats.FinishedAt = m.clock.Now()
	if stats.Scanned > 0 {
		m.logger.Info("Shift auto-close cycle completed",
			zap.Int("scanned", stats.Scanned),
			zap.Int("closed", stats.Count(OutcomeAutoClosed)),
			zap.Int("failed", stats.Failed()),
		)
	}
	record(ctx, m.recorder, stats, nil)
	return stats, nil
}

// closeShift force-closes one shift in its own transaction. It returns nil
// without error when the shift was closed by someone else in the meantime.
func (m *AutoCloseMonitor) closeShift(ctx context.Context, candidate *shift.Shift, now time.Time) (*shift.Shift, error) {
	var closed *shift.Shift
	err := m.txScope.Execute(ctx, func(repos appshift.TransactionalRepositories) error {
		current, err := repos.ShiftRepo().FindByID(ctx, candidate.TenantID, candidate.ID)
		if err != nil {
			return err
		}
		if current.IsClosed {
			return nil
		}

		expected, err := repos.LedgerStore().CurrentBalance(ctx, current.TenantID, current.BranchID)
		if err != nil {
			return err
		}
		totals, err := appshift.ComputeTotals(ctx, repos.OrderReader(), current)
		if err != nil {
			return err
		}
		if err := current.ForceClose(shift.ForceCloseParams{
			Reason:          m.Reason(),
			ActorName:       shift.SystemActorName,
			ExpectedBalance: expected,
			Totals:          totals,
		}, now); err != nil {
			return err
		}
		if err := repos.ShiftRepo().Save(ctx, current); err != nil {
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

func (m *AutoCloseMonitor) appendLedgerEntry(ctx context.Context, sh *shift.Shift, now time.Time) {
	err := m.txScope.Execute(ctx, func(repos appshift.TransactionalRepositories) error {
		ledger := repos.LedgerStore()
		balance, err := ledger.LockBalance(ctx, sh.TenantID, sh.BranchID)
		if err != nil {
			return err
		}
		txn, err := cashregister.NewShiftCloseTransaction(sh.TenantID, sh.BranchID, sh.ID, balance, sh.ClosingBalance, now)
		if err != nil {
			return err
		}
		txn.WithDescription("Shift auto-closed: " + sh.ForceCloseReason)
		return ledger.Append(ctx, txn)
	})
	if err != nil {
		m.logger.Error("Failed to append ledger entry for auto-closed shift",
			zap.String("shift_id", sh.ID.String()),
			zap.String("branch_id", sh.BranchID.String()),
			zap.Error(err),
		)
	}
}

func (m *AutoCloseMonitor) writeAudit(ctx context.Context, sh *shift.Shift, now time.Time) {
	if m.audits == nil {
		return
	}
	row := audit.NewShiftAuditLog(sh.TenantID, sh.BranchID, sh.ID, sh.UserID, audit.ActionShiftAutoClosed,
		sh.HoursOpen(now), sh.ForceCloseReason, now)
	if err := m.audits.Create(ctx, row); err != nil {
		m.logger.Warn("Failed to write auto-close audit row",
			zap.String("shift_id", sh.ID.String()),
			zap.Error(err),
		)
	}
}

func (m *AutoCloseMonitor) publish(ctx context.Context, sh *shift.Shift) {
	events := sh.PullDomainEvents()
	if m.publisher == nil || len(events) == 0 {
		return
	}
	if err := m.publisher.Publish(ctx, events...); err != nil {
		m.logger.Warn("Failed to publish auto-close events",
			zap.String("shift_id", sh.ID.String()),
			zap.Error(err),
		)
	}
}

var _ Monitor = (*AutoCloseMonitor)(nil)
