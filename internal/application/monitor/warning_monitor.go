package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/directory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"go.uber.org/zap"
)

// WarningMonitorName is the name reported by the warning monitor
const WarningMonitorName = "shift_warning"

// WarningConfig holds the escalation thresholds and dedupe windows
type WarningConfig struct {
	Thresholds     shift.Thresholds
	WarningDedupe  time.Duration
	CriticalDedupe time.Duration
	BatchSize      int
}

// DefaultWarningConfig returns 12h/24h thresholds with 1h/2h dedupe windows
func DefaultWarningConfig() WarningConfig {
	return WarningConfig{
		Thresholds:     shift.DefaultThresholds(),
		WarningDedupe:  time.Hour,
		CriticalDedupe: 2 * time.Hour,
		BatchSize:      500,
	}
}

// WarningMonitor annotates shifts that stay open too long. It never
// mutates the shift itself.
type WarningMonitor struct {
	shifts   shift.Repository
	audits   audit.Repository
	dir      directory.Directory
	claims   ClaimStore
	recorder RunRecorder
	clock    shared.Clock
	cfg      WarningConfig
	logger   *zap.Logger
}

// NewWarningMonitor creates a WarningMonitor. claims may be nil, in which
// case only the audit trail is used for deduplication.
func NewWarningMonitor(
	shifts shift.Repository,
	audits audit.Repository,
	dir directory.Directory,
	claims ClaimStore,
	cfg WarningConfig,
	logger *zap.Logger,
) *WarningMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarningMonitor{
		shifts: shifts,
		audits: audits,
		dir:    dir,
		claims: claims,
		clock:  shared.SystemClock{},
		cfg:    cfg,
		logger: logger.Named(WarningMonitorName),
	}
}

// SetClock replaces the time source
func (m *WarningMonitor) SetClock(clock shared.Clock) {
	m.clock = clock
}

// SetRecorder sets the sink for run metrics
func (m *WarningMonitor) SetRecorder(r RunRecorder) {
	m.recorder = r
}

// Name returns the monitor name
func (m *WarningMonitor) Name() string {
	return WarningMonitorName
}

// RunOnce classifies every shift open past the warning threshold and
// writes the audit rows that are not yet covered by a dedupe window
func (m *WarningMonitor) RunOnce(ctx context.Context) (*RunStats, error) {
	now := m.clock.Now()
	stats := newRunStats(WarningMonitorName, now)

	scanned, err := scanOpen(ctx, m.shifts, now.Add(-m.cfg.Thresholds.Warning), m.cfg.BatchSize, func(sh *shift.Shift) {
		outcome, err := m.check(ctx, sh, now)
		if err != nil {
			m.logger.Error("Failed to check shift",
				zap.String("shift_id", sh.ID.String()),
				zap.String("tenant_id", sh.TenantID.String()),
				zap.Error(err),
			)
			stats.add(OutcomeFailed)
			return
		}
		stats.add(outcome)
	})
	stats.Scanned = scanned
	if err != nil {
		stats.FinishedAt = m.clock.Now()
		err = fmt.Errorf("failed to load open shifts: %w", err)
		record(ctx, m.recorder, stats, err)
		return nil, err
	}

	stats.FinishedAt = m.clock.Now()
	if stats.Count(OutcomeWarned)+stats.Count(OutcomeCritical)+stats.Failed() > 0 {
		m.logger.Info("Shift warning cycle completed",
			zap.Int("scanned", stats.Scanned),
			zap.Int("warned", stats.Count(OutcomeWarned)),
			zap.Int("critical", stats.Count(OutcomeCritical)),
			zap.Int("failed", stats.Failed()),
		)
	}
	record(ctx, m.recorder, stats, nil)
	return stats, nil
}

func (m *WarningMonitor) check(ctx context.Context, sh *shift.Shift, now time.Time) (string, error) {
	level := sh.WarningLevel(now, m.cfg.Thresholds)

	var (
		action  audit.Action
		window  time.Duration
		outcome string
	)
	switch level {
	case shift.WarningLevelWarning:
		action, window, outcome = audit.ActionShiftWarning, m.cfg.WarningDedupe, OutcomeWarned
	case shift.WarningLevelCritical:
		action, window, outcome = audit.ActionShiftCritical, m.cfg.CriticalDedupe, OutcomeCritical
	default:
		return OutcomeSkipped, nil
	}

	exists, err := m.audits.ExistsSince(ctx, sh.ID, action, now.Add(-window))
	if err != nil {
		return "", err
	}
	if exists {
		return OutcomeDeduplicated, nil
	}

	key := fmt.Sprintf("shift-warning:%s:%s", sh.ID, level)
	if m.claims != nil {
		ok, err := m.claims.Claim(ctx, key, window)
		if err != nil {
			return "", fmt.Errorf("failed to claim warning: %w", err)
		}
		if !ok {
			return OutcomeDeduplicated, nil
		}
	}

	hours := sh.HoursOpen(now)
	primary := audit.NewShiftAuditLog(sh.TenantID, sh.BranchID, sh.ID, sh.UserID, action, hours,
		fmt.Sprintf("Shift has been open for %.1f hours", hours), now)
	rows := []*audit.ShiftAuditLog{primary}

	if level == shift.WarningLevelCritical {
		admins, err := m.dir.ListActiveAdmins(ctx, sh.TenantID)
		if err != nil {
			m.release(ctx, key)
			return "", fmt.Errorf("failed to list administrators: %w", err)
		}
		for _, admin := range admins {
			rows = append(rows, primary.ForRecipient(admin.ID))
		}
	}

	if err := m.audits.Create(ctx, rows...); err != nil {
		m.release(ctx, key)
		return "", err
	}

	m.logger.Warn("Shift open too long",
		zap.String("shift_id", sh.ID.String()),
		zap.String("tenant_id", sh.TenantID.String()),
		zap.String("branch_id", sh.BranchID.String()),
		zap.String("level", level.String()),
		zap.Float64("hours_open", hours),
		zap.Int("notified", len(rows)-1),
	)
	return outcome, nil
}

func (m *WarningMonitor) release(ctx context.Context, key string) {
	if m.claims == nil {
		return
	}
	if err := m.claims.Release(ctx, key); err != nil {
		m.logger.Warn("Failed to release warning claim", zap.String("key", key), zap.Error(err))
	}
}

var _ Monitor = (*WarningMonitor)(nil)
