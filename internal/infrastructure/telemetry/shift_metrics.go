package telemetry

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ShiftMeterName is the meter name for shift instruments
const ShiftMeterName = "pos/shift"

// Close kinds recorded on pos.shifts.closed
const (
	CloseKindNormal = "normal"
	CloseKindForced = "forced"
	CloseKindSystem = "system"
)

// ShiftMetrics records shift lifecycle and monitor metrics. It subscribes
// to the shift domain events on the event bus.
type ShiftMetrics struct {
	opened         *Counter
	closed         *Counter
	handedOver     *Counter
	difference     *Histogram
	monitorRuns    *Counter
	monitorShifts  *Counter
	monitorRunTime *Histogram
}

// NewShiftMetrics creates the shift instruments on the given meter
func NewShiftMetrics(meter metric.Meter) (*ShiftMetrics, error) {
	m := &ShiftMetrics{}
	var err error

	if m.opened, err = NewCounter(meter, "pos.shifts.opened", "Number of shifts opened", "{shift}"); err != nil {
		return nil, err
	}
	if m.closed, err = NewCounter(meter, "pos.shifts.closed", "Number of shifts closed by close kind", "{shift}"); err != nil {
		return nil, err
	}
	if m.handedOver, err = NewCounter(meter, "pos.shifts.handed_over", "Number of custody transfers", "{shift}"); err != nil {
		return nil, err
	}
	if m.difference, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos.shifts.cash_difference",
		Description: "Absolute difference between counted and expected cash at close",
		Unit:        "1",
		Boundaries:  CashDifferenceBuckets,
	}); err != nil {
		return nil, err
	}
	if m.monitorRuns, err = NewCounter(meter, "pos.monitor.runs", "Number of monitor cycles by outcome", "{run}"); err != nil {
		return nil, err
	}
	if m.monitorShifts, err = NewCounter(meter, "pos.monitor.shifts", "Shifts handled by monitors by outcome", "{shift}"); err != nil {
		return nil, err
	}
	if m.monitorRunTime, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos.monitor.duration",
		Description: "Duration of a monitor cycle",
		Unit:        "s",
		Boundaries:  MonitorDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes returns the shift events this handler consumes
func (m *ShiftMetrics) EventTypes() []string {
	return []string{
		shift.EventTypeShiftOpened,
		shift.EventTypeShiftClosed,
		shift.EventTypeShiftForceClosed,
		shift.EventTypeShiftHandedOver,
	}
}

// Handle records one shift event
func (m *ShiftMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *shift.ShiftOpenedEvent:
		m.opened.Inc(ctx, tenant, AttrBranchID.String(e.BranchID().String()))
	case *shift.ShiftClosedEvent:
		m.closed.Inc(ctx, tenant, AttrCloseKind.String(CloseKindNormal))
		m.recordDifference(ctx, e.Difference, CloseKindNormal)
	case *shift.ShiftForceClosedEvent:
		kind := CloseKindForced
		if e.ActorID == nil {
			kind = CloseKindSystem
		}
		m.closed.Inc(ctx, tenant, AttrCloseKind.String(kind))
		m.recordDifference(ctx, e.Difference, kind)
	case *shift.ShiftHandedOverEvent:
		m.handedOver.Inc(ctx, tenant)
	}
	return nil
}

func (m *ShiftMetrics) recordDifference(ctx context.Context, diff decimal.Decimal, closeKind string) {
	v, _ := diff.Abs().Float64()
	m.difference.Record(ctx, v, AttrCloseKind.String(closeKind))
}

// RecordMonitorRun records one monitor cycle and the per-shift outcome counts
func (m *ShiftMetrics) RecordMonitorRun(ctx context.Context, monitor string, d time.Duration, err error, outcomes map[string]int) {
	name := AttrMonitor.String(monitor)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.monitorRuns.Inc(ctx, name, AttrOutcome.String(outcome))
	m.monitorRunTime.RecordDuration(ctx, d, name)
	for k, v := range outcomes {
		if v > 0 {
			m.monitorShifts.Add(ctx, int64(v), name, AttrOutcome.String(k))
		}
	}
}

// Ensure ShiftMetrics implements shared.EventHandler
var _ shared.EventHandler = (*ShiftMetrics)(nil)
