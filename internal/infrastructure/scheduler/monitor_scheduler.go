// Package scheduler runs the shift monitors on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/pos/internal/application/monitor"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MonitorSchedulerConfig holds the loop settings for one monitor
type MonitorSchedulerConfig struct {
	// Interval between the end of one cycle and the start of the next
	Interval time.Duration

	// RunTimeout bounds a single cycle
	RunTimeout time.Duration

	// RunOnStart runs a cycle immediately instead of waiting one interval
	RunOnStart bool
}

// MonitorScheduler drives a single monitor. A running cycle is never
// interrupted by Stop; shutdown is observed between cycles.
type MonitorScheduler struct {
	monitor monitor.Monitor
	config  MonitorSchedulerConfig
	logger  *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	cycling   atomic.Bool
	cycles    atomic.Int64
}

// NewMonitorScheduler creates a scheduler for m
func NewMonitorScheduler(m monitor.Monitor, cfg MonitorSchedulerConfig, logger *zap.Logger) (*MonitorScheduler, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: monitor is required", ErrInvalidConfig)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = cfg.Interval
	}
	return &MonitorScheduler{
		monitor: m,
		config:  cfg,
		logger:  logger.With(zap.String("monitor", m.Name())),
	}, nil
}

// SelectMonitor picks the monitor for the configured policy. It returns a
// nil monitor for the "off" policy.
func SelectMonitor(cfg config.ShiftMonitorConfig, warning, autoClose monitor.Monitor) (monitor.Monitor, MonitorSchedulerConfig, error) {
	switch cfg.Policy {
	case config.MonitorPolicyWarn:
		return warning, MonitorSchedulerConfig{Interval: cfg.WarningInterval, RunTimeout: cfg.RunTimeout, RunOnStart: true}, nil
	case config.MonitorPolicyAutoClose:
		return autoClose, MonitorSchedulerConfig{Interval: cfg.AutoCloseInterval, RunTimeout: cfg.RunTimeout, RunOnStart: true}, nil
	case config.MonitorPolicyOff:
		return nil, MonitorSchedulerConfig{}, nil
	default:
		return nil, MonitorSchedulerConfig{}, fmt.Errorf("%w: unknown shift monitor policy %q", ErrInvalidConfig, cfg.Policy)
	}
}

// Start launches the loop. Calling Start twice is a no-op.
func (s *MonitorScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Monitor scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop ends the loop, waiting for a running cycle to finish or ctx to expire
func (s *MonitorScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Monitor scheduler stopped gracefully", zap.Int64("cycles", s.cycles.Load()))
		return nil
	case <-ctx.Done():
		s.logger.Warn("Monitor scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs one cycle synchronously
func (s *MonitorScheduler) TriggerNow(ctx context.Context) (*monitor.RunStats, error) {
	if !s.IsRunning() {
		return nil, ErrSchedulerNotRunning
	}
	return s.runCycle(ctx)
}

// IsRunning returns whether the loop is active
func (s *MonitorScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Cycles returns the number of completed cycles
func (s *MonitorScheduler) Cycles() int64 {
	return s.cycles.Load()
}

func (s *MonitorScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runLogged(ctx)
	}

	timer := time.NewTimer(s.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Monitor loop stopping")
			return
		case <-timer.C:
			s.runLogged(ctx)
			timer.Reset(s.config.Interval)
		}
	}
}

func (s *MonitorScheduler) runLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runCycle(ctx); err != nil && err != ErrCycleInProgress {
		s.logger.Error("Monitor cycle failed", zap.Error(err))
	}
}

// runCycle detaches from ctx cancellation so shutdown never cuts a cycle
// short; only RunTimeout bounds it.
func (s *MonitorScheduler) runCycle(ctx context.Context) (*monitor.RunStats, error) {
	if !s.cycling.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer s.cycling.Store(false)

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RunTimeout)
	defer cancel()
	runCtx, span := telemetry.StartSpan(runCtx, "monitor.cycle",
		attribute.String(telemetry.SpanAttrMonitor, s.monitor.Name()))
	defer span.End()

	start := time.Now()
	stats, err := s.monitor.RunOnce(runCtx)
	s.cycles.Add(1)
	if err != nil {
		telemetry.RecordError(span, err)
		return stats, err
	}
	telemetry.SetAttribute(span, "scanned", stats.Scanned)

	s.logger.Info("Monitor cycle completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("scanned", stats.Scanned),
		zap.Any("outcomes", stats.Outcomes),
	)
	return stats, nil
}
