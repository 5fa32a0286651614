// Package monitor contains the background checks over open shifts. The
// warning monitor only annotates shifts; the auto-close monitor terminates
// them. A deployment runs one or the other.
package monitor

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/shift"
)

// Per-shift outcomes counted by a run
const (
	OutcomeSkipped      = "skipped"
	OutcomeWarned       = "warned"
	OutcomeCritical     = "critical"
	OutcomeDeduplicated = "deduplicated"
	OutcomeAutoClosed   = "auto_closed"
	OutcomeFailed       = "failed"
)

// Monitor is one periodic check over open shifts
type Monitor interface {
	// Name identifies the monitor in logs and metrics
	Name() string
	// RunOnce performs a single cycle. Per-shift failures are counted in the
	// stats; an error is returned only when the cycle could not run at all.
	RunOnce(ctx context.Context) (*RunStats, error)
}

// RunStats summarizes one monitor cycle
type RunStats struct {
	Monitor    string         `json:"monitor"`
	Scanned    int            `json:"scanned"`
	Outcomes   map[string]int `json:"outcomes"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func newRunStats(monitor string, now time.Time) *RunStats {
	return &RunStats{
		Monitor:   monitor,
		Outcomes:  make(map[string]int),
		StartedAt: now,
	}
}

func (s *RunStats) add(outcome string) {
	s.Outcomes[outcome]++
}

// Count returns how many shifts ended with the given outcome
func (s *RunStats) Count(outcome string) int {
	return s.Outcomes[outcome]
}

// Failed returns the number of shifts that could not be processed
func (s *RunStats) Failed() int {
	return s.Outcomes[OutcomeFailed]
}

// ClaimStore reserves a key for a limited time across all replicas
type ClaimStore interface {
	// Claim reserves key for ttl. It returns false when the key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim before its ttl expires
	Release(ctx context.Context, key string) error
}

// RunRecorder receives the result of every cycle
type RunRecorder interface {
	RecordMonitorRun(ctx context.Context, monitor string, d time.Duration, err error, outcomes map[string]int)
}

func record(ctx context.Context, r RunRecorder, stats *RunStats, err error) {
	if r == nil {
		return
	}
	r.RecordMonitorRun(ctx, stats.Monitor, stats.FinishedAt.Sub(stats.StartedAt), err, stats.Outcomes)
}

// scanOpen visits every open shift opened at or before cutoff, oldest first,
// loading batchSize rows per page. It returns the number of shifts visited.
func scanOpen(ctx context.Context, repo shift.Repository, cutoff time.Time, batchSize int, visit func(sh *shift.Shift)) (int, error) {
	q := shift.OpenShiftQuery{OpenedBefore: cutoff, Limit: batchSize}
	scanned := 0
	for {
		if err := ctx.Err(); err != nil {
			return scanned, err
		}
		page, err := repo.FindOpen(ctx, q)
		if err != nil {
			return scanned, err
		}
		for i := range page {
			visit(&page[i])
		}
		scanned += len(page)
		if batchSize <= 0 || len(page) < batchSize {
			return scanned, nil
		}
		last := page[len(page)-1]
		q.After = &shift.OpenShiftCursor{OpenedAt: last.OpenedAt, ID: last.ID}
	}
}
