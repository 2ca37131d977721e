package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/ads-proposal-backend/internal/services/execution"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/lifecycle"
)

// AfterSnapshotCollector records after snapshots for matured executions
type AfterSnapshotCollector interface {
	CollectAfterSnapshots(ctx context.Context) (*impact.CollectResult, error)
}

// InactiveProposalCleaner retires proposals aimed at inactive campaigns
type InactiveProposalCleaner interface {
	CleanupInactiveProposals(ctx context.Context, dryRun bool) (*lifecycle.CleanupResult, error)
}

// DueExecutor runs approvals whose scheduled time has passed
type DueExecutor interface {
	ExecuteDue(ctx context.Context) (*execution.ScheduledRunResult, error)
}

// SweepReport is the outcome of one sweep
type SweepReport struct {
	StartedAt  time.Time                     `json:"started_at"`
	FinishedAt time.Time                     `json:"finished_at"`
	Scheduled  *execution.ScheduledRunResult `json:"scheduled,omitempty"`
	Snapshots  *impact.CollectResult         `json:"snapshots,omitempty"`
	Cleanup    *lifecycle.CleanupResult      `json:"cleanup,omitempty"`
	Errors     []string                      `json:"errors,omitempty"`
}

// SweepStatus describes the scheduler
type SweepStatus struct {
	Running  bool         `json:"running"`
	Interval string       `json:"interval"`
	LastRun  *SweepReport `json:"last_run,omitempty"`
}

// SweepScheduler periodically runs scheduled approvals, after-snapshot
// collection and inactive-proposal cleanup
type SweepScheduler struct {
	scheduled DueExecutor
	snapshots AfterSnapshotCollector
	cleaner   InactiveProposalCleaner
	dryRun    bool
	interval  time.Duration

	mu      sync.Mutex
	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastRun *SweepReport
}

// NewSweepScheduler creates a scheduler; any collaborator may be nil
func NewSweepScheduler(scheduled DueExecutor, snapshots AfterSnapshotCollector, cleaner InactiveProposalCleaner, cleanupDryRun bool) *SweepScheduler {
	return &SweepScheduler{
		scheduled: scheduled,
		snapshots: snapshots,
		cleaner:   cleaner,
		dryRun:    cleanupDryRun,
		interval:  24 * time.Hour,
	}
}

// SetInterval sets the sweep interval; it takes effect on the next Start
func (s *SweepScheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval > 0 {
		s.interval = interval
	}
}

// Start starts the sweep loop. Calling Start on a running scheduler does nothing.
func (s *SweepScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.interval, s.done)
	logrus.WithField("interval", s.interval.String()).Info("Sweep scheduler started")
}

// Stop stops the sweep loop and waits for a sweep in progress to return
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	logrus.Info("Sweep scheduler stopped")
}

// Status reports whether the loop is running and the last sweep outcome
func (s *SweepScheduler) Status() SweepStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SweepStatus{Running: s.cancel != nil, Interval: s.interval.String(), LastRun: s.lastRun}
}

func (s *SweepScheduler) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs a single sweep. A failing step is logged and recorded;
// the remaining steps still run.
func (s *SweepScheduler) RunOnce(ctx context.Context) *SweepReport {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	report := &SweepReport{StartedAt: time.Now().UTC()}
	fail := func(step string, err error) {
		if errors.Is(err, context.Canceled) {
			return
		}
		logrus.WithError(err).WithField("step", step).Error("Sweep step failed")
		report.Errors = append(report.Errors, step+": "+err.Error())
	}

	if s.scheduled != nil {
		res, err := s.scheduled.ExecuteDue(ctx)
		if err != nil {
			fail("scheduled", err)
		}
		report.Scheduled = res
	}
	if s.snapshots != nil && ctx.Err() == nil {
		res, err := s.snapshots.CollectAfterSnapshots(ctx)
		if err != nil {
			fail("snapshots", err)
		}
		report.Snapshots = res
	}
	if s.cleaner != nil && ctx.Err() == nil {
		res, err := s.cleaner.CleanupInactiveProposals(ctx, s.dryRun)
		if err != nil {
			fail("cleanup", err)
		}
		report.Cleanup = res
	}
	report.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.lastRun = report
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"errors":   len(report.Errors),
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Sweep completed")
	return report
}
