package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/onegreenvn/ads-proposal-backend/internal/services/execution"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/lifecycle"
)

type countingSteps struct {
	due, collect, cleanup atomic.Int32
	dryRun                atomic.Bool
	collectErr            error
}

func (c *countingSteps) ExecuteDue(context.Context) (*execution.ScheduledRunResult, error) {
	c.due.Add(1)
	return &execution.ScheduledRunResult{}, nil
}

func (c *countingSteps) CollectAfterSnapshots(context.Context) (*impact.CollectResult, error) {
	c.collect.Add(1)
	return &impact.CollectResult{}, c.collectErr
}

func (c *countingSteps) CleanupInactiveProposals(_ context.Context, dryRun bool) (*lifecycle.CleanupResult, error) {
	c.cleanup.Add(1)
	c.dryRun.Store(dryRun)
	return &lifecycle.CleanupResult{DryRun: dryRun}, nil
}

func TestSweepSchedulerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	steps := &countingSteps{}
	s := NewSweepScheduler(steps, steps, steps, true)
	s.SetInterval(10 * time.Millisecond)

	s.Start()
	s.Start()
	require.Eventually(t, func() bool { return steps.cleanup.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.Status().Running)

	s.Stop()
	s.Stop()
	assert.False(t, s.Status().Running)
	assert.True(t, steps.dryRun.Load())
	assert.NotNil(t, s.Status().LastRun)
}

func TestSweepRunOnceContinuesAfterFailure(t *testing.T) {
	steps := &countingSteps{collectErr: errors.New("reporting offline")}
	s := NewSweepScheduler(steps, steps, steps, false)

	report := s.RunOnce(context.Background())
	assert.Equal(t, int32(1), steps.due.Load())
	assert.Equal(t, int32(1), steps.collect.Load())
	assert.Equal(t, int32(1), steps.cleanup.Load())
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "snapshots")
	assert.False(t, steps.dryRun.Load())
	assert.Same(t, report, s.Status().LastRun)
}

func TestSweepRunOnceSkipsMissingSteps(t *testing.T) {
	s := NewSweepScheduler(nil, nil, nil, false)
	report := s.RunOnce(context.Background())
	assert.Nil(t, report.Scheduled)
	assert.Nil(t, report.Cleanup)
	assert.Empty(t, report.Errors)
}
