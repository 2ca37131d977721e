// Package impact pairs before/after KPI snapshots of executed proposals and
// reports the per-metric change.
package impact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/reporting"
)

// MeasurementDelay is how long after execution an after snapshot is expected
const MeasurementDelay = 7 * 24 * time.Hour

// ReportStatus is the state of an impact report
type ReportStatus string

const (
	StatusNoData    ReportStatus = "no_data"
	StatusNoBefore  ReportStatus = "no_before"
	StatusPending   ReportStatus = "pending"
	StatusAvailable ReportStatus = "available"
)

// ImpactReport compares the before and after KPI figures of a proposal
type ImpactReport struct {
	ProposalID     string                        `json:"proposal_id"`
	Status         ReportStatus                  `json:"status"`
	Before         *models.KPIVector             `json:"before,omitempty"`
	After          *models.KPIVector             `json:"after,omitempty"`
	Change         map[models.KPIMetric]*float64 `json:"change,omitempty"`
	Period         map[string]string             `json:"period,omitempty"`
	Message        string                        `json:"message,omitempty"`
	AvailableAfter *time.Time                    `json:"available_after,omitempty"`
}

// KPISource supplies the most recent aggregate KPI figures
type KPISource interface {
	LatestKPI(ctx context.Context) (*reporting.KPIReport, error)
}

// CollectResult summarises one after-snapshot collection pass
type CollectResult struct {
	Candidates int      `json:"candidates"`
	Collected  []string `json:"collected"`
	Skipped    []string `json:"skipped"`
}

// Tracker captures snapshots and builds impact reports
type Tracker struct {
	db         *gorm.DB
	proposals  *repository.ProposalRepository
	executions *repository.ExecutionRepository
	snapshots  *repository.SnapshotRepository
	kpi        KPISource
	cfg        config.ImpactConfig
	now        func() time.Time
}

// NewTracker creates an impact tracker
func NewTracker(db *gorm.DB, kpi KPISource, cfg config.ImpactConfig) *Tracker {
	return &Tracker{
		db:         db,
		proposals:  repository.NewProposalRepository(db),
		executions: repository.NewExecutionRepository(db),
		snapshots:  repository.NewSnapshotRepository(db),
		kpi:        kpi,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

func newSnapshot(proposalID string, typ models.SnapshotType, kpi models.KPIVector, period models.Period, campaignRef *string) *models.Snapshot {
	snap := &models.Snapshot{
		ProposalID:   proposalID,
		SnapshotType: typ,
		CampaignRef:  campaignRef,
		KPIVector:    kpi,
	}
	if !period.Start.IsZero() {
		start := period.Start
		snap.PeriodStart = &start
	}
	if !period.End.IsZero() {
		end := period.End
		snap.PeriodEnd = &end
	}
	return snap
}

// SaveBeforeSnapshot records the baseline of a new measurement cycle. It
// replaces an earlier before snapshot and discards the after snapshot that
// belonged to it.
func (t *Tracker) SaveBeforeSnapshot(ctx context.Context, proposalID string, kpi models.KPIVector, period models.Period, campaignRef *string) (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshots := t.snapshots.WithTx(tx)
		if err := snapshots.DeleteByType(ctx, proposalID, models.SnapshotAfter); err != nil {
			return fmt.Errorf("failed to clear stale after snapshot: %w", err)
		}
		saved, err := snapshots.Upsert(ctx, newSnapshot(proposalID, models.SnapshotBefore, kpi, period, campaignRef))
		if err != nil {
			return fmt.Errorf("failed to save before snapshot: %w", err)
		}
		snap = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SaveAfterSnapshot records the post-change figures; calling it again
// replaces the fields of the existing after snapshot.
func (t *Tracker) SaveAfterSnapshot(ctx context.Context, proposalID string, kpi models.KPIVector, period models.Period, campaignRef *string) (*models.Snapshot, error) {
	snap, err := t.snapshots.Upsert(ctx, newSnapshot(proposalID, models.SnapshotAfter, kpi, period, campaignRef))
	if err != nil {
		return nil, fmt.Errorf("failed to save after snapshot: %w", err)
	}
	return snap, nil
}

// GetImpactReport builds the impact report of a proposal
func (t *Tracker) GetImpactReport(ctx context.Context, proposalID string) (*ImpactReport, error) {
	if _, err := t.proposals.GetByID(ctx, proposalID); err != nil {
		return nil, err
	}

	before, err := t.snapshots.Get(ctx, proposalID, models.SnapshotBefore)
	if err != nil {
		return nil, err
	}
	after, err := t.snapshots.Get(ctx, proposalID, models.SnapshotAfter)
	if err != nil {
		return nil, err
	}

	report := &ImpactReport{ProposalID: proposalID}
	switch {
	case before == nil && after == nil:
		report.Status = StatusNoData
		return report, nil
	case before == nil:
		report.Status = StatusNoBefore
		report.After = &after.KPIVector
		report.Period = map[string]string{"after": periodLabel(after)}
		return report, nil
	}

	report.Before = &before.KPIVector
	report.Period = map[string]string{"before": periodLabel(before)}

	if after == nil {
		report.Status = StatusPending
		base := before.CreatedAt
		if exec, err := t.executions.GetLatestByProposalID(ctx, proposalID); err == nil {
			base = exec.ExecutedAt
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		available := base.Add(MeasurementDelay)
		report.AvailableAfter = &available
		report.Message = fmt.Sprintf("Impact measurement available after %s", available.Format("2006-01-02"))
		return report, nil
	}

	report.Status = StatusAvailable
	report.After = &after.KPIVector
	report.Period["after"] = periodLabel(after)
	report.Change = CalculateChange(before.KPIVector, after.KPIVector)
	return report, nil
}

// CalculateChange returns the percentage change of every metric, rounded to
// one decimal, or nil where the before value is zero or either side is missing.
func CalculateChange(before, after models.KPIVector) map[models.KPIMetric]*float64 {
	hundred := decimal.NewFromInt(100)
	change := make(map[models.KPIMetric]*float64, len(models.KPIMetrics))
	for _, m := range models.KPIMetrics {
		b, a := before.Get(m), after.Get(m)
		if b == nil || a == nil || *b == 0 {
			change[m] = nil
			continue
		}
		bd := decimal.NewFromFloat(*b)
		pct, _ := decimal.NewFromFloat(*a).Sub(bd).Div(bd).Mul(hundred).Round(1).Float64()
		change[m] = &pct
	}
	return change
}

func periodLabel(s *models.Snapshot) string {
	if s.PeriodStart == nil || s.PeriodEnd == nil {
		return ""
	}
	return s.PeriodStart.Format("2006-01-02") + "~" + s.PeriodEnd.Format("2006-01-02")
}

// GetProposalsNeedingAfterSnapshot returns executed proposals that have a
// before snapshot, no after snapshot, and were executed at least minDays ago.
func (t *Tracker) GetProposalsNeedingAfterSnapshot(ctx context.Context, minDays int) ([]models.Proposal, error) {
	cutoff := t.now().Add(-time.Duration(minDays) * 24 * time.Hour)
	return t.proposals.ListNeedingAfterSnapshot(ctx, cutoff)
}

// CollectAfterSnapshots saves an after snapshot for every candidate whose
// execution predates the latest reporting period.
func (t *Tracker) CollectAfterSnapshots(ctx context.Context) (*CollectResult, error) {
	candidates, err := t.GetProposalsNeedingAfterSnapshot(ctx, t.cfg.AfterSnapshotMinDays)
	if err != nil {
		return nil, err
	}
	result := &CollectResult{Candidates: len(candidates), Collected: []string{}, Skipped: []string{}}
	if len(candidates) == 0 {
		return result, nil
	}

	latest, err := t.kpi.LatestKPI(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest KPI figures: %w", err)
	}

	type outcome struct {
		id        string
		collected bool
	}
	outcomes := make([]outcome, len(candidates))

	limit := t.cfg.CollectConcurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range candidates {
		p := candidates[i]
		g.Go(func() error {
			outcomes[i].id = p.ID
			exec, err := t.executions.GetActiveByProposalID(gctx, p.ID)
			if err != nil {
				return err
			}
			if latest.Period.Start.Before(truncateDay(exec.ExecutedAt)) {
				return nil
			}
			if _, err := t.SaveAfterSnapshot(gctx, p.ID, latest.KPI, latest.Period, p.TargetCampaign); err != nil {
				return err
			}
			outcomes[i].collected = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		if o.collected {
			result.Collected = append(result.Collected, o.id)
		} else {
			result.Skipped = append(result.Skipped, o.id)
		}
	}
	logrus.WithFields(logrus.Fields{
		"candidates": result.Candidates,
		"collected":  len(result.Collected),
	}).Info("After snapshot collection completed")
	return result, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
