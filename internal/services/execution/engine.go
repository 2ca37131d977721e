// Package execution drives the proposal lifecycle: approval, safeguarded
// execution against the mutation gateway, rejection and rollback.
package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/notification"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/reporting"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/safeguard"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/service_platform"
	"github.com/onegreenvn/ads-proposal-backend/internal/utils"
)

// SchedulerActor is recorded as the executor of scheduled approvals
const SchedulerActor = "scheduler"

// ApproveInput carries the reviewer's decision
type ApproveInput struct {
	Overrides  *models.Overrides
	EditReason string
	Editor     string
	ScheduleAt *time.Time
}

// Engine is the proposal lifecycle orchestrator
type Engine struct {
	db         *gorm.DB
	proposals  *repository.ProposalRepository
	executions *repository.ExecutionRepository
	results    *repository.ResultRepository
	gateway    service_platform.MutationGateway
	notifier   notification.Notifier
	tracker    *impact.Tracker
	kpi        impact.KPISource
	safeguard  *safeguard.Validator
	cfg        config.SafeguardConfig
	now        func() time.Time
}

// NewEngine creates an engine. notifier and kpi may be nil.
func NewEngine(db *gorm.DB, gateway service_platform.MutationGateway, notifier notification.Notifier,
	tracker *impact.Tracker, kpi impact.KPISource, cfg config.SafeguardConfig) *Engine {
	if notifier == nil {
		notifier = notification.LogNotifier{}
	}
	return &Engine{
		db:         db,
		proposals:  repository.NewProposalRepository(db),
		executions: repository.NewExecutionRepository(db),
		results:    repository.NewResultRepository(db),
		gateway:    gateway,
		notifier:   notifier,
		tracker:    tracker,
		kpi:        kpi,
		safeguard:  safeguard.NewValidator(cfg),
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Approve moves a pending proposal to approved, recording reviewer edits,
// and executes it unless it is scheduled for later. A safeguard rejection of
// that execution puts the proposal back to pending.
func (e *Engine) Approve(ctx context.Context, id string, in ApproveInput) (*ApprovalResult, error) {
	now := e.now()
	var scheduledAt *time.Time
	if in.ScheduleAt != nil && in.ScheduleAt.After(now) {
		at := in.ScheduleAt.UTC()
		scheduledAt = &at
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposals := e.proposals.WithTx(tx)
		p, err := proposals.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status != models.StatusPending {
			return apperror.InvalidState(id, string(p.Status), string(models.StatusPending))
		}

		spec := p.Spec()
		if !in.Overrides.IsEmpty() {
			original, err := json.Marshal(spec.Content())
			if err != nil {
				return fmt.Errorf("failed to encode original action spec: %w", err)
			}
			spec.EditHistory = append(spec.EditHistory, models.EditRecord{
				OriginalActionSpec: original,
				EditedValues:       *in.Overrides,
				EditReason:         in.EditReason,
				EditedAt:           now,
				EditedBy:           in.Editor,
			})
		}

		ok, err := proposals.TransitionStatus(ctx, id, models.StatusPending, models.StatusApproved, map[string]interface{}{
			"action_steps": datatypes.NewJSONType(spec),
			"scheduled_at": scheduledAt,
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState(id, "changed concurrently", string(models.StatusPending))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"proposal_id": id, "editor": in.Editor, "edited": !in.Overrides.IsEmpty()}).Info("Proposal approved")

	if scheduledAt != nil {
		return &ApprovalResult{
			ProposalID:  id,
			Status:      models.StatusApproved,
			ScheduledAt: scheduledAt,
			Message:     fmt.Sprintf("Execution scheduled for %s", scheduledAt.Format(time.RFC3339)),
		}, nil
	}

	return e.executeApproved(ctx, id, in.Editor, in.Overrides)
}

// executeApproved runs an execution on behalf of an approval. It is the only
// place where approved may go back to pending.
func (e *Engine) executeApproved(ctx context.Context, id, executor string, overrides *models.Overrides) (*ApprovalResult, error) {
	res, err := e.Execute(ctx, id, executor, overrides)
	if err != nil {
		if apperror.IsSafeguard(err) {
			if _, revertErr := e.proposals.TransitionStatus(ctx, id, models.StatusApproved, models.StatusPending, map[string]interface{}{"scheduled_at": nil}); revertErr != nil {
				logrus.WithError(revertErr).WithField("proposal_id", id).Error("Failed to revert proposal to pending")
				return nil, errors.Join(err, revertErr)
			}
			logrus.WithField("proposal_id", id).WithError(err).Warn("Safeguard blocked execution, proposal reverted to pending")
			return &ApprovalResult{ProposalID: id, Status: models.StatusPending, Message: err.Error()}, err
		}
		return &ApprovalResult{ProposalID: id, Status: models.StatusApproved, Message: err.Error()}, err
	}

	if res.Status == ExecutionFailed {
		return &ApprovalResult{ProposalID: id, Status: models.StatusApproved, Message: res.Error, Execution: res},
			fmt.Errorf("%w: %s", apperror.ErrExecutionFailed, res.Error)
	}
	return &ApprovalResult{ProposalID: id, Status: models.StatusExecuted, Execution: res}, nil
}

// Execute applies an approved proposal to the platform. Rejections that
// happen before any mutation are returned as errors; a gateway failure is
// reported as a failed ExecutionResult and leaves the proposal approved.
// Nil overrides fall back to the values of the latest approval edit.
func (e *Engine) Execute(ctx context.Context, id, executor string, overrides *models.Overrides) (*ExecutionResult, error) {
	p, err := e.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusApproved {
		return nil, apperror.InvalidState(id, string(p.Status), string(models.StatusApproved))
	}

	baseline := e.captureBaseline(ctx, p)

	var (
		result   *ExecutionResult
		applied  []models.OperationRecord
		warnings []string
		applyErr error
	)
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposals := e.proposals.WithTx(tx)
		p, err := proposals.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status != models.StatusApproved {
			return apperror.InvalidState(id, string(p.Status), string(models.StatusApproved))
		}

		effective := overrides
		if effective.IsEmpty() {
			if history := p.Spec().EditHistory; len(history) > 0 {
				last := history[len(history)-1].EditedValues
				effective = &last
			}
		}

		checked, err := e.safeguard.Validate(p, effective)
		if err != nil {
			return err
		}
		plan, err := handlerFor(p.Category).plan(p, effective)
		if err != nil {
			return err
		}
		warnings = append(checked, plan.warnings...)

		ops, err := plan.apply(ctx, e.gateway)
		applied = ops
		if err != nil {
			applyErr = err
			result = &ExecutionResult{
				ProposalID: id,
				Status:     ExecutionFailed,
				Category:   p.Category,
				Operations: ops,
				Warnings:   warnings,
				Error:      err.Error(),
			}
			return nil
		}

		executedAt := e.now()
		exec := &models.Execution{
			ProposalID: id,
			ExecutedAt: executedAt,
			ExecutedBy: executor,
			ActualChanges: datatypes.NewJSONType(models.ActualChanges{
				Category:   p.Category,
				Operations: ops,
				ExecutedAt: executedAt,
				Warnings:   warnings,
			}),
		}
		if err := e.executions.WithTx(tx).Create(ctx, exec); err != nil {
			return fmt.Errorf("failed to record execution: %w", err)
		}

		ok, err := proposals.TransitionStatus(ctx, id, models.StatusApproved, models.StatusExecuted, map[string]interface{}{"scheduled_at": nil})
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState(id, "changed concurrently", string(models.StatusApproved))
		}

		result = &ExecutionResult{
			ProposalID:  id,
			ExecutionID: exec.ID,
			Status:      ExecutionSuccess,
			Category:    p.Category,
			Operations:  ops,
			Warnings:    warnings,
			ExecutedAt:  &executedAt,
		}
		return nil
	})
	if err != nil {
		if len(applied) == 0 {
			if errors.Is(err, apperror.ErrUnsupportedCategory) {
				e.notifyExecution(ctx, p.Title, false, err.Error())
			}
			return nil, err
		}
		// the platform changed but the transaction recording it did not commit
		applyErr = fmt.Errorf("platform changes applied but not recorded: %w", err)
		result = &ExecutionResult{
			ProposalID: id,
			Status:     ExecutionFailed,
			Category:   p.Category,
			Operations: applied,
			Warnings:   warnings,
			Error:      applyErr.Error(),
		}
	}

	log := logrus.WithFields(logrus.Fields{
		"proposal_id": id,
		"category":    result.Category,
		"operations":  len(result.Operations),
		"executor":    executor,
	})
	if applyErr != nil {
		log.WithError(applyErr).Error("Proposal execution failed")
		utils.CaptureError(applyErr, map[string]string{
			"proposal_id": id,
			"category":    string(result.Category),
			"platform":    e.gateway.GetPlatformName(),
		})
		e.notifyExecution(ctx, p.Title, false, fmt.Sprintf("%s\napplied before failure: %d operation(s)", result.Error, len(result.Operations)))
		return result, nil
	}

	e.recordFollowUps(ctx, p, result, baseline)

	log.Info("Proposal executed")
	e.notifyExecution(ctx, p.Title, true, describeOperations(result.Operations))
	return result, nil
}

// recordFollowUps stores the before snapshot and the result summary of a
// committed execution. Failures become warnings on the result.
func (e *Engine) recordFollowUps(ctx context.Context, p *models.Proposal, result *ExecutionResult, baseline *reporting.KPIReport) {
	warn := func(what string, err error) {
		logrus.WithError(err).WithField("proposal_id", p.ID).Errorf("Failed to record %s", what)
		utils.CaptureError(err, map[string]string{"proposal_id": p.ID, "step": what})
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s not recorded: %v", what, err))
	}

	switch {
	case e.tracker == nil:
	case baseline == nil:
		result.Warnings = append(result.Warnings, "no KPI figures available, before snapshot skipped")
	default:
		if _, err := e.tracker.SaveBeforeSnapshot(ctx, p.ID, baseline.KPI, baseline.Period, p.TargetCampaign); err != nil {
			warn("before snapshot", err)
		}
	}
	if err := e.results.Create(ctx, executionSummary(p.ID, result.Category, result.Operations, result.Warnings)); err != nil {
		warn("result summary", err)
	}
}

// Reject marks a proposal rejected from any status, keeping its action spec
// and recording the reason alongside it.
func (e *Engine) Reject(ctx context.Context, id, reason string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposals := e.proposals.WithTx(tx)
		p, err := proposals.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := e.now()
		spec := p.Spec()
		spec.RejectionReason = reason
		spec.RejectedAt = &now
		if err := proposals.UpdateSpec(ctx, id, spec, models.StatusRejected); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"proposal_id": id, "previous_status": p.Status}).Info("Proposal rejected")
		return nil
	})
}

// SafeguardCheck runs the safeguard rules without changing anything
func (e *Engine) SafeguardCheck(ctx context.Context, id string, overrides *models.Overrides) (*models.SafeguardCheckResponse, error) {
	p, err := e.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	warnings, err := e.safeguard.Validate(p, overrides)
	if err != nil {
		var se *apperror.SafeguardError
		if errors.As(err, &se) {
			return &models.SafeguardCheckResponse{Passed: false, Error: se.Reason}, nil
		}
		return nil, err
	}
	return &models.SafeguardCheckResponse{Passed: true, Warnings: warnings}, nil
}

// ExecuteDue executes approved proposals whose scheduled time has passed.
// They go through the approval path, so a safeguard block reverts them.
func (e *Engine) ExecuteDue(ctx context.Context) (*ScheduledRunResult, error) {
	due, err := e.proposals.ListDueScheduled(ctx, e.now())
	if err != nil {
		return nil, err
	}

	out := &ScheduledRunResult{Executed: []string{}, Failed: []string{}, Reverted: []string{}}
	for _, p := range due {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		executor := SchedulerActor
		if history := p.Spec().EditHistory; len(history) > 0 && history[len(history)-1].EditedBy != "" {
			executor = history[len(history)-1].EditedBy
		}

		res, err := e.executeApproved(ctx, p.ID, executor, nil)
		switch {
		case err == nil:
			out.Executed = append(out.Executed, p.ID)
		case res != nil && res.Status == models.StatusPending:
			out.Reverted = append(out.Reverted, p.ID)
		default:
			logrus.WithError(err).WithField("proposal_id", p.ID).Warn("Scheduled execution failed")
			out.Failed = append(out.Failed, p.ID)
		}
	}
	return out, nil
}

// ReportKPISource reads the KPI figures of one stored report
type ReportKPISource interface {
	ReportKPI(ctx context.Context, reportID string) (*reporting.KPIReport, error)
}

// captureBaseline reads the figures of the report the proposal came from,
// falling back to the latest report
func (e *Engine) captureBaseline(ctx context.Context, p *models.Proposal) *reporting.KPIReport {
	if e.kpi == nil {
		return nil
	}
	log := logrus.WithField("proposal_id", p.ID)
	if p.ReportID != nil && *p.ReportID != "" {
		if src, ok := e.kpi.(ReportKPISource); ok {
			report, err := src.ReportKPI(ctx, *p.ReportID)
			if err == nil {
				return report
			}
			log.WithError(err).WithField("report_id", *p.ReportID).Warn("Linked report unavailable, using latest KPI figures")
		}
	}
	report, err := e.kpi.LatestKPI(ctx)
	if err != nil {
		log.WithError(err).Warn("No KPI figures for before snapshot")
		return nil
	}
	return report
}

func (e *Engine) notifyExecution(ctx context.Context, title string, success bool, details string) {
	if err := e.notifier.SendExecutionResult(ctx, title, success, details); err != nil {
		logrus.WithError(err).WithField("title", title).Warn("Failed to send execution notification")
	}
}

func executionSummary(id string, category models.ProposalCategory, ops []models.OperationRecord, warnings []string) *models.Result {
	details, _ := json.Marshal(map[string]interface{}{
		"category":   category,
		"operations": ops,
		"warnings":   warnings,
	})
	return &models.Result{
		ProposalID: id,
		Summary:    fmt.Sprintf("Executed %d operation(s): %s", len(ops), describeOperations(ops)),
		Details:    datatypes.JSON(details),
	}
}

func describeOperations(ops []models.OperationRecord) string {
	if len(ops) == 0 {
		return "no changes"
	}
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op.Operation)
	}
	return strings.Join(names, ", ")
}
