package execution

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/service_platform"
	"github.com/onegreenvn/ads-proposal-backend/internal/utils"
)

// Rollback undoes the active execution of a proposal within the rollback
// window and puts the proposal back to pending. Operations that cannot be
// inverted automatically are reported as manual_required; a gateway error
// leaves the execution and the proposal untouched.
func (e *Engine) Rollback(ctx context.Context, id, reason string) (*RollbackResult, error) {
	var (
		result *RollbackResult
		title  string
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposals := e.proposals.WithTx(tx)
		executions := e.executions.WithTx(tx)

		p, err := proposals.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		title = p.Title

		exec, err := executions.GetActiveByProposalID(ctx, id)
		if err != nil {
			return err
		}

		now := e.now()
		deadline := exec.ExecutedAt.Add(e.cfg.RollbackWindow())
		if now.After(deadline) {
			return fmt.Errorf("%w: proposal %s was executed at %s, window closed at %s",
				apperror.ErrRollbackExpired, id, exec.ExecutedAt.UTC().Format(time.RFC3339), deadline.UTC().Format(time.RFC3339))
		}

		changes := exec.Changes()
		outcomes, err := e.invert(ctx, changes.Operations)
		if err != nil {
			result = &RollbackResult{ProposalID: id, Status: RollbackFailed, Results: outcomes, Error: err.Error()}
			return nil
		}

		changes.Rollback = &models.RollbackRecord{
			RolledBack: true,
			At:         now,
			Reason:     reason,
			Results:    outcomes,
		}
		exec.ActualChanges = datatypes.NewJSONType(changes)
		exec.RolledBackAt = &now
		exec.Notes = appendNote(exec.Notes, fmt.Sprintf("[ROLLBACK] %s - %s", now.Format(time.RFC3339), reason))
		if err := executions.Update(ctx, exec); err != nil {
			return fmt.Errorf("failed to record rollback: %w", err)
		}
		if err := proposals.SetStatus(ctx, id, models.StatusPending); err != nil {
			return err
		}

		status := RollbackCompleted
		for _, o := range outcomes {
			if o.Status == models.RollbackStepManualRequired {
				status = RollbackManualRequired
				break
			}
		}
		result = &RollbackResult{ProposalID: id, Status: status, Results: outcomes, RolledBackAt: &now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{"proposal_id": id, "status": result.Status, "operations": len(result.Results)})
	if result.Status == RollbackFailed {
		log.WithField("error", result.Error).Error("Rollback failed")
		utils.CaptureError(fmt.Errorf("rollback of proposal %s: %s", id, result.Error), map[string]string{
			"proposal_id": id,
			"platform":    e.gateway.GetPlatformName(),
		})
		return result, nil
	}

	log.Info("Proposal rolled back")
	if err := e.notifier.SendRollbackNotification(ctx, title, reason); err != nil {
		logrus.WithError(err).WithField("proposal_id", id).Warn("Failed to send rollback notification")
	}
	return result, nil
}

// invert undoes ops in their original order. It stops at the first gateway
// error and returns the outcomes so far, including the failed one.
func (e *Engine) invert(ctx context.Context, ops []models.OperationRecord) ([]models.RollbackOutcome, error) {
	outcomes := make([]models.RollbackOutcome, 0, len(ops))
	for _, op := range ops {
		outcome := e.invertOne(ctx, op)
		outcomes = append(outcomes, outcome)
		if outcome.Status == models.RollbackStepFailed {
			return outcomes, fmt.Errorf("%s: %s", op.Operation, outcome.Error)
		}
	}
	return outcomes, nil
}

func (e *Engine) invertOne(ctx context.Context, op models.OperationRecord) models.RollbackOutcome {
	reversibility := e.gateway.Reversibility(op.Operation)
	outcome := models.RollbackOutcome{Operation: op.Operation, Reversibility: string(reversibility)}

	var (
		inverse *models.OperationRecord
		err     error
	)
	switch reversibility {
	case service_platform.Reversible:
		if op.Operation == models.OpPauseAd {
			inverse, err = e.gateway.EnableAd(ctx, op.AdGroupRef, op.AdRef)
			break
		}
		if op.PreviousValue == nil {
			outcome.Status = models.RollbackStepManualRequired
			outcome.Message = "previous value was not recorded; restore it by hand"
			outcome.ResourceNames = resourceNames(op)
			return outcome
		}
		inverse, err = e.restoreValue(ctx, op)
	case service_platform.BestEffort:
		if op.Operation != models.OpCreateResponsiveSearchAd || op.AdRef == "" {
			outcome.Status = models.RollbackStepManualRequired
			outcome.Message = "no automatic inverse is known for this operation"
			outcome.ResourceNames = resourceNames(op)
			return outcome
		}
		inverse, err = e.gateway.PauseAd(ctx, op.AdGroupRef, op.AdRef)
		if err == nil {
			outcome.Message = "created ad was paused, not removed"
		}
	case service_platform.ManualOnly:
		outcome.Status = models.RollbackStepManualRequired
		outcome.Message = "remove the created resources by hand"
		outcome.ResourceNames = resourceNames(op)
		return outcome
	default:
		outcome.Status = models.RollbackStepCompleted
		outcome.Message = "no inverse recorded"
		return outcome
	}

	if err != nil {
		outcome.Status = models.RollbackStepFailed
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Status = models.RollbackStepReverted
	outcome.Inverse = inverse
	return outcome
}

func (e *Engine) restoreValue(ctx context.Context, op models.OperationRecord) (*models.OperationRecord, error) {
	prev := *op.PreviousValue
	switch op.Operation {
	case models.OpUpdateBudget:
		return e.gateway.UpdateBudget(ctx, op.CampaignRef, int64(math.Round(prev)))
	case models.OpUpdateTargetCPA:
		return e.gateway.UpdateTargetCPA(ctx, op.CampaignRef, int64(math.Round(prev)))
	case models.OpUpdateTargetROAS:
		return e.gateway.UpdateTargetROAS(ctx, op.CampaignRef, prev)
	default:
		return nil, fmt.Errorf("no value restore for %s", op.Operation)
	}
}

func resourceNames(op models.OperationRecord) []string {
	if len(op.ResourceNames) > 0 {
		return op.ResourceNames
	}
	if op.ResourceName != "" {
		return []string{op.ResourceName}
	}
	return nil
}

func appendNote(notes, line string) string {
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}
