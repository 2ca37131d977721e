package execution

import (
	"time"

	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

// ExecutionStatus is the outcome of an execution attempt
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

// ExecutionResult describes an execution attempt. When Status is failed,
// Operations holds the operations applied before the failing call.
type ExecutionResult struct {
	ProposalID  string                   `json:"proposal_id"`
	ExecutionID string                   `json:"execution_id,omitempty"`
	Status      ExecutionStatus          `json:"status"`
	Category    models.ProposalCategory  `json:"category"`
	Operations  []models.OperationRecord `json:"operations"`
	Warnings    []string                 `json:"warnings,omitempty"`
	ExecutedAt  *time.Time               `json:"executed_at,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// ApprovalResult describes the outcome of an approval
type ApprovalResult struct {
	ProposalID  string                `json:"proposal_id"`
	Status      models.ProposalStatus `json:"status"`
	ScheduledAt *time.Time            `json:"scheduled_at,omitempty"`
	Message     string                `json:"message,omitempty"`
	Execution   *ExecutionResult      `json:"execution,omitempty"`
}

// RollbackStatus is the overall outcome of a rollback
type RollbackStatus string

const (
	RollbackCompleted      RollbackStatus = "rolled_back"
	RollbackManualRequired RollbackStatus = "manual_action_required"
	RollbackFailed         RollbackStatus = "rollback_failed"
)

// RollbackResult describes a rollback. RollbackManualRequired is a success
// in which some operations still need a person to undo them.
type RollbackResult struct {
	ProposalID   string                   `json:"proposal_id"`
	Status       RollbackStatus           `json:"status"`
	Results      []models.RollbackOutcome `json:"results"`
	RolledBackAt *time.Time               `json:"rolled_back_at,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

// ManualActionRequired reports whether any operation must be undone by hand
func (r *RollbackResult) ManualActionRequired() bool {
	return r.Status == RollbackManualRequired
}

// ScheduledRunResult summarises one pass over due scheduled approvals
type ScheduledRunResult struct {
	Executed []string `json:"executed"`
	Failed   []string `json:"failed"`
	Reverted []string `json:"reverted"`
}
