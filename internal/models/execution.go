package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OperationType tags a single platform mutation
type OperationType string

const (
	OpUpdateBudget             OperationType = "update_budget"
	OpUpdateTargetCPA          OperationType = "update_target_cpa"
	OpUpdateTargetROAS         OperationType = "update_target_roas"
	OpAddNegativeKeywords      OperationType = "add_negative_keywords"
	OpAddKeywords              OperationType = "add_keywords"
	OpPauseKeyword             OperationType = "pause_keyword"
	OpUpdateDeviceBidModifier  OperationType = "update_device_bid_modifier"
	OpCreateResponsiveSearchAd OperationType = "create_responsive_search_ad"
	OpPauseAd                  OperationType = "pause_ad"
	OpEnableAd                 OperationType = "enable_ad"
)

// OperationRecord is what the gateway reports for one applied mutation.
// It carries enough to invert the change.
type OperationRecord struct {
	Operation     OperationType `json:"operation"`
	CampaignRef   string        `json:"campaign_id,omitempty"`
	AdGroupRef    string        `json:"ad_group_id,omitempty"`
	AdRef         string        `json:"ad_id,omitempty"`
	CriterionRef  string        `json:"criterion_id,omitempty"`
	Device        string        `json:"device,omitempty"`
	Keywords      []string      `json:"keywords,omitempty"`
	MatchType     string        `json:"match_type,omitempty"`
	ResourceName  string        `json:"resource_name,omitempty"`
	ResourceNames []string      `json:"resource_names,omitempty"`
	PreviousValue *float64      `json:"previous_value,omitempty"`
	NewValue      *float64      `json:"new_value,omitempty"`
}

// ActualChanges is the audit record stored on an Execution
type ActualChanges struct {
	Category   ProposalCategory  `json:"category"`
	Operations []OperationRecord `json:"operations"`
	ExecutedAt time.Time         `json:"executed_at"`
	Warnings   []string          `json:"warnings,omitempty"`
	Rollback   *RollbackRecord   `json:"rollback,omitempty"`
}

// RollbackStepStatus is the outcome of inverting one operation
type RollbackStepStatus string

const (
	RollbackStepReverted       RollbackStepStatus = "reverted"
	RollbackStepManualRequired RollbackStepStatus = "manual_required"
	RollbackStepCompleted      RollbackStepStatus = "completed"
	RollbackStepFailed         RollbackStepStatus = "failed"
)

// RollbackOutcome records how one operation was inverted
type RollbackOutcome struct {
	Operation     OperationType      `json:"operation"`
	Reversibility string             `json:"reversibility"`
	Status        RollbackStepStatus `json:"status"`
	Message       string             `json:"message,omitempty"`
	ResourceNames []string           `json:"resource_names,omitempty"`
	Inverse       *OperationRecord   `json:"inverse,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// RollbackRecord is appended to ActualChanges when an execution is rolled back
type RollbackRecord struct {
	RolledBack bool              `json:"rolled_back"`
	At         time.Time         `json:"rollback_at"`
	Reason     string            `json:"rollback_reason"`
	Results    []RollbackOutcome `json:"rollback_results"`
}

// Execution records what was mutated when a proposal was carried out
type Execution struct {
	ID            string                            `json:"id" gorm:"primaryKey;type:uuid"`
	ProposalID    string                            `json:"proposal_id" gorm:"type:uuid;not null;index"`
	ExecutedAt    time.Time                         `json:"executed_at" gorm:"not null"`
	ExecutedBy    string                            `json:"executed_by" gorm:"type:varchar(255)"`
	ActualChanges datatypes.JSONType[ActualChanges] `json:"actual_changes" gorm:"not null" swaggertype:"object"`
	Notes         string                            `json:"notes" gorm:"type:text"`
	RolledBackAt  *time.Time                        `json:"rolled_back_at,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Execution model
func (Execution) TableName() string {
	return "proposal_executions"
}

// BeforeCreate assigns an ID when the caller did not
func (e *Execution) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Changes returns the decoded actual changes
func (e *Execution) Changes() ActualChanges {
	return e.ActualChanges.Data()
}
