package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProposalCategory selects the execution handler and the action-spec shape
type ProposalCategory string

const (
	CategoryKeyword             ProposalCategory = "keyword"
	CategoryBudget              ProposalCategory = "budget"
	CategoryBidding             ProposalCategory = "bidding"
	CategoryTargeting           ProposalCategory = "targeting"
	CategoryAdCopy              ProposalCategory = "ad_copy"
	CategoryCreative            ProposalCategory = "creative" // legacy alias of ad_copy
	CategoryManualCreative      ProposalCategory = "manual_creative"
	CategoryCompetitiveResponse ProposalCategory = "competitive_response"
)

// ProposalStatus is a node of the proposal lifecycle
type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusApproved ProposalStatus = "approved"
	StatusExecuted ProposalStatus = "executed"
	StatusRejected ProposalStatus = "rejected"
	StatusSkipped  ProposalStatus = "skipped"
)

// Terminal reports whether no further transition is allowed from s
// (rollback and reject are the only ways out of executed).
func (s ProposalStatus) Terminal() bool {
	return s == StatusExecuted || s == StatusRejected || s == StatusSkipped
}

// Priority of a proposal as assigned by the analysis stage
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Proposal is a single proposed change against a campaign
type Proposal struct {
	ID             string                         `json:"id" gorm:"primaryKey;type:uuid"`
	ReportID       *string                        `json:"report_id,omitempty" gorm:"type:uuid;index"`
	Category       ProposalCategory               `json:"category" gorm:"type:varchar(50);not null;index"`
	Priority       Priority                       `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"`
	Title          string                         `json:"title" gorm:"type:varchar(500);not null"`
	Description    string                         `json:"description" gorm:"type:text"`
	ExpectedEffect string                         `json:"expected_effect" gorm:"type:text"`
	ActionSpec     datatypes.JSONType[ActionSpec] `json:"action_steps" gorm:"column:action_steps;not null" swaggertype:"object"`
	TargetCampaign *string                        `json:"target_campaign,omitempty" gorm:"type:varchar(255);index"`
	TargetAdGroup  *string                        `json:"target_ad_group,omitempty" gorm:"type:varchar(255)"`
	Status         ProposalStatus                 `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ScheduledAt    *time.Time                     `json:"scheduled_at,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Proposal model
func (Proposal) TableName() string {
	return "improvement_proposals"
}

// BeforeCreate assigns an ID when the caller did not
func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}

// Spec returns the decoded action specification
func (p *Proposal) Spec() ActionSpec {
	return p.ActionSpec.Data()
}

// SetSpec replaces the action specification
func (p *Proposal) SetSpec(spec ActionSpec) {
	p.ActionSpec = datatypes.NewJSONType(spec)
}

// CreateProposalRequest is the orchestrator intake payload for a generated proposal
type CreateProposalRequest struct {
	ReportID       *string          `json:"report_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Category       ProposalCategory `json:"category" binding:"required" example:"budget"`
	Priority       Priority         `json:"priority" example:"high"`
	Title          string           `json:"title" binding:"required" example:"Raise daily budget for brand search"`
	Description    string           `json:"description" example:"Brand campaign is limited by budget on weekdays"`
	ExpectedEffect string           `json:"expected_effect" example:"+12% conversions"`
	ActionSpec     ActionSpec       `json:"action_steps" swaggertype:"object"`
	TargetCampaign *string          `json:"target_campaign" example:"Brand - Search"`
	TargetAdGroup  *string          `json:"target_ad_group"`
}

// ApproveProposalRequest represents the body of an approval
type ApproveProposalRequest struct {
	EditedValues *Overrides `json:"edited_values"`
	EditReason   string     `json:"edit_reason" example:"Lowered the increase after review"`
	ScheduleAt   *time.Time `json:"schedule_at" example:"2026-10-20T07:00:00Z"`
}

// RejectProposalRequest represents the body of a rejection
type RejectProposalRequest struct {
	Reason string `json:"reason" example:"Campaign is being restructured"`
}

// ExecuteProposalRequest represents the body of a direct execution
type ExecuteProposalRequest struct {
	EditedValues *Overrides `json:"edited_values"`
}

// RollbackProposalRequest represents the body of a rollback
type RollbackProposalRequest struct {
	Reason string `json:"reason" binding:"required" example:"CPA doubled after the change"`
}

// SafeguardCheckRequest represents a dry safeguard evaluation
type SafeguardCheckRequest struct {
	EditedValues *Overrides `json:"edited_values"`
}

// SafeguardCheckResponse is the outcome of a dry safeguard evaluation
type SafeguardCheckResponse struct {
	Passed   bool     `json:"passed"`
	Warnings []string `json:"warnings"`
	Error    string   `json:"error,omitempty"`
}

// ProposalListResponse is a paginated proposal listing
type ProposalListResponse struct {
	Proposals  []Proposal `json:"proposals"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
