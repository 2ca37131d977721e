package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Result is a readable summary of what a proposal achieved
type Result struct {
	ID         string         `json:"id" gorm:"primaryKey;type:uuid"`
	ProposalID string         `json:"proposal_id" gorm:"type:uuid;not null;index"`
	Summary    string         `json:"summary" gorm:"type:text"`
	Details    datatypes.JSON `json:"details,omitempty" swaggertype:"object"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName specifies the table name for the Result model
func (Result) TableName() string {
	return "proposal_results"
}

// BeforeCreate assigns an ID when the caller did not
func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
