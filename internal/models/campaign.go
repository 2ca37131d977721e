package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus mirrors the platform serving status of a campaign
type CampaignStatus string

const (
	CampaignActive  CampaignStatus = "active"
	CampaignPaused  CampaignStatus = "paused"
	CampaignRemoved CampaignStatus = "removed"
)

// Campaign is the locally synced view of an advertising campaign
type Campaign struct {
	ID           string         `json:"id" gorm:"primaryKey;type:uuid"`
	CampaignRef  string         `json:"campaign_id" gorm:"type:varchar(50);uniqueIndex;not null"` // platform campaign id
	CampaignName string         `json:"campaign_name" gorm:"type:varchar(255);not null;index"`
	Status       CampaignStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	ChannelType  string         `json:"channel_type" gorm:"type:varchar(50)"` // SEARCH, DISPLAY, PERFORMANCE_MAX, ...
	DailyBudget  *float64       `json:"daily_budget,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate assigns an ID when the caller did not
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CampaignSyncItem is one campaign pushed by the orchestrator
type CampaignSyncItem struct {
	CampaignRef  string         `json:"campaign_id" binding:"required" example:"1234567890"`
	CampaignName string         `json:"campaign_name" binding:"required" example:"Brand - Search"`
	Status       CampaignStatus `json:"status" binding:"required" example:"active"`
	ChannelType  string         `json:"channel_type" example:"SEARCH"`
	DailyBudget  *float64       `json:"daily_budget" example:"50000"`
}

// CampaignSyncRequest replaces the local view of the listed campaigns
type CampaignSyncRequest struct {
	Campaigns []CampaignSyncItem `json:"campaigns" binding:"required,dive"`
}

// CampaignSyncResponse reports a campaign sync
type CampaignSyncResponse struct {
	Synced int `json:"synced"`
}
