package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Upsert creates a campaign or refreshes its name, status and budget
func (r *CampaignRepository) Upsert(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{"campaign_name", "status", "channel_type", "daily_budget", "updated_at"}),
	}).Create(campaign).Error
}

// GetAll retrieves all campaigns
func (r *CampaignRepository) GetAll(ctx context.Context) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).Order("campaign_name ASC").Find(&campaigns).Error
	return campaigns, err
}

// StatusByName returns campaign name to status for every known campaign
func (r *CampaignRepository) StatusByName(ctx context.Context) (map[string]models.CampaignStatus, error) {
	campaigns, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]models.CampaignStatus, len(campaigns))
	for _, c := range campaigns {
		statuses[c.CampaignName] = c.Status
	}
	return statuses, nil
}
