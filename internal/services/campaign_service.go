package services

import (
	"context"
	"fmt"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type CampaignService struct {
	campaignRepo *repository.CampaignRepository
}

func NewCampaignService(campaignRepo *repository.CampaignRepository) *CampaignService {
	return &CampaignService{campaignRepo: campaignRepo}
}

// SyncCampaigns upserts the pushed campaigns by platform campaign id
func (s *CampaignService) SyncCampaigns(ctx context.Context, req *models.CampaignSyncRequest) (*models.CampaignSyncResponse, error) {
	var violations []string
	for i, item := range req.Campaigns {
		switch item.Status {
		case models.CampaignActive, models.CampaignPaused, models.CampaignRemoved:
		default:
			violations = append(violations, fmt.Sprintf("campaign %d: unknown status %q", i+1, item.Status))
		}
	}
	if len(violations) > 0 {
		return nil, &apperror.ValidationError{Violations: violations}
	}

	for _, item := range req.Campaigns {
		campaign := &models.Campaign{
			CampaignRef:  item.CampaignRef,
			CampaignName: item.CampaignName,
			Status:       item.Status,
			ChannelType:  item.ChannelType,
			DailyBudget:  item.DailyBudget,
		}
		if err := s.campaignRepo.Upsert(ctx, campaign); err != nil {
			return nil, fmt.Errorf("failed to sync campaign %s: %w", item.CampaignRef, err)
		}
	}
	return &models.CampaignSyncResponse{Synced: len(req.Campaigns)}, nil
}

// GetCampaigns returns every synced campaign
func (s *CampaignService) GetCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.campaignRepo.GetAll(ctx)
}
