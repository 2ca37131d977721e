// Package lifecycle retires pending proposals whose target campaign is no
// longer running.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

// CampaignStatusSource supplies the current campaign name to status map
type CampaignStatusSource interface {
	CampaignStatuses(ctx context.Context) (map[string]models.CampaignStatus, error)
}

// SkippedProposal identifies a proposal retired by a sweep
type SkippedProposal struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	TargetCampaign string `json:"target_campaign"`
}

// CleanupResult reports what a sweep did, or would do under a dry run
type CleanupResult struct {
	SkippedCount int               `json:"skipped_count"`
	Skipped      []SkippedProposal `json:"skipped"`
	DryRun       bool              `json:"dry_run"`
}

// Sweeper marks stale pending proposals skipped
type Sweeper struct {
	proposals *repository.ProposalRepository
	campaigns CampaignStatusSource
}

// NewSweeper creates a sweeper
func NewSweeper(db *gorm.DB, campaigns CampaignStatusSource) *Sweeper {
	return &Sweeper{
		proposals: repository.NewProposalRepository(db),
		campaigns: campaigns,
	}
}

// CleanupInactiveProposals skips every pending proposal whose target campaign
// is not currently active. With dryRun nothing is written.
func (s *Sweeper) CleanupInactiveProposals(ctx context.Context, dryRun bool) (*CleanupResult, error) {
	candidates, err := s.proposals.ListPendingWithTargetCampaign(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending proposals: %w", err)
	}

	result := &CleanupResult{Skipped: []SkippedProposal{}, DryRun: dryRun}
	if len(candidates) == 0 {
		return result, nil
	}

	statuses, err := s.campaigns.CampaignStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign statuses: %w", err)
	}
	active := make(map[string]struct{}, len(statuses))
	for name, status := range statuses {
		if status == models.CampaignActive {
			active[name] = struct{}{}
		}
	}

	for _, p := range candidates {
		target := *p.TargetCampaign
		if target == "" {
			continue
		}
		if _, ok := active[target]; ok {
			continue
		}

		if !dryRun {
			ok, err := s.proposals.TransitionStatus(ctx, p.ID, models.StatusPending, models.StatusSkipped, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to skip proposal %s: %w", p.ID, err)
			}
			if !ok {
				// approved or rejected since it was listed
				continue
			}
		}
		result.Skipped = append(result.Skipped, SkippedProposal{ID: p.ID, Title: p.Title, TargetCampaign: target})
	}
	result.SkippedCount = len(result.Skipped)

	logrus.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"skipped":    result.SkippedCount,
		"dry_run":    dryRun,
	}).Info("Inactive proposal cleanup finished")
	return result, nil
}
