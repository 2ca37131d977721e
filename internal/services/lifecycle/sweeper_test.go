package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/reporting"
	"github.com/onegreenvn/ads-proposal-backend/internal/testutil"
)

type staticStatuses map[string]models.CampaignStatus

func (s staticStatuses) CampaignStatuses(context.Context) (map[string]models.CampaignStatus, error) {
	return s, nil
}

type failingStatuses struct{}

func (failingStatuses) CampaignStatuses(context.Context) (map[string]models.CampaignStatus, error) {
	return nil, errors.New("reporting offline")
}

func seed(t *testing.T, repo *repository.ProposalRepository, title string, status models.ProposalStatus, target *string) *models.Proposal {
	t.Helper()
	p := &models.Proposal{Category: models.CategoryBudget, Title: title, Status: status, TargetCampaign: target}
	p.SetSpec(models.NewStepsSpec(models.ActionStep{Description: title}))
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestCleanupInactiveProposals(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewProposalRepository(db)

	live := seed(t, repo, "live", models.StatusPending, testutil.String("Brand"))
	paused := seed(t, repo, "paused", models.StatusPending, testutil.String("Summer Sale"))
	gone := seed(t, repo, "gone", models.StatusPending, testutil.String("Deleted Campaign"))
	untargeted := seed(t, repo, "untargeted", models.StatusPending, nil)
	approved := seed(t, repo, "approved", models.StatusApproved, testutil.String("Deleted Campaign"))

	sweeper := NewSweeper(db, staticStatuses{
		"Brand":       models.CampaignActive,
		"Summer Sale": models.CampaignPaused,
	})

	dry, err := sweeper.CleanupInactiveProposals(ctx, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 2, dry.SkippedCount)
	for _, p := range []*models.Proposal{live, paused, gone, untargeted} {
		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status, p.Title)
	}

	res, err := sweeper.CleanupInactiveProposals(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SkippedCount)
	ids := []string{res.Skipped[0].ID, res.Skipped[1].ID}
	assert.ElementsMatch(t, []string{paused.ID, gone.ID}, ids)

	expect := map[string]models.ProposalStatus{
		live.ID:       models.StatusPending,
		paused.ID:     models.StatusSkipped,
		gone.ID:       models.StatusSkipped,
		untargeted.ID: models.StatusPending,
		approved.ID:   models.StatusApproved,
	}
	for id, status := range expect {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	again, err := sweeper.CleanupInactiveProposals(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, again.SkippedCount)
}

func TestCleanupLeavesBlankTargetPending(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewProposalRepository(db)

	blank := seed(t, repo, "blank", models.StatusPending, testutil.String(""))
	gone := seed(t, repo, "gone", models.StatusPending, testutil.String("Deleted Campaign"))

	listed, err := repo.ListPendingWithTargetCampaign(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, gone.ID, listed[0].ID)

	res, err := NewSweeper(db, staticStatuses{"Brand": models.CampaignActive}).CleanupInactiveProposals(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, gone.ID, res.Skipped[0].ID)

	got, err := repo.GetByID(ctx, blank.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestCleanupUsesStoredCampaigns(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewProposalRepository(db)
	campaigns := repository.NewCampaignRepository(db)

	require.NoError(t, campaigns.Upsert(ctx, &models.Campaign{CampaignRef: "1", CampaignName: "Brand", Status: models.CampaignActive}))
	require.NoError(t, campaigns.Upsert(ctx, &models.Campaign{CampaignRef: "2", CampaignName: "Old", Status: models.CampaignRemoved}))
	old := seed(t, repo, "old", models.StatusPending, testutil.String("Old"))
	seed(t, repo, "brand", models.StatusPending, testutil.String("Brand"))

	source := reporting.NewService(repository.NewWeeklyReportRepository(db), campaigns)
	res, err := NewSweeper(db, source).CleanupInactiveProposals(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, old.ID, res.Skipped[0].ID)
	assert.Equal(t, "Old", res.Skipped[0].TargetCampaign)
}

func TestCleanupReportsSourceFailure(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProposalRepository(db)
	p := seed(t, repo, "any", models.StatusPending, testutil.String("Brand"))

	_, err := NewSweeper(db, failingStatuses{}).CleanupInactiveProposals(context.Background(), false)
	require.Error(t, err)

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}
