package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

func (fx *fixture) executed(t *testing.T, p *models.Proposal, overrides *models.Overrides) {
	t.Helper()
	res, err := fx.engine.Execute(context.Background(), p.ID, "reviewer-1", overrides)
	require.NoError(t, err)
	require.Equal(t, ExecutionSuccess, res.Status)
}

func TestRollbackAtDeadlineRestoresBudget(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.budgetProposal(t, models.StatusApproved)
	fx.executed(t, p, nil)
	executedAt := fx.now

	fx.now = executedAt.Add(24 * time.Hour)
	res, err := fx.engine.Rollback(ctx, p.ID, "CPA spiked overnight")
	require.NoError(t, err)
	assert.Equal(t, RollbackCompleted, res.Status)
	assert.False(t, res.ManualActionRequired())
	require.Len(t, res.Results, 1)
	assert.Equal(t, models.RollbackStepReverted, res.Results[0].Status)

	budget, _ := fx.gw.Budget("111")
	assert.Equal(t, int64(100000*micros), budget)
	assert.Equal(t, models.StatusPending, fx.reload(t, p.ID).Status)

	execs := fx.executions(t, p.ID)
	require.Len(t, execs, 1)
	require.NotNil(t, execs[0].RolledBackAt)
	assert.True(t, execs[0].RolledBackAt.Equal(fx.now))
	assert.Contains(t, execs[0].Notes, "[ROLLBACK] 2026-10-19T09:00:00Z - CPA spiked overnight")

	changes := execs[0].Changes()
	require.Len(t, changes.Operations, 1, "original audit trail is kept")
	require.NotNil(t, changes.Rollback)
	assert.True(t, changes.Rollback.RolledBack)
	assert.Equal(t, "CPA spiked overnight", changes.Rollback.Reason)
	assert.Len(t, changes.Rollback.Results, 1)

	assert.Equal(t, []string{"CPA spiked overnight"}, fx.notifier.rollbacks)
}

func TestRollbackRestoresTargetCPA(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.gw.SeedTargetCPA("111", 40*micros)

	p := &models.Proposal{Category: models.CategoryBidding, Title: "Loosen CPA target", Status: models.StatusApproved}
	p.SetSpec(models.NewStepsSpec(models.ActionStep{Description: "Raise target CPA", CampaignRef: "111"}))
	fx.create(t, p)
	fx.executed(t, p, &models.Overrides{TargetCPA: f(45.5)})

	cpa, _ := fx.gw.TargetCPA("111")
	assert.Equal(t, int64(45_500_000), cpa)

	fx.now = fx.now.Add(2 * time.Hour)
	res, err := fx.engine.Rollback(ctx, p.ID, "conversions dropped")
	require.NoError(t, err)
	assert.Equal(t, RollbackCompleted, res.Status)
	require.Len(t, res.Results, 1)
	assert.Equal(t, models.OpUpdateTargetCPA, res.Results[0].Operation)
	assert.Equal(t, models.RollbackStepReverted, res.Results[0].Status)
	require.NotNil(t, res.Results[0].Inverse)
	assert.Equal(t, 40.0*micros, *res.Results[0].Inverse.NewValue)

	cpa, _ = fx.gw.TargetCPA("111")
	assert.Equal(t, int64(40*micros), cpa)
	assert.Equal(t, models.StatusPending, fx.reload(t, p.ID).Status)
}

func TestRollbackAfterDeadlineExpires(t *testing.T) {
	fx := newFixture(t)
	p := fx.budgetProposal(t, models.StatusApproved)
	fx.executed(t, p, nil)

	fx.now = fx.now.Add(24*time.Hour + time.Second)
	_, err := fx.engine.Rollback(context.Background(), p.ID, "too late")
	require.ErrorIs(t, err, apperror.ErrRollbackExpired)

	budget, _ := fx.gw.Budget("111")
	assert.Equal(t, int64(110000*micros), budget)
	assert.Equal(t, models.StatusExecuted, fx.reload(t, p.ID).Status)
	assert.Nil(t, fx.executions(t, p.ID)[0].RolledBackAt)
}

func TestRollbackWithoutExecution(t *testing.T) {
	fx := newFixture(t)
	p := fx.budgetProposal(t, models.StatusApproved)

	_, err := fx.engine.Rollback(context.Background(), p.ID, "nothing to undo")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRollbackNegativeKeywordsNeedsManualAction(t *testing.T) {
	fx := newFixture(t)
	p := &models.Proposal{Category: models.CategoryKeyword, Title: "Block junk queries", Status: models.StatusApproved}
	p.SetSpec(models.NewStepsSpec(models.ActionStep{Description: "Add negatives", CampaignRef: "111"}))
	fx.create(t, p)
	fx.executed(t, p, &models.Overrides{NegativeKeywords: []string{"free", "jobs"}, MatchType: "phrase"})

	res, err := fx.engine.Rollback(context.Background(), p.ID, "blocked too much traffic")
	require.NoError(t, err)
	assert.Equal(t, RollbackManualRequired, res.Status)
	assert.True(t, res.ManualActionRequired())
	require.Len(t, res.Results, 1)
	assert.Equal(t, models.RollbackStepManualRequired, res.Results[0].Status)
	assert.Len(t, res.Results[0].ResourceNames, 2)

	assert.Equal(t, []string{"free", "jobs"}, fx.gw.NegativeKeywords("111"))
	assert.Equal(t, models.StatusPending, fx.reload(t, p.ID).Status)
}

func TestRollbackAdCopyReenablesOldAd(t *testing.T) {
	fx := newFixture(t)
	p := fx.adCopyProposal(t, models.StatusApproved, validHeadlines)
	fx.executed(t, p, nil)
	require.Equal(t, "PAUSED", fx.gw.AdStatus("333"))

	res, err := fx.engine.Rollback(context.Background(), p.ID, "new copy underperforms")
	require.NoError(t, err)
	assert.Equal(t, RollbackCompleted, res.Status)
	require.Len(t, res.Results, 2)
	assert.Equal(t, models.OpPauseAd, res.Results[0].Operation)
	assert.Equal(t, models.OpCreateResponsiveSearchAd, res.Results[1].Operation)

	assert.Equal(t, "ENABLED", fx.gw.AdStatus("333"))
	calls := fx.gw.Calls()
	assert.Equal(t, []models.OperationType{models.OpEnableAd, models.OpPauseAd}, calls[len(calls)-2:])
}

func TestRollbackUntrackedOperationIsCompleted(t *testing.T) {
	fx := newFixture(t)
	p := &models.Proposal{Category: models.CategoryTargeting, Title: "Mobile bids", Status: models.StatusApproved}
	p.SetSpec(models.NewStepsSpec(models.ActionStep{Description: "Raise mobile bids", CampaignRef: "111"}))
	fx.create(t, p)
	fx.executed(t, p, &models.Overrides{DeviceModifiers: map[string]float64{"mobile": 1.3}})

	res, err := fx.engine.Rollback(context.Background(), p.ID, "revert")
	require.NoError(t, err)
	assert.Equal(t, RollbackCompleted, res.Status)
	require.Len(t, res.Results, 1)
	assert.Equal(t, models.RollbackStepCompleted, res.Results[0].Status)
}

func TestRollbackGatewayFailureKeepsState(t *testing.T) {
	fx := newFixture(t)
	p := fx.budgetProposal(t, models.StatusApproved)
	fx.executed(t, p, nil)
	fx.gw.FailOn(models.OpUpdateBudget, errors.New("platform unavailable"))

	res, err := fx.engine.Rollback(context.Background(), p.ID, "revert")
	require.NoError(t, err)
	assert.Equal(t, RollbackFailed, res.Status)
	assert.Contains(t, res.Error, "platform unavailable")

	assert.Equal(t, models.StatusExecuted, fx.reload(t, p.ID).Status)
	assert.Nil(t, fx.executions(t, p.ID)[0].RolledBackAt)
	assert.Empty(t, fx.notifier.rollbacks)
}

func TestReexecuteAfterRollbackCreatesNewExecution(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.budgetProposal(t, models.StatusApproved)
	fx.executed(t, p, nil)

	fx.now = fx.now.Add(time.Hour)
	_, err := fx.engine.Rollback(ctx, p.ID, "wrong week")
	require.NoError(t, err)

	fx.now = fx.now.Add(time.Hour)
	res, err := fx.engine.Approve(ctx, p.ID, ApproveInput{Editor: "reviewer-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, res.Status)

	execs := fx.executions(t, p.ID)
	require.Len(t, execs, 2)
	assert.NotNil(t, execs[0].RolledBackAt)
	assert.Nil(t, execs[1].RolledBackAt)

	fx.now = fx.now.Add(time.Hour)
	rb, err := fx.engine.Rollback(ctx, p.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, RollbackCompleted, rb.Status)
	assert.Len(t, fx.executions(t, p.ID), 2)
}
