package safeguard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/testutil"
)

func defaultValidator() *Validator {
	return NewValidator(config.SafeguardConfig{MaxChangesPerApproval: 10, MaxBudgetChangePct: 20.0, RollbackWindowHours: 24})
}

func budgetProposal() *models.Proposal {
	p := &models.Proposal{Category: models.CategoryBudget}
	p.SetSpec(models.NewStepsSpec(models.ActionStep{Description: "Raise daily budget", CampaignRef: "111"}))
	return p
}

func TestBudgetChangeBoundary(t *testing.T) {
	v := defaultValidator()

	warnings, err := v.Validate(budgetProposal(), &models.Overrides{
		CurrentValue: testutil.Float(100000), NewValue: testutil.Float(120000),
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "close to the 20% limit")

	_, err = v.Validate(budgetProposal(), &models.Overrides{
		CurrentValue: testutil.Float(100000), NewValue: testutil.Float(120001),
	})
	var se *apperror.SafeguardError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Reason, "exceeds the 20% limit")
}

func TestBudgetDecreaseCountsAsChange(t *testing.T) {
	_, err := defaultValidator().Validate(budgetProposal(), &models.Overrides{
		CurrentValue: testutil.Float(100000), NewValue: testutil.Float(70000),
	})
	assert.True(t, apperror.IsSafeguard(err))
}

func TestBudgetSmallChangeHasNoWarning(t *testing.T) {
	warnings, err := defaultValidator().Validate(budgetProposal(), &models.Overrides{
		CurrentValue: testutil.Float(100000), NewValue: testutil.Float(110000),
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestBudgetValuesFromSteps(t *testing.T) {
	p := &models.Proposal{Category: models.CategoryBudget}
	p.SetSpec(models.NewStepsSpec(models.ActionStep{
		Description:  "Increase budget",
		CurrentValue: testutil.Float(5000),
		NewValue:     testutil.Float(9000),
	}))
	_, err := defaultValidator().Validate(p, nil)
	assert.True(t, apperror.IsSafeguard(err))
}

func TestBudgetUnknownCurrentIsSkipped(t *testing.T) {
	warnings, err := defaultValidator().Validate(budgetProposal(), &models.Overrides{NewValue: testutil.Float(999999)})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	_, err = defaultValidator().Validate(budgetProposal(), &models.Overrides{
		CurrentValue: testutil.Float(0), NewValue: testutil.Float(1000),
	})
	require.NoError(t, err)
}

func TestBudgetCheckOnlyForBudgetCategory(t *testing.T) {
	p := budgetProposal()
	p.Category = models.CategoryBidding
	_, err := defaultValidator().Validate(p, &models.Overrides{
		CurrentValue: testutil.Float(100), NewValue: testutil.Float(500),
	})
	require.NoError(t, err)
}

func TestMaxChangesPerApproval(t *testing.T) {
	steps := make([]models.ActionStep, 11)
	for i := range steps {
		steps[i] = models.ActionStep{Order: i + 1, Description: fmt.Sprintf("step %d", i+1)}
	}
	p := &models.Proposal{Category: models.CategoryKeyword}

	p.SetSpec(models.NewStepsSpec(steps[:10]...))
	_, err := defaultValidator().Validate(p, nil)
	require.NoError(t, err)

	p.SetSpec(models.NewStepsSpec(steps...))
	_, err = defaultValidator().Validate(p, nil)
	assert.True(t, apperror.IsSafeguard(err))
}

func TestHighRiskMarkersOnlyWarn(t *testing.T) {
	p := &models.Proposal{Category: models.CategoryKeyword}
	p.SetSpec(models.NewStepsSpec(
		models.ActionStep{Description: "Pause the broad match keyword"},
		models.ActionStep{Description: "Remove and delete duplicate keyword"},
		models.ActionStep{Description: "Add negative keyword"},
	))

	warnings, err := defaultValidator().Validate(p, nil)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
}

func TestValidateIsRepeatable(t *testing.T) {
	v := defaultValidator()
	p := budgetProposal()
	o := &models.Overrides{CurrentValue: testutil.Float(100000), NewValue: testutil.Float(118000)}

	first, err := v.Validate(p, o)
	require.NoError(t, err)
	second, err := v.Validate(p, o)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.Spec().ChangeCount())
}
