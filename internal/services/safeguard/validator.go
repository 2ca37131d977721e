// Package safeguard holds the pre-execution checks that gate automatic
// platform mutation.
package safeguard

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

var highRiskMarkers = []string{"pause", "delete", "remove"}

// warnRatio of the maximum budget change at which a warning is raised
var warnRatio = decimal.RequireFromString("0.8")

// Validator checks proposals against the configured safeguard limits
type Validator struct {
	cfg config.SafeguardConfig
}

// NewValidator creates a validator for the given limits
func NewValidator(cfg config.SafeguardConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate returns non-blocking warnings, or a *apperror.SafeguardError if
// the proposal must not be applied automatically. It has no side effects.
func (v *Validator) Validate(proposal *models.Proposal, overrides *models.Overrides) ([]string, error) {
	spec := proposal.Spec()
	var warnings []string

	if n := spec.ChangeCount(); n > v.cfg.MaxChangesPerApproval {
		return nil, &apperror.SafeguardError{
			Reason: fmt.Sprintf("too many changes in one approval: %d (max %d)", n, v.cfg.MaxChangesPerApproval),
		}
	}

	if proposal.Category == models.CategoryBudget {
		w, err := v.checkBudget(spec, overrides)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w...)
	}

	for i, step := range spec.Steps {
		desc := strings.ToLower(step.Description)
		for _, marker := range highRiskMarkers {
			if strings.Contains(desc, marker) {
				warnings = append(warnings, fmt.Sprintf("step %d contains a high-risk operation (%s): %s", i+1, marker, step.Description))
				break
			}
		}
	}

	return warnings, nil
}

func (v *Validator) checkBudget(spec models.ActionSpec, overrides *models.Overrides) ([]string, error) {
	current, target := spec.BudgetTarget()
	if overrides != nil {
		if overrides.CurrentValue != nil {
			current = overrides.CurrentValue
		}
		if overrides.NewValue != nil {
			target = overrides.NewValue
		}
	}
	if current == nil || target == nil || *current <= 0 {
		return nil, nil
	}

	cur := decimal.NewFromFloat(*current)
	changePct := decimal.NewFromFloat(*target).Sub(cur).Abs().Div(cur).Mul(decimal.NewFromInt(100))
	limit := decimal.NewFromFloat(v.cfg.MaxBudgetChangePct)

	if changePct.GreaterThan(limit) {
		return nil, &apperror.SafeguardError{
			Reason: fmt.Sprintf("budget change of %s%% exceeds the %s%% limit", changePct.StringFixed(1), limit.String()),
		}
	}
	if changePct.GreaterThan(limit.Mul(warnRatio)) {
		return []string{fmt.Sprintf("budget change of %s%% is close to the %s%% limit", changePct.StringFixed(1), limit.String())}, nil
	}
	return nil, nil
}
