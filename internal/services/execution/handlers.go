package execution

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/adcopy"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/service_platform"
)

const defaultMatchType = "EXACT"

var microsPerUnit = decimal.NewFromInt(1_000_000)

// mutationStep is one gateway call of a plan
type mutationStep struct {
	op  models.OperationType
	run func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error)
}

// mutationPlan is the ordered list of gateway calls a handler resolved,
// with any warnings found while resolving it.
type mutationPlan struct {
	steps    []mutationStep
	warnings []string
}

func (p *mutationPlan) add(op models.OperationType, run func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error)) {
	p.steps = append(p.steps, mutationStep{op: op, run: run})
}

// apply runs the steps in order and stops at the first failure, returning
// the records of the steps that did succeed.
func (p mutationPlan) apply(ctx context.Context, gw service_platform.MutationGateway) ([]models.OperationRecord, error) {
	ops := make([]models.OperationRecord, 0, len(p.steps))
	for _, step := range p.steps {
		rec, err := step.run(ctx, gw)
		if err != nil {
			return ops, fmt.Errorf("%s: %w", step.op, err)
		}
		if rec.Operation == "" {
			rec.Operation = step.op
		}
		ops = append(ops, *rec)
	}
	return ops, nil
}

// categoryHandler resolves a proposal into a plan without side effects
type categoryHandler interface {
	plan(p *models.Proposal, o *models.Overrides) (mutationPlan, error)
}

func handlerFor(category models.ProposalCategory) categoryHandler {
	switch category {
	case models.CategoryBudget:
		return budgetHandler{}
	case models.CategoryBidding:
		return biddingHandler{}
	case models.CategoryKeyword:
		return keywordHandler{}
	case models.CategoryAdCopy, models.CategoryCreative:
		return adCopyHandler{}
	case models.CategoryTargeting:
		return targetingHandler{}
	case models.CategoryManualCreative:
		return unsupportedHandler{category: category, manual: true}
	default:
		return unsupportedHandler{category: category}
	}
}

func toMicros(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(microsPerUnit).Round(0).IntPart()
}

func campaignRef(p *models.Proposal, o *models.Overrides) (string, error) {
	if o != nil && o.CampaignRef != "" {
		return o.CampaignRef, nil
	}
	if ref := p.Spec().CampaignRef(); ref != "" {
		return ref, nil
	}
	return "", apperror.NotFound("target campaign reference for proposal", p.ID)
}

func adGroupRef(p *models.Proposal, o *models.Overrides) string {
	if o != nil && o.AdGroupRef != "" {
		return o.AdGroupRef
	}
	if p.TargetAdGroup != nil {
		return *p.TargetAdGroup
	}
	return ""
}

type budgetHandler struct{}

func (budgetHandler) plan(p *models.Proposal, o *models.Overrides) (mutationPlan, error) {
	var plan mutationPlan
	campaign, err := campaignRef(p, o)
	if err != nil {
		return plan, err
	}

	_, amount := p.Spec().BudgetTarget()
	if o != nil && o.NewValue != nil {
		amount = o.NewValue
	}
	if amount == nil {
		plan.warnings = append(plan.warnings, "no new budget amount found; nothing to apply")
		return plan, nil
	}
	if *amount <= 0 {
		return plan, &apperror.ValidationError{Violations: []string{fmt.Sprintf("budget amount must be positive (got %v)", *amount)}}
	}

	micros := toMicros(*amount)
	plan.add(models.OpUpdateBudget, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
		return gw.UpdateBudget(ctx, campaign, micros)
	})
	return plan, nil
}

type biddingHandler struct{}

func (biddingHandler) plan(p *models.Proposal, o *models.Overrides) (mutationPlan, error) {
	var plan mutationPlan
	if o == nil || (o.TargetCPA == nil && o.TargetROAS == nil) {
		plan.warnings = append(plan.warnings, "no target_cpa or target_roas given; nothing to apply")
		return plan, nil
	}
	campaign, err := campaignRef(p, o)
	if err != nil {
		return plan, err
	}

	if o.TargetCPA != nil {
		micros := toMicros(*o.TargetCPA)
		plan.add(models.OpUpdateTargetCPA, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
			return gw.UpdateTargetCPA(ctx, campaign, micros)
		})
	}
	if o.TargetROAS != nil {
		roas := *o.TargetROAS
		plan.add(models.OpUpdateTargetROAS, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
			return gw.UpdateTargetROAS(ctx, campaign, roas)
		})
	}
	return plan, nil
}

type keywordHandler struct{}

func (keywordHandler) plan(p *models.Proposal, o *models.Overrides) (mutationPlan, error) {
	var plan mutationPlan
	if o == nil || (len(o.NegativeKeywords) == 0 && len(o.AddKeywords) == 0) {
		plan.warnings = append(plan.warnings, "no keywords given; nothing to apply")
		return plan, nil
	}

	var violations []string
	for i, kw := range o.NegativeKeywords {
		if strings.TrimSpace(kw) == "" {
			violations = append(violations, fmt.Sprintf("negative keyword %d is empty", i+1))
		}
	}
	for i, kw := range o.AddKeywords {
		if strings.TrimSpace(kw.Text) == "" {
			violations = append(violations, fmt.Sprintf("keyword %d is empty", i+1))
		}
	}
	adGroup := adGroupRef(p, o)
	if len(o.AddKeywords) > 0 && adGroup == "" {
		violations = append(violations, "ad_group_id is required to add keywords")
	}
	if len(violations) > 0 {
		return plan, &apperror.ValidationError{Violations: violations}
	}

	if len(o.NegativeKeywords) > 0 {
		campaign, err := campaignRef(p, o)
		if err != nil {
			return plan, err
		}
		matchType := strings.ToUpper(o.MatchType)
		if matchType == "" {
			matchType = defaultMatchType
		}
		keywords := append([]string(nil), o.NegativeKeywords...)
		plan.add(models.OpAddNegativeKeywords, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
			return gw.AddNegativeKeywords(ctx, campaign, keywords, matchType)
		})
	}
	if len(o.AddKeywords) > 0 {
		keywords := append([]models.KeywordSpec(nil), o.AddKeywords...)
		plan.add(models.OpAddKeywords, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
			return gw.AddKeywords(ctx, adGroup, keywords)
		})
	}
	return plan, nil
}

type adCopyHandler struct{}

func (adCopyHandler) plan(p *models.Proposal, o *models.Overrides) (mutationPlan, error) {
	var plan mutationPlan

	var change models.AdCopyChange
	if o != nil && o.AdGroupRef != "" {
		change = models.AdCopyChange{
			AdGroupRef: o.AdGroupRef,
			CurrentAd:  models.CurrentAd{AdRef: o.OldAdRef},
			ProposedAd: models.ProposedAd{Headlines: o.Headlines, Descriptions: o.Descriptions, FinalURL: o.FinalURL},
		}
	} else {
		spec := p.Spec()
		if spec.Kind != models.ActionSpecAdCopy || spec.AdCopy == nil {
			return plan, &apperror.ValidationError{Violations: []string{"proposal has no structured ad copy change"}}
		}
		change = *spec.AdCopy
		if o != nil {
			if len(o.Headlines) > 0 {
				change.ProposedAd.Headlines = o.Headlines
			}
			if len(o.Descriptions) > 0 {
				change.ProposedAd.Descriptions = o.Descriptions
			}
			if o.FinalURL != "" {
				change.ProposedAd.FinalURL = o.FinalURL
			}
			if o.OldAdRef != "" {
				change.CurrentAd.AdRef = o.OldAdRef
			}
		}
	}

	warnings, err := adcopy.ValidateChange(&change)
	if err != nil {
		return plan, err
	}
	plan.warnings = warnings

	adGroup := change.AdGroupRef
	if oldAd := change.CurrentAd.AdRef; oldAd != "" {
		plan.add(models.OpPauseAd, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
			return gw.PauseAd(ctx, adGroup, oldAd)
		})
	}
	headlines := trimAll(change.ProposedAd.Headlines)
	descriptions := trimAll(change.ProposedAd.Descriptions)
	finalURL := strings.TrimSpace(change.ProposedAd.FinalURL)
	plan.add(models.OpCreateResponsiveSearchAd, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
		return gw.CreateResponsiveSearchAd(ctx, adGroup, headlines, descriptions, finalURL)
	})
	return plan, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

type targetingHandler struct{}

func (targetingHandler) plan(p *models.Proposal, o *models.Overrides) (mutationPlan, error) {
	var plan mutationPlan
	if o == nil || len(o.DeviceModifiers) == 0 {
		plan.warnings = append(plan.warnings, "no device modifiers given; nothing to apply")
		return plan, nil
	}
	campaign, err := campaignRef(p, o)
	if err != nil {
		return plan, err
	}

	devices := make([]string, 0, len(o.DeviceModifiers))
	for device := range o.DeviceModifiers {
		devices = append(devices, device)
	}
	sort.Strings(devices)

	for _, device := range devices {
		modifier := o.DeviceModifiers[device]
		name := strings.ToUpper(device)
		plan.add(models.OpUpdateDeviceBidModifier, func(ctx context.Context, gw service_platform.MutationGateway) (*models.OperationRecord, error) {
			return gw.UpdateDeviceBidModifier(ctx, campaign, name, modifier)
		})
	}
	return plan, nil
}

type unsupportedHandler struct {
	category models.ProposalCategory
	manual   bool
}

func (h unsupportedHandler) plan(p *models.Proposal, o *models.Overrides) (mutationPlan, error) {
	if h.manual {
		return mutationPlan{}, fmt.Errorf("%w: %s proposals require creative assets produced by hand; follow up in the team chat",
			apperror.ErrUnsupportedCategory, h.category)
	}
	return mutationPlan{}, fmt.Errorf("%w: %q has no automatic execution", apperror.ErrUnsupportedCategory, h.category)
}
