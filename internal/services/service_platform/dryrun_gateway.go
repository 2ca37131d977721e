package service_platform

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type dryRunAd struct {
	adGroupRef string
	status     string
}

// DryRunGateway simulates an advertising account in memory. Every mutation
// is recorded and logged; nothing leaves the process.
type DryRunGateway struct {
	customerID string

	mu              sync.Mutex
	budgets         map[string]int64
	targetCPA       map[string]int64
	targetROAS      map[string]float64
	negatives       map[string][]string
	keywords        map[string][]models.KeywordSpec
	criteriaStatus  map[string]string
	deviceModifiers map[string]float64
	ads             map[string]*dryRunAd
	failures        map[models.OperationType]error
	nextID          int
	calls           []models.OperationType
}

// NewDryRunGateway creates an empty simulated account
func NewDryRunGateway(customerID string) *DryRunGateway {
	if customerID == "" {
		customerID = "0000000000"
	}
	return &DryRunGateway{
		customerID:      customerID,
		budgets:         make(map[string]int64),
		targetCPA:       make(map[string]int64),
		targetROAS:      make(map[string]float64),
		negatives:       make(map[string][]string),
		keywords:        make(map[string][]models.KeywordSpec),
		criteriaStatus:  make(map[string]string),
		deviceModifiers: make(map[string]float64),
		ads:             make(map[string]*dryRunAd),
		failures:        make(map[models.OperationType]error),
	}
}

// SeedBudget sets the current budget of a campaign in micros
func (g *DryRunGateway) SeedBudget(campaignRef string, micros int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.budgets[campaignRef] = micros
}

// SeedTargetCPA sets the current target CPA of a campaign in micros
func (g *DryRunGateway) SeedTargetCPA(campaignRef string, micros int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.targetCPA[campaignRef] = micros
}

// SeedAd registers an enabled ad
func (g *DryRunGateway) SeedAd(adGroupRef, adRef string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ads[adRef] = &dryRunAd{adGroupRef: adGroupRef, status: "ENABLED"}
}

// FailOn makes every later call of op fail with err; a nil err clears it
func (g *DryRunGateway) FailOn(op models.OperationType, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.failures, op)
		return
	}
	g.failures[op] = err
}

// Budget returns the simulated budget of a campaign in micros
func (g *DryRunGateway) Budget(campaignRef string) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.budgets[campaignRef]
	return v, ok
}

// TargetCPA returns the simulated target CPA of a campaign in micros
func (g *DryRunGateway) TargetCPA(campaignRef string) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.targetCPA[campaignRef]
	return v, ok
}

// KeywordStatus returns the simulated status of an ad group criterion
func (g *DryRunGateway) KeywordStatus(adGroupRef, criterionRef string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.criteriaStatus[adGroupRef+"~"+criterionRef]
}

// AdStatus returns the simulated status of an ad
func (g *DryRunGateway) AdStatus(adRef string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ad, ok := g.ads[adRef]; ok {
		return ad.status
	}
	return ""
}

// Calls returns the operations attempted so far, in order
func (g *DryRunGateway) Calls() []models.OperationType {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.OperationType(nil), g.calls...)
}

func (g *DryRunGateway) begin(op models.OperationType) error {
	g.calls = append(g.calls, op)
	return g.failures[op]
}

func (g *DryRunGateway) newID() string {
	g.nextID++
	return fmt.Sprintf("%d", 9000000+g.nextID)
}

func (g *DryRunGateway) resource(kind string, parts ...string) string {
	return fmt.Sprintf("customers/%s/%s/%s", g.customerID, kind, strings.Join(parts, "~"))
}

func floatPtr(v float64) *float64 {
	return &v
}

// UpdateBudget sets the daily budget of a campaign
func (g *DryRunGateway) UpdateBudget(ctx context.Context, campaignRef string, newAmountMicros int64) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpUpdateBudget); err != nil {
		return nil, err
	}

	rec := &models.OperationRecord{
		Operation:    models.OpUpdateBudget,
		CampaignRef:  campaignRef,
		ResourceName: g.resource("campaignBudgets", campaignRef),
		NewValue:     floatPtr(float64(newAmountMicros)),
	}
	if prev, ok := g.budgets[campaignRef]; ok {
		rec.PreviousValue = floatPtr(float64(prev))
	}
	g.budgets[campaignRef] = newAmountMicros

	logrus.WithFields(logrus.Fields{"campaign_id": campaignRef, "micros": newAmountMicros}).Info("[dryrun] budget updated")
	return rec, nil
}

// UpdateTargetCPA sets the target CPA of a campaign's bidding strategy
func (g *DryRunGateway) UpdateTargetCPA(ctx context.Context, campaignRef string, newValueMicros int64) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpUpdateTargetCPA); err != nil {
		return nil, err
	}

	rec := &models.OperationRecord{
		Operation:    models.OpUpdateTargetCPA,
		CampaignRef:  campaignRef,
		ResourceName: g.resource("campaigns", campaignRef),
		NewValue:     floatPtr(float64(newValueMicros)),
	}
	if prev, ok := g.targetCPA[campaignRef]; ok {
		rec.PreviousValue = floatPtr(float64(prev))
	}
	g.targetCPA[campaignRef] = newValueMicros
	return rec, nil
}

// UpdateTargetROAS sets the target ROAS of a campaign's bidding strategy
func (g *DryRunGateway) UpdateTargetROAS(ctx context.Context, campaignRef string, newValue float64) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpUpdateTargetROAS); err != nil {
		return nil, err
	}

	rec := &models.OperationRecord{
		Operation:    models.OpUpdateTargetROAS,
		CampaignRef:  campaignRef,
		ResourceName: g.resource("campaigns", campaignRef),
		NewValue:     floatPtr(newValue),
	}
	if prev, ok := g.targetROAS[campaignRef]; ok {
		rec.PreviousValue = floatPtr(prev)
	}
	g.targetROAS[campaignRef] = newValue
	return rec, nil
}

// AddNegativeKeywords adds campaign-level negative keywords
func (g *DryRunGateway) AddNegativeKeywords(ctx context.Context, campaignRef string, keywords []string, matchType string) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpAddNegativeKeywords); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keywords))
	for range keywords {
		names = append(names, g.resource("campaignCriteria", campaignRef, g.newID()))
	}
	g.negatives[campaignRef] = append(g.negatives[campaignRef], keywords...)

	return &models.OperationRecord{
		Operation:     models.OpAddNegativeKeywords,
		CampaignRef:   campaignRef,
		Keywords:      append([]string(nil), keywords...),
		MatchType:     matchType,
		ResourceNames: names,
	}, nil
}

// AddKeywords adds positive keywords to an ad group
func (g *DryRunGateway) AddKeywords(ctx context.Context, adGroupRef string, keywords []models.KeywordSpec) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpAddKeywords); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keywords))
	texts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		id := g.newID()
		names = append(names, g.resource("adGroupCriteria", adGroupRef, id))
		texts = append(texts, kw.Text)
		g.criteriaStatus[adGroupRef+"~"+id] = "ENABLED"
	}
	g.keywords[adGroupRef] = append(g.keywords[adGroupRef], keywords...)

	return &models.OperationRecord{
		Operation:     models.OpAddKeywords,
		AdGroupRef:    adGroupRef,
		Keywords:      texts,
		ResourceNames: names,
	}, nil
}

// PauseKeyword pauses an ad group criterion
func (g *DryRunGateway) PauseKeyword(ctx context.Context, adGroupRef, criterionRef string) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpPauseKeyword); err != nil {
		return nil, err
	}

	g.criteriaStatus[adGroupRef+"~"+criterionRef] = "PAUSED"
	return &models.OperationRecord{
		Operation:    models.OpPauseKeyword,
		AdGroupRef:   adGroupRef,
		CriterionRef: criterionRef,
		ResourceName: g.resource("adGroupCriteria", adGroupRef, criterionRef),
	}, nil
}

// UpdateDeviceBidModifier sets a campaign device bid modifier
func (g *DryRunGateway) UpdateDeviceBidModifier(ctx context.Context, campaignRef, device string, modifier float64) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpUpdateDeviceBidModifier); err != nil {
		return nil, err
	}

	key := campaignRef + "~" + device
	rec := &models.OperationRecord{
		Operation:    models.OpUpdateDeviceBidModifier,
		CampaignRef:  campaignRef,
		Device:       device,
		ResourceName: g.resource("campaignCriteria", campaignRef, device),
		NewValue:     floatPtr(modifier),
	}
	if prev, ok := g.deviceModifiers[key]; ok {
		rec.PreviousValue = floatPtr(prev)
	}
	g.deviceModifiers[key] = modifier
	return rec, nil
}

// CreateResponsiveSearchAd creates a paused responsive search ad
func (g *DryRunGateway) CreateResponsiveSearchAd(ctx context.Context, adGroupRef string, headlines, descriptions []string, finalURL string) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(models.OpCreateResponsiveSearchAd); err != nil {
		return nil, err
	}

	adRef := g.newID()
	g.ads[adRef] = &dryRunAd{adGroupRef: adGroupRef, status: "PAUSED"}

	logrus.WithFields(logrus.Fields{
		"ad_group_id":  adGroupRef,
		"ad_id":        adRef,
		"headlines":    len(headlines),
		"descriptions": len(descriptions),
		"final_url":    finalURL,
	}).Info("[dryrun] responsive search ad created")

	return &models.OperationRecord{
		Operation:    models.OpCreateResponsiveSearchAd,
		AdGroupRef:   adGroupRef,
		AdRef:        adRef,
		ResourceName: g.resource("adGroupAds", adGroupRef, adRef),
	}, nil
}

// PauseAd pauses an ad
func (g *DryRunGateway) PauseAd(ctx context.Context, adGroupRef, adRef string) (*models.OperationRecord, error) {
	return g.setAdStatus(models.OpPauseAd, adGroupRef, adRef, "PAUSED")
}

// EnableAd enables an ad
func (g *DryRunGateway) EnableAd(ctx context.Context, adGroupRef, adRef string) (*models.OperationRecord, error) {
	return g.setAdStatus(models.OpEnableAd, adGroupRef, adRef, "ENABLED")
}

func (g *DryRunGateway) setAdStatus(op models.OperationType, adGroupRef, adRef, status string) (*models.OperationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(op); err != nil {
		return nil, err
	}

	ad, ok := g.ads[adRef]
	if !ok {
		ad = &dryRunAd{adGroupRef: adGroupRef}
		g.ads[adRef] = ad
	}
	ad.status = status

	return &models.OperationRecord{
		Operation:    op,
		AdGroupRef:   adGroupRef,
		AdRef:        adRef,
		ResourceName: g.resource("adGroupAds", adGroupRef, adRef),
	}, nil
}

// NegativeKeywords returns the simulated negative keywords of a campaign, sorted
func (g *DryRunGateway) NegativeKeywords(campaignRef string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := append([]string(nil), g.negatives[campaignRef]...)
	sort.Strings(out)
	return out
}

// Reversibility implements MutationGateway
func (g *DryRunGateway) Reversibility(op models.OperationType) Reversibility {
	return defaultReversibility(op)
}

// GetPlatformName implements MutationGateway
func (g *DryRunGateway) GetPlatformName() string {
	return PlatformDryRun
}
