package service_platform

import (
	"context"

	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

// MutationGateway applies atomic, recorded changes to the advertising
// platform. Every call returns an OperationRecord carrying the previous and
// new value plus a resource reference sufficient to invert the change.
type MutationGateway interface {
	UpdateBudget(ctx context.Context, campaignRef string, newAmountMicros int64) (*models.OperationRecord, error)
	UpdateTargetCPA(ctx context.Context, campaignRef string, newValueMicros int64) (*models.OperationRecord, error)
	UpdateTargetROAS(ctx context.Context, campaignRef string, newValue float64) (*models.OperationRecord, error)
	AddNegativeKeywords(ctx context.Context, campaignRef string, keywords []string, matchType string) (*models.OperationRecord, error)
	AddKeywords(ctx context.Context, adGroupRef string, keywords []models.KeywordSpec) (*models.OperationRecord, error)
	PauseKeyword(ctx context.Context, adGroupRef, criterionRef string) (*models.OperationRecord, error)
	UpdateDeviceBidModifier(ctx context.Context, campaignRef, device string, modifier float64) (*models.OperationRecord, error)
	CreateResponsiveSearchAd(ctx context.Context, adGroupRef string, headlines, descriptions []string, finalURL string) (*models.OperationRecord, error)
	PauseAd(ctx context.Context, adGroupRef, adRef string) (*models.OperationRecord, error)
	EnableAd(ctx context.Context, adGroupRef, adRef string) (*models.OperationRecord, error)

	// Reversibility declares how an operation of the given type can be undone
	Reversibility(op models.OperationType) Reversibility

	// Platform info
	GetPlatformName() string
}

// Reversibility classifies how an applied operation can be undone
type Reversibility string

const (
	// Reversible operations are undone exactly by reapplying the previous value
	Reversible Reversibility = "reversible"
	// BestEffort operations are neutralised but not erased (a created ad is paused)
	BestEffort Reversibility = "best_effort"
	// ManualOnly operations need a person to undo them on the platform
	ManualOnly Reversibility = "manual_only"
	// Untracked operations have no recorded inverse
	Untracked Reversibility = "untracked"
)

// DefaultReversibility is the classification shared by the gateways in this package
var DefaultReversibility = map[models.OperationType]Reversibility{
	models.OpUpdateBudget:             Reversible,
	models.OpUpdateTargetCPA:          Reversible,
	models.OpUpdateTargetROAS:         Reversible,
	models.OpPauseAd:                  Reversible,
	models.OpCreateResponsiveSearchAd: BestEffort,
	models.OpAddNegativeKeywords:      ManualOnly,
	models.OpAddKeywords:              Untracked,
	models.OpPauseKeyword:             Untracked,
	models.OpUpdateDeviceBidModifier:  Untracked,
	models.OpEnableAd:                 Untracked,
}

func defaultReversibility(op models.OperationType) Reversibility {
	if r, ok := DefaultReversibility[op]; ok {
		return r
	}
	return Untracked
}
