package service_platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

// AdsBridgeGateway calls the platform mutation bridge over HTTP. The bridge
// owns the platform credentials and answers each mutation with the
// OperationRecord it applied. Mutations are never retried here.
type AdsBridgeGateway struct {
	baseURL    string
	token      string
	customerID string
	client     *http.Client
	limiter    *rate.Limiter
}

// NewAdsBridgeGateway creates a gateway for the configured bridge
func NewAdsBridgeGateway(cfg config.PlatformConfig) (*AdsBridgeGateway, error) {
	if cfg.BaseURL == "" || cfg.CustomerID == "" {
		return nil, fmt.Errorf("ads bridge requires ADS_BRIDGE_URL and ADS_CUSTOMER_ID")
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &AdsBridgeGateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.APIToken,
		customerID: cfg.CustomerID,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

type bridgeError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (g *AdsBridgeGateway) mutate(ctx context.Context, op models.OperationType, payload map[string]interface{}) (*models.OperationRecord, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ads bridge rate limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	url := fmt.Sprintf("%s/v1/customers/%s/mutations/%s", g.baseURL, g.customerID, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ads bridge %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("ads bridge %s: read response: %w", op, err)
	}

	if resp.StatusCode/100 != 2 {
		var be bridgeError
		if json.Unmarshal(raw, &be) == nil && be.Error != "" {
			return nil, fmt.Errorf("ads bridge %s: status %d: %s %s", op, resp.StatusCode, be.Error, be.Details)
		}
		return nil, fmt.Errorf("ads bridge %s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var rec models.OperationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("ads bridge %s: decode response: %w", op, err)
	}
	if rec.Operation == "" {
		rec.Operation = op
	}

	logrus.WithFields(logrus.Fields{
		"operation":     op,
		"resource_name": rec.ResourceName,
	}).Info("Ads bridge mutation applied")
	return &rec, nil
}

// UpdateBudget implements MutationGateway
func (g *AdsBridgeGateway) UpdateBudget(ctx context.Context, campaignRef string, newAmountMicros int64) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpUpdateBudget, map[string]interface{}{
		"campaign_id":   campaignRef,
		"amount_micros": newAmountMicros,
	})
}

// UpdateTargetCPA implements MutationGateway
func (g *AdsBridgeGateway) UpdateTargetCPA(ctx context.Context, campaignRef string, newValueMicros int64) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpUpdateTargetCPA, map[string]interface{}{
		"campaign_id":       campaignRef,
		"target_cpa_micros": newValueMicros,
	})
}

// UpdateTargetROAS implements MutationGateway
func (g *AdsBridgeGateway) UpdateTargetROAS(ctx context.Context, campaignRef string, newValue float64) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpUpdateTargetROAS, map[string]interface{}{
		"campaign_id": campaignRef,
		"target_roas": newValue,
	})
}

// AddNegativeKeywords implements MutationGateway
func (g *AdsBridgeGateway) AddNegativeKeywords(ctx context.Context, campaignRef string, keywords []string, matchType string) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpAddNegativeKeywords, map[string]interface{}{
		"campaign_id": campaignRef,
		"keywords":    keywords,
		"match_type":  matchType,
	})
}

// AddKeywords implements MutationGateway
func (g *AdsBridgeGateway) AddKeywords(ctx context.Context, adGroupRef string, keywords []models.KeywordSpec) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpAddKeywords, map[string]interface{}{
		"ad_group_id": adGroupRef,
		"keywords":    keywords,
	})
}

// PauseKeyword implements MutationGateway
func (g *AdsBridgeGateway) PauseKeyword(ctx context.Context, adGroupRef, criterionRef string) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpPauseKeyword, map[string]interface{}{
		"ad_group_id":  adGroupRef,
		"criterion_id": criterionRef,
	})
}

// UpdateDeviceBidModifier implements MutationGateway
func (g *AdsBridgeGateway) UpdateDeviceBidModifier(ctx context.Context, campaignRef, device string, modifier float64) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpUpdateDeviceBidModifier, map[string]interface{}{
		"campaign_id":  campaignRef,
		"device":       device,
		"bid_modifier": modifier,
	})
}

// CreateResponsiveSearchAd implements MutationGateway
func (g *AdsBridgeGateway) CreateResponsiveSearchAd(ctx context.Context, adGroupRef string, headlines, descriptions []string, finalURL string) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpCreateResponsiveSearchAd, map[string]interface{}{
		"ad_group_id":  adGroupRef,
		"headlines":    headlines,
		"descriptions": descriptions,
		"final_url":    finalURL,
		"status":       "PAUSED",
	})
}

// PauseAd implements MutationGateway
func (g *AdsBridgeGateway) PauseAd(ctx context.Context, adGroupRef, adRef string) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpPauseAd, map[string]interface{}{
		"ad_group_id": adGroupRef,
		"ad_id":       adRef,
	})
}

// EnableAd implements MutationGateway
func (g *AdsBridgeGateway) EnableAd(ctx context.Context, adGroupRef, adRef string) (*models.OperationRecord, error) {
	return g.mutate(ctx, models.OpEnableAd, map[string]interface{}{
		"ad_group_id": adGroupRef,
		"ad_id":       adRef,
	})
}

// Reversibility implements MutationGateway
func (g *AdsBridgeGateway) Reversibility(op models.OperationType) Reversibility {
	return defaultReversibility(op)
}

// GetPlatformName implements MutationGateway
func (g *AdsBridgeGateway) GetPlatformName() string {
	return PlatformAdsBridge
}
