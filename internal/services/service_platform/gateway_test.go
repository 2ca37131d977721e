package service_platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

func TestDryRunBudgetRecordsPreviousValue(t *testing.T) {
	g := NewDryRunGateway("123")
	g.SeedBudget("c1", 5_000_000_000)

	rec, err := g.UpdateBudget(context.Background(), "c1", 6_000_000_000)
	require.NoError(t, err)
	require.NotNil(t, rec.PreviousValue)
	assert.Equal(t, 5_000_000_000.0, *rec.PreviousValue)
	assert.Equal(t, 6_000_000_000.0, *rec.NewValue)
	assert.Equal(t, "customers/123/campaignBudgets/c1", rec.ResourceName)

	budget, ok := g.Budget("c1")
	assert.True(t, ok)
	assert.Equal(t, int64(6_000_000_000), budget)
}

func TestDryRunCreatedAdsArePaused(t *testing.T) {
	g := NewDryRunGateway("")
	rec, err := g.CreateResponsiveSearchAd(context.Background(), "ag1", []string{"a", "b", "c"}, []string{"d", "e"}, "https://example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.AdRef)
	assert.Equal(t, "PAUSED", g.AdStatus(rec.AdRef))

	_, err = g.EnableAd(context.Background(), "ag1", rec.AdRef)
	require.NoError(t, err)
	assert.Equal(t, "ENABLED", g.AdStatus(rec.AdRef))
}

func TestDryRunPauseKeyword(t *testing.T) {
	g := NewDryRunGateway("123")
	ctx := context.Background()

	added, err := g.AddKeywords(ctx, "ag1", []models.KeywordSpec{{Text: "flower delivery"}})
	require.NoError(t, err)
	require.Len(t, added.ResourceNames, 1)
	parts := strings.Split(added.ResourceNames[0], "~")
	criterion := parts[len(parts)-1]
	assert.Equal(t, "ENABLED", g.KeywordStatus("ag1", criterion))

	rec, err := g.PauseKeyword(ctx, "ag1", criterion)
	require.NoError(t, err)
	assert.Equal(t, models.OpPauseKeyword, rec.Operation)
	assert.Equal(t, criterion, rec.CriterionRef)
	assert.Equal(t, "customers/123/adGroupCriteria/ag1~"+criterion, rec.ResourceName)
	assert.Equal(t, "PAUSED", g.KeywordStatus("ag1", criterion))
	assert.Equal(t, []models.OperationType{models.OpAddKeywords, models.OpPauseKeyword}, g.Calls())

	g.FailOn(models.OpPauseKeyword, errors.New("criterion not found"))
	_, err = g.PauseKeyword(ctx, "ag1", "404")
	assert.Error(t, err)
	assert.Empty(t, g.KeywordStatus("ag1", "404"))
}

func TestDryRunTargetCPARecordsPreviousValue(t *testing.T) {
	g := NewDryRunGateway("123")
	g.SeedTargetCPA("c1", 40_000_000)

	rec, err := g.UpdateTargetCPA(context.Background(), "c1", 45_000_000)
	require.NoError(t, err)
	require.NotNil(t, rec.PreviousValue)
	assert.Equal(t, 40_000_000.0, *rec.PreviousValue)

	cpa, ok := g.TargetCPA("c1")
	assert.True(t, ok)
	assert.Equal(t, int64(45_000_000), cpa)
}

func TestDryRunFailureInjection(t *testing.T) {
	g := NewDryRunGateway("")
	boom := errors.New("quota exceeded")
	g.FailOn(models.OpPauseAd, boom)

	_, err := g.PauseAd(context.Background(), "ag1", "ad1")
	assert.ErrorIs(t, err, boom)

	g.FailOn(models.OpPauseAd, nil)
	_, err = g.PauseAd(context.Background(), "ag1", "ad1")
	require.NoError(t, err)
	assert.Equal(t, []models.OperationType{models.OpPauseAd, models.OpPauseAd}, g.Calls())
}

func TestReversibilityDeclaration(t *testing.T) {
	g := NewDryRunGateway("")
	assert.Equal(t, Reversible, g.Reversibility(models.OpUpdateBudget))
	assert.Equal(t, Reversible, g.Reversibility(models.OpPauseAd))
	assert.Equal(t, BestEffort, g.Reversibility(models.OpCreateResponsiveSearchAd))
	assert.Equal(t, ManualOnly, g.Reversibility(models.OpAddNegativeKeywords))
	assert.Equal(t, Untracked, g.Reversibility(models.OperationType("something_new")))
}

func TestFactory(t *testing.T) {
	f := NewGatewayFactory(config.PlatformConfig{})
	gw, err := f.CreateGateway(PlatformDryRun)
	require.NoError(t, err)
	assert.Equal(t, PlatformDryRun, gw.GetPlatformName())

	_, err = f.CreateGateway(PlatformAdsBridge)
	assert.Error(t, err, "bridge needs a URL and customer id")

	_, err = f.CreateGateway("unknown")
	assert.Error(t, err)
}

func TestAdsBridgeUpdateBudget(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"campaign_id":"c1","resource_name":"customers/1/campaignBudgets/9","previous_value":1000000,"new_value":2000000}`))
	}))
	defer srv.Close()

	g, err := NewAdsBridgeGateway(config.PlatformConfig{
		BaseURL: srv.URL + "/", APIToken: "secret", CustomerID: "1", RequestsPerSecond: 100, Timeout: time.Second,
	})
	require.NoError(t, err)

	rec, err := g.UpdateBudget(context.Background(), "c1", 2_000_000)
	require.NoError(t, err)
	assert.Equal(t, "/v1/customers/1/mutations/update_budget", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, 2_000_000.0, gotBody["amount_micros"])
	assert.Equal(t, models.OpUpdateBudget, rec.Operation)
	assert.Equal(t, 1_000_000.0, *rec.PreviousValue)
}

func TestAdsBridgeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"INVALID_ARGUMENT","details":"ad group not found"}`))
	}))
	defer srv.Close()

	g, err := NewAdsBridgeGateway(config.PlatformConfig{BaseURL: srv.URL, CustomerID: "1", RequestsPerSecond: 100, Timeout: time.Second})
	require.NoError(t, err)

	_, err = g.PauseAd(context.Background(), "ag", "ad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "ad group not found")
}
