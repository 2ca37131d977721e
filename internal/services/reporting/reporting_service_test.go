package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/testutil"
)

func TestParseKPISnapshot(t *testing.T) {
	kpi, err := ParseKPISnapshot([]byte(`{"total_cost": 1200.5, "total_conversions": "30", "ctr": null, "unknown": 1, "total_conversions_value": 54000}`))
	require.NoError(t, err)

	require.NotNil(t, kpi.Cost)
	assert.Equal(t, 1200.5, *kpi.Cost)
	assert.Equal(t, 30.0, *kpi.Conversions)
	assert.Equal(t, 54000.0, *kpi.ConversionValue)
	assert.Nil(t, kpi.CTR)
	assert.Nil(t, kpi.Clicks)

	_, err = ParseKPISnapshot([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestParseKPISnapshotSkipsNonNumericValues(t *testing.T) {
	kpi, err := ParseKPISnapshot([]byte(`{"total_cost": "n/a", "cpa": " 42.5 ", "roas": "NaN", "clicks": true, "impressions": {"value": 10}}`))
	require.NoError(t, err)

	assert.Nil(t, kpi.Cost)
	require.NotNil(t, kpi.CPA)
	assert.Equal(t, 42.5, *kpi.CPA)
	assert.Nil(t, kpi.ROAS)
	assert.Nil(t, kpi.Clicks)
	assert.Nil(t, kpi.Impressions)
}

func TestParseKPISnapshotRejectsMalformedDocuments(t *testing.T) {
	for _, raw := range []string{`{"total_cost": 12`, `"total_cost"`, `42`} {
		_, err := ParseKPISnapshot([]byte(raw))
		assert.Error(t, err, raw)
	}

	kpi, err := ParseKPISnapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, kpi.Cost)
}

func TestLatestKPIAndCampaignStatuses(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	reports := repository.NewWeeklyReportRepository(db)
	campaigns := repository.NewCampaignRepository(db)
	svc := NewService(reports, campaigns)

	_, err := svc.LatestKPI(ctx)
	require.Error(t, err)

	older := time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 7)
	require.NoError(t, reports.Create(ctx, &models.WeeklyReport{WeekStartDate: older, WeekEndDate: older.AddDate(0, 0, 6), KPISnapshot: datatypes.JSON(`{"total_cost": 100}`)}))
	require.NoError(t, reports.Create(ctx, &models.WeeklyReport{WeekStartDate: newer, WeekEndDate: newer.AddDate(0, 0, 6), KPISnapshot: datatypes.JSON(`{"total_cost": 200}`)}))

	latest, err := svc.LatestKPI(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200.0, *latest.KPI.Cost)
	assert.True(t, latest.Period.Start.Equal(newer))

	require.NoError(t, campaigns.Upsert(ctx, &models.Campaign{CampaignRef: "1", CampaignName: "Brand", Status: models.CampaignActive}))
	require.NoError(t, campaigns.Upsert(ctx, &models.Campaign{CampaignRef: "2", CampaignName: "Generic", Status: models.CampaignActive}))
	require.NoError(t, campaigns.Upsert(ctx, &models.Campaign{CampaignRef: "2", CampaignName: "Generic", Status: models.CampaignPaused}))

	statuses, err := svc.CampaignStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]models.CampaignStatus{"Brand": models.CampaignActive, "Generic": models.CampaignPaused}, statuses)
}
