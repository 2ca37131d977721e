// Package reporting adapts stored weekly reports and synced campaigns to the
// figures the proposal engine consumes.
package reporting

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

// KPIReport is an aggregate KPI vector with its reporting period
type KPIReport struct {
	KPI    models.KPIVector
	Period models.Period
}

// Service reads KPI figures and campaign statuses from the store
type Service struct {
	reportRepo   *repository.WeeklyReportRepository
	campaignRepo *repository.CampaignRepository
}

// NewService creates a reporting service
func NewService(reportRepo *repository.WeeklyReportRepository, campaignRepo *repository.CampaignRepository) *Service {
	return &Service{reportRepo: reportRepo, campaignRepo: campaignRepo}
}

// LatestKPI returns the KPI figures of the most recent weekly report
func (s *Service) LatestKPI(ctx context.Context) (*KPIReport, error) {
	report, err := s.reportRepo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	return toKPIReport(report)
}

// ReportKPI returns the KPI figures of a specific weekly report
func (s *Service) ReportKPI(ctx context.Context, reportID string) (*KPIReport, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return toKPIReport(report)
}

// CampaignStatuses returns campaign name to status
func (s *Service) CampaignStatuses(ctx context.Context) (map[string]models.CampaignStatus, error) {
	return s.campaignRepo.StatusByName(ctx)
}

func toKPIReport(report *models.WeeklyReport) (*KPIReport, error) {
	kpi, err := ParseKPISnapshot(report.KPISnapshot)
	if err != nil {
		return nil, fmt.Errorf("weekly report %s: %w", report.ID, err)
	}
	return &KPIReport{
		KPI:    kpi,
		Period: models.Period{Start: report.WeekStartDate, End: report.WeekEndDate},
	}, nil
}

// ParseKPISnapshot maps a weekly report kpi_snapshot document onto a KPI
// vector. Numbers may be encoded as JSON numbers or numeric strings; unknown
// keys are ignored and missing keys stay nil.
func ParseKPISnapshot(raw []byte) (models.KPIVector, error) {
	var kpi models.KPIVector
	if len(raw) == 0 {
		return kpi, nil
	}
	if !gjson.ValidBytes(raw) {
		return kpi, fmt.Errorf("decode kpi_snapshot: invalid JSON")
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return kpi, fmt.Errorf("decode kpi_snapshot: expected an object")
	}

	for key, metric := range models.ReportKPIKeys {
		v := gjson.GetBytes(raw, key)
		if !v.Exists() {
			continue
		}
		var f float64
		switch v.Type {
		case gjson.Number:
			f = v.Num
		case gjson.String:
			n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				continue
			}
			f = n
		default:
			continue
		}
		kpi.Set(metric, &f)
	}
	return kpi, nil
}
