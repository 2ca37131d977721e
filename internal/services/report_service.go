package services

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/reporting"
)

type ReportService struct {
	reportRepo *repository.WeeklyReportRepository
}

func NewReportService(reportRepo *repository.WeeklyReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// CreateReport stores a weekly report after checking its KPI document parses
func (s *ReportService) CreateReport(ctx context.Context, req *models.CreateWeeklyReportRequest) (*models.WeeklyReport, error) {
	if req.WeekEndDate.Before(req.WeekStartDate) {
		return nil, &apperror.ValidationError{Violations: []string{"week_end_date is before week_start_date"}}
	}
	if _, err := reporting.ParseKPISnapshot(req.KPISnapshot); err != nil {
		return nil, &apperror.ValidationError{Violations: []string{err.Error()}}
	}

	report := &models.WeeklyReport{
		WeekStartDate: req.WeekStartDate.UTC(),
		WeekEndDate:   req.WeekEndDate.UTC(),
		KPISnapshot:   datatypes.JSON(req.KPISnapshot),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store weekly report: %w", err)
	}
	return report, nil
}
