package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type WeeklyReportRepository struct {
	db *gorm.DB
}

func NewWeeklyReportRepository(db *gorm.DB) *WeeklyReportRepository {
	return &WeeklyReportRepository{db: db}
}

// Create creates a new weekly report
func (r *WeeklyReportRepository) Create(ctx context.Context, report *models.WeeklyReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// GetByID retrieves a weekly report by ID
func (r *WeeklyReportRepository) GetByID(ctx context.Context, id string) (*models.WeeklyReport, error) {
	var report models.WeeklyReport
	err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("weekly report", id)
		}
		return nil, err
	}
	return &report, nil
}

// GetLatest retrieves the report with the most recent week
func (r *WeeklyReportRepository) GetLatest(ctx context.Context) (*models.WeeklyReport, error) {
	var report models.WeeklyReport
	err := r.db.WithContext(ctx).Order("week_start_date DESC").First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("weekly report", "")
		}
		return nil, err
	}
	return &report, nil
}
