package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WeeklyReport holds the aggregate KPI figures produced by the analysis stage
type WeeklyReport struct {
	ID            string         `json:"id" gorm:"primaryKey;type:uuid"`
	WeekStartDate time.Time      `json:"week_start_date" gorm:"not null;index"`
	WeekEndDate   time.Time      `json:"week_end_date" gorm:"not null"`
	KPISnapshot   datatypes.JSON `json:"kpi_snapshot" swaggertype:"object"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName specifies the table name for the WeeklyReport model
func (WeeklyReport) TableName() string {
	return "weekly_reports"
}

// BeforeCreate assigns an ID when the caller did not
func (r *WeeklyReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// CreateWeeklyReportRequest is the orchestrator intake payload for a weekly report
type CreateWeeklyReportRequest struct {
	WeekStartDate time.Time       `json:"week_start_date" binding:"required" example:"2026-10-05T00:00:00Z"`
	WeekEndDate   time.Time       `json:"week_end_date" binding:"required" example:"2026-10-11T00:00:00Z"`
	KPISnapshot   json.RawMessage `json:"kpi_snapshot" binding:"required" swaggertype:"object"`
}
