package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotType tags a snapshot as taken before or after execution
type SnapshotType string

const (
	SnapshotBefore SnapshotType = "before"
	SnapshotAfter  SnapshotType = "after"
)

// KPIVector is the fixed set of metrics compared before and after a change
type KPIVector struct {
	Cost            *float64 `json:"cost" gorm:"column:cost"`
	Conversions     *float64 `json:"conversions" gorm:"column:conversions"`
	CPA             *float64 `json:"cpa" gorm:"column:cpa"`
	CTR             *float64 `json:"ctr" gorm:"column:ctr"`
	ROAS            *float64 `json:"roas" gorm:"column:roas"`
	Impressions     *float64 `json:"impressions" gorm:"column:impressions"`
	Clicks          *float64 `json:"clicks" gorm:"column:clicks"`
	ConversionValue *float64 `json:"conversion_value" gorm:"column:conversion_value"`
}

// KPIMetric names one field of KPIVector
type KPIMetric string

const (
	MetricCost            KPIMetric = "cost"
	MetricConversions     KPIMetric = "conversions"
	MetricCPA             KPIMetric = "cpa"
	MetricCTR             KPIMetric = "ctr"
	MetricROAS            KPIMetric = "roas"
	MetricImpressions     KPIMetric = "impressions"
	MetricClicks          KPIMetric = "clicks"
	MetricConversionValue KPIMetric = "conversion_value"
)

// KPIMetrics lists the metrics in report order
var KPIMetrics = []KPIMetric{
	MetricCost, MetricConversions, MetricCPA, MetricCTR,
	MetricROAS, MetricImpressions, MetricClicks, MetricConversionValue,
}

// Get returns the value of metric m
func (v KPIVector) Get(m KPIMetric) *float64 {
	switch m {
	case MetricCost:
		return v.Cost
	case MetricConversions:
		return v.Conversions
	case MetricCPA:
		return v.CPA
	case MetricCTR:
		return v.CTR
	case MetricROAS:
		return v.ROAS
	case MetricImpressions:
		return v.Impressions
	case MetricClicks:
		return v.Clicks
	case MetricConversionValue:
		return v.ConversionValue
	}
	return nil
}

// ReportKPIKeys maps weekly report keys to metrics
var ReportKPIKeys = map[string]KPIMetric{
	"total_cost":              MetricCost,
	"total_conversions":       MetricConversions,
	"cpa":                     MetricCPA,
	"ctr":                     MetricCTR,
	"roas":                    MetricROAS,
	"impressions":             MetricImpressions,
	"clicks":                  MetricClicks,
	"total_conversions_value": MetricConversionValue,
}

// Set assigns metric m
func (v *KPIVector) Set(m KPIMetric, value *float64) {
	switch m {
	case MetricCost:
		v.Cost = value
	case MetricConversions:
		v.Conversions = value
	case MetricCPA:
		v.CPA = value
	case MetricCTR:
		v.CTR = value
	case MetricROAS:
		v.ROAS = value
	case MetricImpressions:
		v.Impressions = value
	case MetricClicks:
		v.Clicks = value
	case MetricConversionValue:
		v.ConversionValue = value
	}
}

// Period is a measurement window
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Snapshot is a KPI measurement tied to a proposal
type Snapshot struct {
	ID           string       `json:"id" gorm:"primaryKey;type:uuid"`
	ProposalID   string       `json:"proposal_id" gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_proposal_type"`
	SnapshotType SnapshotType `json:"snapshot_type" gorm:"type:varchar(10);not null;uniqueIndex:idx_snapshot_proposal_type"`
	CampaignRef  *string      `json:"campaign_id,omitempty" gorm:"type:varchar(255)"`
	PeriodStart  *time.Time   `json:"period_start,omitempty"`
	PeriodEnd    *time.Time   `json:"period_end,omitempty"`
	KPIVector    `gorm:"embedded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Snapshot model
func (Snapshot) TableName() string {
	return "proposal_snapshots"
}

// BeforeCreate assigns an ID when the caller did not
func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
