package excel

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
)

const impactSheetName = "Impact"

// ImpactSource builds the impact report of a proposal
type ImpactSource interface {
	GetImpactReport(ctx context.Context, proposalID string) (*impact.ImpactReport, error)
}

// Service exports proposal impact to Excel workbooks
type Service struct {
	proposalRepo  *repository.ProposalRepository
	executionRepo *repository.ExecutionRepository
	impact        ImpactSource
}

// NewExcelService creates a new Excel service instance
func NewExcelService(proposalRepo *repository.ProposalRepository, executionRepo *repository.ExecutionRepository, impact ImpactSource) *Service {
	return &Service{
		proposalRepo:  proposalRepo,
		executionRepo: executionRepo,
		impact:        impact,
	}
}

// ExportResult is a rendered workbook
type ExportResult struct {
	Filename string
	Rows     int
	Content  *bytes.Buffer
}

// ExportImpact writes one row per executed proposal with its before, after
// and change figures for every KPI metric
func (s *Service) ExportImpact(ctx context.Context) (*ExportResult, error) {
	proposals, err := s.proposalRepo.ListExecuted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list executed proposals: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), impactSheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	columns := []string{"proposal_id", "title", "category", "target_campaign", "executed_at", "impact_status"}
	for _, metric := range models.KPIMetrics {
		m := string(metric)
		columns = append(columns, m+"_before", m+"_after", m+"_change_pct")
	}
	for i, col := range columns {
		f.SetCellValue(impactSheetName, cellName(i+1, 1), col)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err == nil {
		f.SetCellStyle(impactSheetName, "A1", cellName(len(columns), 1), headerStyle)
	}
	pendingStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
	})

	f.SetColWidth(impactSheetName, "A", "A", 38)
	f.SetColWidth(impactSheetName, "B", "B", 40)
	f.SetColWidth(impactSheetName, "C", "F", 20)

	for i, p := range proposals {
		row := i + 2
		report, err := s.impact.GetImpactReport(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to build impact report for %s: %w", p.ID, err)
		}

		var executedAt string
		if exec, err := s.executionRepo.GetActiveByProposalID(ctx, p.ID); err == nil {
			executedAt = exec.ExecutedAt.UTC().Format(time.RFC3339)
		}
		var target string
		if p.TargetCampaign != nil {
			target = *p.TargetCampaign
		}

		values := []interface{}{p.ID, p.Title, string(p.Category), target, executedAt, string(report.Status)}
		for _, metric := range models.KPIMetrics {
			values = append(values, metricValue(report.Before, metric), metricValue(report.After, metric), floatValue(report.Change[metric]))
		}
		for col, v := range values {
			f.SetCellValue(impactSheetName, cellName(col+1, row), v)
		}
		if report.Status != impact.StatusAvailable {
			f.SetCellStyle(impactSheetName, cellName(1, row), cellName(len(columns), row), pendingStyle)
		}
	}
	if len(proposals) == 0 {
		f.SetCellValue(impactSheetName, "A2", "no executed proposals")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render Excel file: %w", err)
	}
	return &ExportResult{
		Filename: fmt.Sprintf("proposal_impact_%d.xlsx", time.Now().Unix()),
		Rows:     len(proposals),
		Content:  buf,
	}, nil
}

func metricValue(kpi *models.KPIVector, metric models.KPIMetric) interface{} {
	if kpi == nil {
		return ""
	}
	return floatValue(kpi.Get(metric))
}

func floatValue(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellName(col, row int) string {
	return columnToLetter(col) + strconv.Itoa(row)
}

// Helper function to convert column number to Excel column letter
func columnToLetter(col int) string {
	var result string
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
