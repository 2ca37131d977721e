package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/ads-proposal-backend/internal/services/excel"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImpactHandler serves impact reports and their Excel export
type ImpactHandler struct {
	tracker      *impact.Tracker
	excelService *excel.Service
}

// NewImpactHandler creates a new ImpactHandler instance
func NewImpactHandler(tracker *impact.Tracker, excelService *excel.Service) *ImpactHandler {
	return &ImpactHandler{tracker: tracker, excelService: excelService}
}

// GetImpact godoc
// @Summary Get proposal impact
// @Description Compare the before and after KPI snapshots of a proposal
// @Tags impact
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Success 200 {object} impact.ImpactReport
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/proposals/{id}/impact [get]
func (h *ImpactHandler) GetImpact(c *gin.Context) {
	report, err := h.tracker.GetImpactReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to build impact report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportImpact godoc
// @Summary Export impact to Excel
// @Description Download the impact of every executed proposal as an Excel workbook
// @Tags impact
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "Excel file"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/proposals/impact/export [get]
func (h *ImpactHandler) ExportImpact(c *gin.Context) {
	result, err := h.excelService.ExportImpact(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to export impact")
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.Filename))
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Cache-Control", "must-revalidate")
	c.Data(http.StatusOK, xlsxContentType, result.Content.Bytes())
}
