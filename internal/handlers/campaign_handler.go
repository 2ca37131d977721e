package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	reportService   *services.ReportService
}

func NewCampaignHandler(campaignService *services.CampaignService, reportService *services.ReportService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, reportService: reportService}
}

// SyncCampaigns godoc
// @Summary Sync campaigns
// @Description Upsert campaign names and statuses pushed by the orchestrator
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CampaignSyncRequest true "Campaigns"
// @Success 200 {object} models.CampaignSyncResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/campaigns/sync [post]
func (h *CampaignHandler) SyncCampaigns(c *gin.Context) {
	var req models.CampaignSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	resp, err := h.campaignService.SyncCampaigns(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to sync campaigns")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCampaigns godoc
// @Summary List campaigns
// @Description List synced campaigns
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Campaign
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	campaigns, err := h.campaignService.GetCampaigns(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get campaigns")
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// CreateReport godoc
// @Summary Store weekly report
// @Description Store the aggregate KPI figures of a week (orchestrator only)
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateWeeklyReportRequest true "Weekly report"
// @Success 201 {object} models.WeeklyReport
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/reports [post]
func (h *CampaignHandler) CreateReport(c *gin.Context) {
	var req models.CreateWeeklyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to store report")
		return
	}
	c.JSON(http.StatusCreated, report)
}
