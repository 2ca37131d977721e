package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/ads-proposal-backend/internal/services"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/lifecycle"
)

// MaintenanceHandler exposes the sweep operations
type MaintenanceHandler struct {
	sweeper   *lifecycle.Sweeper
	tracker   *impact.Tracker
	scheduler *services.SweepScheduler
}

// NewMaintenanceHandler creates a new MaintenanceHandler instance
func NewMaintenanceHandler(sweeper *lifecycle.Sweeper, tracker *impact.Tracker, scheduler *services.SweepScheduler) *MaintenanceHandler {
	return &MaintenanceHandler{sweeper: sweeper, tracker: tracker, scheduler: scheduler}
}

// CleanupInactive godoc
// @Summary Skip proposals of inactive campaigns
// @Description Mark pending proposals whose target campaign is not active as skipped
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Param dry_run query bool false "Only report, change nothing"
// @Success 200 {object} lifecycle.CleanupResult
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/proposals/cleanup [post]
func (h *MaintenanceHandler) CleanupInactive(c *gin.Context) {
	dryRun := false
	if raw := c.Query("dry_run"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dry_run value", "details": err.Error()})
			return
		}
		dryRun = v
	}

	result, err := h.sweeper.CleanupInactiveProposals(c.Request.Context(), dryRun)
	if err != nil {
		respondError(c, err, "Failed to clean up proposals")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CollectAfterSnapshots godoc
// @Summary Collect after snapshots
// @Description Record after snapshots for executions older than the measurement delay
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} impact.CollectResult
// @Router /api/v1/proposals/collect-after-snapshots [post]
func (h *MaintenanceHandler) CollectAfterSnapshots(c *gin.Context) {
	result, err := h.tracker.CollectAfterSnapshots(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to collect after snapshots")
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunSweep godoc
// @Summary Run a sweep now
// @Description Run scheduled approvals, snapshot collection and cleanup once
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.SweepReport
// @Router /api/v1/proposals/sweep/run [post]
func (h *MaintenanceHandler) RunSweep(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.RunOnce(c.Request.Context()))
}

// SweepStatus godoc
// @Summary Sweep status
// @Description Report whether the sweep loop runs and the outcome of the last sweep
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.SweepStatus
// @Router /api/v1/proposals/sweep/status [get]
func (h *MaintenanceHandler) SweepStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}
