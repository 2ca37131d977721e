package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/middleware"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/execution"
	"github.com/onegreenvn/ads-proposal-backend/internal/utils"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
	engine          *execution.Engine
}

func NewProposalHandler(proposalService *services.ProposalService, engine *execution.Engine) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService, engine: engine}
}

// ListProposals godoc
// @Summary List proposals
// @Description List improvement proposals, newest first
// @Tags proposals
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.ProposalListResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/proposals [get]
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	page, pageSize := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("page_size"))
	resp, err := h.proposalService.ListProposals(c.Request.Context(),
		models.ProposalStatus(c.Query("status")), models.ProposalCategory(c.Query("category")), page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list proposals")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProposal godoc
// @Summary Get proposal
// @Description Get a proposal with its execution history
// @Tags proposals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Success 200 {object} services.ProposalDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/proposals/{id} [get]
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	detail, err := h.proposalService.GetProposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get proposal")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateProposal godoc
// @Summary Create proposal
// @Description Store a generated proposal as pending (orchestrator only)
// @Tags proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateProposalRequest true "Proposal"
// @Success 201 {object} models.Proposal
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/v1/proposals [post]
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req models.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	proposal, err := h.proposalService.CreateProposal(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create proposal")
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

// ApproveProposal godoc
// @Summary Approve proposal
// @Description Approve a pending proposal with optional edits; executes it unless schedule_at is in the future
// @Tags proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Param request body models.ApproveProposalRequest false "Approval"
// @Success 200 {object} execution.ApprovalResult
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/proposals/{id}/approve [post]
func (h *ProposalHandler) ApproveProposal(c *gin.Context) {
	var req models.ApproveProposalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.engine.Approve(c.Request.Context(), c.Param("id"), execution.ApproveInput{
		Overrides:  req.EditedValues,
		EditReason: req.EditReason,
		Editor:     middleware.Actor(c),
		ScheduleAt: req.ScheduleAt,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrExecutionFailed) && result != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Execution failed; proposal left approved", "result": result})
			return
		}
		if apperror.IsSafeguard(err) && result != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "result": result})
			return
		}
		respondError(c, err, "Failed to approve proposal")
		return
	}
	c.JSON(http.StatusOK, result)
}

// RejectProposal godoc
// @Summary Reject proposal
// @Description Reject a proposal in any status
// @Tags proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Param request body models.RejectProposalRequest false "Rejection"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/proposals/{id}/reject [post]
func (h *ProposalHandler) RejectProposal(c *gin.Context) {
	var req models.RejectProposalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.engine.Reject(c.Request.Context(), id, req.Reason); err != nil {
		respondError(c, err, "Failed to reject proposal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal_id": id, "status": models.StatusRejected})
}

// ExecuteProposal godoc
// @Summary Execute proposal
// @Description Execute an approved proposal directly
// @Tags proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Param request body models.ExecuteProposalRequest false "Overrides"
// @Success 200 {object} execution.ExecutionResult
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} execution.ExecutionResult
// @Router /api/v1/proposals/{id}/execute [post]
func (h *ProposalHandler) ExecuteProposal(c *gin.Context) {
	var req models.ExecuteProposalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.engine.Execute(c.Request.Context(), c.Param("id"), middleware.Actor(c), req.EditedValues)
	if err != nil {
		respondError(c, err, "Failed to execute proposal")
		return
	}
	if result.Status == execution.ExecutionFailed {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RollbackProposal godoc
// @Summary Roll back proposal
// @Description Undo the active execution of a proposal within the rollback window
// @Tags proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Param request body models.RollbackProposalRequest true "Rollback"
// @Success 200 {object} execution.RollbackResult
// @Failure 404 {object} models.ErrorResponse
// @Failure 410 {object} models.ErrorResponse
// @Failure 502 {object} execution.RollbackResult
// @Router /api/v1/proposals/{id}/rollback [post]
func (h *ProposalHandler) RollbackProposal(c *gin.Context) {
	var req models.RollbackProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.engine.Rollback(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err, "Failed to roll back proposal")
		return
	}
	if result.Status == execution.RollbackFailed {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SafeguardCheck godoc
// @Summary Safeguard pre-check
// @Description Evaluate the safeguard rules for a proposal without changing anything
// @Tags proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Param request body models.SafeguardCheckRequest false "Overrides"
// @Success 200 {object} models.SafeguardCheckResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/proposals/{id}/safeguard-check [post]
func (h *ProposalHandler) SafeguardCheck(c *gin.Context) {
	var req models.SafeguardCheckRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	resp, err := h.engine.SafeguardCheck(c.Request.Context(), c.Param("id"), req.EditedValues)
	if err != nil {
		respondError(c, err, "Failed to run safeguard check")
		return
	}
	c.JSON(http.StatusOK, resp)
}
