package services

import (
	"context"
	"fmt"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/utils"
)

type ProposalService struct {
	proposalRepo  *repository.ProposalRepository
	executionRepo *repository.ExecutionRepository
}

func NewProposalService(proposalRepo *repository.ProposalRepository, executionRepo *repository.ExecutionRepository) *ProposalService {
	return &ProposalService{proposalRepo: proposalRepo, executionRepo: executionRepo}
}

// ProposalDetail is a proposal with its execution history
type ProposalDetail struct {
	models.Proposal
	Executions []models.Execution `json:"executions"`
}

// CreateProposal stores a generated proposal as pending
func (s *ProposalService) CreateProposal(ctx context.Context, req *models.CreateProposalRequest) (*models.Proposal, error) {
	spec := req.ActionSpec
	if spec.Kind == "" {
		spec.Kind = models.ActionSpecSteps
	}
	if err := spec.Validate(); err != nil {
		return nil, &apperror.ValidationError{Violations: []string{err.Error()}}
	}
	if req.Category == models.CategoryAdCopy && spec.Kind != models.ActionSpecAdCopy {
		return nil, &apperror.ValidationError{Violations: []string{"ad_copy proposals need a structured ad_copy_change specification"}}
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	proposal := &models.Proposal{
		ReportID:       req.ReportID,
		Category:       req.Category,
		Priority:       priority,
		Title:          req.Title,
		Description:    req.Description,
		ExpectedEffect: req.ExpectedEffect,
		TargetCampaign: req.TargetCampaign,
		TargetAdGroup:  req.TargetAdGroup,
		Status:         models.StatusPending,
	}
	proposal.SetSpec(spec)

	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return proposal, nil
}

// GetProposal returns a proposal with its executions
func (s *ProposalService) GetProposal(ctx context.Context, id string) (*ProposalDetail, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	executions, err := s.executionRepo.ListByProposalID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load executions: %w", err)
	}
	return &ProposalDetail{Proposal: *proposal, Executions: executions}, nil
}

// ListProposals returns a page of proposals, newest first
func (s *ProposalService) ListProposals(ctx context.Context, status models.ProposalStatus, category models.ProposalCategory, page, pageSize int) (*models.ProposalListResponse, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)
	proposals, total, err := s.proposalRepo.List(ctx, repository.ProposalFilter{
		Status:   status,
		Category: category,
		Offset:   utils.CalculateOffset(page, pageSize),
		Limit:    pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	info := utils.CalculatePaginationInfo(int(total), page, pageSize)
	return &models.ProposalListResponse{
		Proposals:  proposals,
		Total:      info.Total,
		Page:       info.Page,
		PageSize:   info.PageSize,
		TotalPages: info.TotalPages,
	}, nil
}
