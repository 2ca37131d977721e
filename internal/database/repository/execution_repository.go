package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type ExecutionRepository struct {
	db *gorm.DB
}

func NewExecutionRepository(db *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ExecutionRepository) WithTx(tx *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{db: tx}
}

// Create creates a new execution record
func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	return r.db.WithContext(ctx).Create(execution).Error
}

// GetActiveByProposalID retrieves the execution that has not been rolled back
func (r *ExecutionRepository) GetActiveByProposalID(ctx context.Context, proposalID string) (*models.Execution, error) {
	var execution models.Execution
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND rolled_back_at IS NULL", proposalID).
		Order("executed_at DESC").
		First(&execution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("execution for proposal", proposalID)
		}
		return nil, err
	}
	return &execution, nil
}

// GetLatestByProposalID retrieves the most recent execution, rolled back or not
func (r *ExecutionRepository) GetLatestByProposalID(ctx context.Context, proposalID string) (*models.Execution, error) {
	var execution models.Execution
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("executed_at DESC").
		First(&execution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("execution for proposal", proposalID)
		}
		return nil, err
	}
	return &execution, nil
}

// ListByProposalID retrieves the execution history of a proposal, oldest first
func (r *ExecutionRepository) ListByProposalID(ctx context.Context, proposalID string) ([]models.Execution, error) {
	var executions []models.Execution
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("executed_at ASC").
		Find(&executions).Error
	return executions, err
}

// Update updates an execution
func (r *ExecutionRepository) Update(ctx context.Context, execution *models.Execution) error {
	return r.db.WithContext(ctx).Save(execution).Error
}
