package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ResultRepository) WithTx(tx *gorm.DB) *ResultRepository {
	return &ResultRepository{db: tx}
}

// Create creates a new result
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// ListByProposalID retrieves results of a proposal, newest first
func (r *ResultRepository) ListByProposalID(ctx context.Context, proposalID string) ([]models.Result, error) {
	var results []models.Result
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at DESC").
		Find(&results).Error
	return results, err
}
