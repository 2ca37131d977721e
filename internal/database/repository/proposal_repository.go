package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProposalRepository) WithTx(tx *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: tx}
}

// ProposalFilter narrows a proposal listing
type ProposalFilter struct {
	Status   models.ProposalStatus
	Category models.ProposalCategory
	Offset   int
	Limit    int
}

// Create creates a new proposal
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

// GetByID retrieves a proposal by ID
func (r *ProposalRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).First(&proposal, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("proposal", id)
		}
		return nil, err
	}
	return &proposal, nil
}

// GetByIDForUpdate retrieves a proposal and locks its row until the
// surrounding transaction ends. Dialects without row locks ignore the clause.
func (r *ProposalRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&proposal, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("proposal", id)
		}
		return nil, err
	}
	return &proposal, nil
}

// List retrieves proposals matching filter, newest first, with the total count
func (r *ProposalRepository) List(ctx context.Context, filter ProposalFilter) ([]models.Proposal, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Proposal{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proposals []models.Proposal
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := query.Order("created_at DESC").Find(&proposals).Error
	return proposals, total, err
}

// TransitionStatus moves a proposal from one status to another only if it is
// still in from. It reports whether the row was updated.
func (r *ProposalRepository) TransitionStatus(ctx context.Context, id string, from, to models.ProposalStatus, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to, "updated_at": time.Now().UTC()}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetStatus sets the status regardless of the current one
func (r *ProposalRepository) SetStatus(ctx context.Context, id string, status models.ProposalStatus) error {
	return r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()}).Error
}

// UpdateSpec replaces the action specification, optionally setting status too
func (r *ProposalRepository) UpdateSpec(ctx context.Context, id string, spec models.ActionSpec, status models.ProposalStatus) error {
	updates := map[string]interface{}{
		"action_steps": datatypes.NewJSONType(spec),
		"updated_at":   time.Now().UTC(),
	}
	if status != "" {
		updates["status"] = status
	}
	return r.db.WithContext(ctx).Model(&models.Proposal{}).Where("id = ?", id).Updates(updates).Error
}

// ListPendingWithTargetCampaign retrieves pending proposals that name a target campaign
func (r *ProposalRepository) ListPendingWithTargetCampaign(ctx context.Context) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.WithContext(ctx).
		Where("status = ? AND target_campaign IS NOT NULL AND target_campaign <> ''", models.StatusPending).
		Order("created_at ASC").
		Find(&proposals).Error
	return proposals, err
}

// ListDueScheduled retrieves approved proposals whose scheduled time has passed
func (r *ProposalRepository) ListDueScheduled(ctx context.Context, now time.Time) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.StatusApproved, now).
		Order("scheduled_at ASC").
		Find(&proposals).Error
	return proposals, err
}

// ListNeedingAfterSnapshot retrieves executed proposals with a before snapshot,
// no after snapshot, and an active execution at or before cutoff.
func (r *ProposalRepository) ListNeedingAfterSnapshot(ctx context.Context, cutoff time.Time) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusExecuted).
		Where(`EXISTS (SELECT 1 FROM proposal_executions e
			WHERE e.proposal_id = improvement_proposals.id AND e.rolled_back_at IS NULL AND e.executed_at <= ?)`, cutoff).
		Where(`EXISTS (SELECT 1 FROM proposal_snapshots s
			WHERE s.proposal_id = improvement_proposals.id AND s.snapshot_type = ?)`, models.SnapshotBefore).
		Where(`NOT EXISTS (SELECT 1 FROM proposal_snapshots s
			WHERE s.proposal_id = improvement_proposals.id AND s.snapshot_type = ?)`, models.SnapshotAfter).
		Order("created_at ASC").
		Find(&proposals).Error
	return proposals, err
}

// ListExecuted retrieves every executed proposal
func (r *ProposalRepository) ListExecuted(ctx context.Context) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusExecuted).
		Order("updated_at DESC").
		Find(&proposals).Error
	return proposals, err
}
