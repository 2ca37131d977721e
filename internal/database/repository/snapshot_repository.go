package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *SnapshotRepository) WithTx(tx *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: tx}
}

// Upsert inserts a snapshot or replaces the fields of the existing one with
// the same proposal and type, then returns the stored row.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *models.Snapshot) (*models.Snapshot, error) {
	snapshot.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "proposal_id"}, {Name: "snapshot_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"campaign_ref", "period_start", "period_end",
			"cost", "conversions", "cpa", "ctr", "roas",
			"impressions", "clicks", "conversion_value", "updated_at",
		}),
	}).Create(snapshot).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, snapshot.ProposalID, snapshot.SnapshotType)
}

// Get retrieves the snapshot of the given type, or nil if there is none
func (r *SnapshotRepository) Get(ctx context.Context, proposalID string, snapshotType models.SnapshotType) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND snapshot_type = ?", proposalID, snapshotType).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// ListByProposalID retrieves all snapshots of a proposal
func (r *SnapshotRepository) ListByProposalID(ctx context.Context, proposalID string) ([]models.Snapshot, error) {
	var snapshots []models.Snapshot
	err := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).Find(&snapshots).Error
	return snapshots, err
}

// DeleteByType deletes the snapshot of the given type
func (r *SnapshotRepository) DeleteByType(ctx context.Context, proposalID string, snapshotType models.SnapshotType) error {
	return r.db.WithContext(ctx).
		Where("proposal_id = ? AND snapshot_type = ?", proposalID, snapshotType).
		Delete(&models.Snapshot{}).Error
}
