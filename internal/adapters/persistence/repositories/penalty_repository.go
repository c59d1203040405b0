package repositories

import (
	"context"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"

	"gorm.io/gorm"
)

// PenaltyRepository handles penalty data access
type PenaltyRepository struct {
	db *gorm.DB
}

// NewPenaltyRepository creates a new penalty repository
func NewPenaltyRepository(db *gorm.DB) *PenaltyRepository {
	return &PenaltyRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PenaltyRepository) WithTx(tx *gorm.DB) PenaltyStore {
	return &PenaltyRepository{db: tx}
}

// Create creates a new penalty
func (r *PenaltyRepository) Create(ctx context.Context, penalty *models.Penalty) error {
	return r.db.WithContext(ctx).Create(penalty).Error
}

// GetByID gets a penalty by ID
func (r *PenaltyRepository) GetByID(ctx context.Context, id uint) (*models.Penalty, error) {
	var penalty models.Penalty
	err := r.db.WithContext(ctx).
		Preload("Pharmacy").
		First(&penalty, id).Error
	return &penalty, err
}

// CountByPharmacyAndType counts a pharmacy's lifetime penalties of a type.
// All statuses count: resolving a penalty never shrinks the lifetime total
// the escalation policy is based on.
func (r *PenaltyRepository) CountByPharmacyAndType(ctx context.Context, pharmacyID uint, penaltyType domain.PenaltyType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Penalty{}).
		Where("pharmacy_id = ? AND penalty_type = ?", pharmacyID, penaltyType).
		Count(&count).Error
	return count, err
}

// UpdateStatusFrom performs a status-guarded update: the row is mutated only
// if its status is still one of from. Returns whether a row was updated.
func (r *PenaltyRepository) UpdateStatusFrom(ctx context.Context, id uint, from []domain.PenaltyStatus, to domain.PenaltyStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"penalty_status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.Penalty{}).
		Where("id = ? AND penalty_status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

// ListByPharmacy lists a pharmacy's penalties, newest first
func (r *PenaltyRepository) ListByPharmacy(ctx context.Context, pharmacyID uint, offset, limit int) ([]*models.Penalty, int64, error) {
	var penalties []*models.Penalty
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Penalty{}).Where("pharmacy_id = ?", pharmacyID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("imposed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&penalties).Error

	return penalties, total, err
}
