package repositories

import (
	"context"

	"pharmatch/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// PharmacyRepository handles pharmacy data access
type PharmacyRepository struct {
	db *gorm.DB
}

// NewPharmacyRepository creates a new pharmacy repository
func NewPharmacyRepository(db *gorm.DB) *PharmacyRepository {
	return &PharmacyRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PharmacyRepository) WithTx(tx *gorm.DB) PharmacyStore {
	return &PharmacyRepository{db: tx}
}

// Create creates a new pharmacy
func (r *PharmacyRepository) Create(ctx context.Context, pharmacy *models.Pharmacy) error {
	return r.db.WithContext(ctx).Create(pharmacy).Error
}

// GetByID gets a pharmacy by ID
func (r *PharmacyRepository) GetByID(ctx context.Context, id uint) (*models.Pharmacy, error) {
	var pharmacy models.Pharmacy
	err := r.db.WithContext(ctx).First(&pharmacy, id).Error
	return &pharmacy, err
}

// GetByUserID gets a pharmacy by owning user ID
func (r *PharmacyRepository) GetByUserID(ctx context.Context, userID uint) (*models.Pharmacy, error) {
	var pharmacy models.Pharmacy
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pharmacy).Error
	return &pharmacy, err
}

// UpdateStanding updates account-standing fields (is_active,
// permanently_suspended). Only the account standing service calls this.
func (r *PharmacyRepository) UpdateStanding(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Pharmacy{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementPenaltyCount bumps the lifetime penalty counter
func (r *PharmacyRepository) IncrementPenaltyCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Pharmacy{}).Where("id = ?", id).
		Update("penalty_count", gorm.Expr("penalty_count + 1")).Error
}
