package repositories

import (
	"context"

	"pharmatch/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// PharmacistRepository handles pharmacist data access
type PharmacistRepository struct {
	db *gorm.DB
}

// NewPharmacistRepository creates a new pharmacist repository
func NewPharmacistRepository(db *gorm.DB) *PharmacistRepository {
	return &PharmacistRepository{db: db}
}

// Create creates a new pharmacist
func (r *PharmacistRepository) Create(ctx context.Context, pharmacist *models.Pharmacist) error {
	return r.db.WithContext(ctx).Create(pharmacist).Error
}

// GetByID gets a pharmacist by ID
func (r *PharmacistRepository) GetByID(ctx context.Context, id uint) (*models.Pharmacist, error) {
	var pharmacist models.Pharmacist
	err := r.db.WithContext(ctx).First(&pharmacist, id).Error
	return &pharmacist, err
}

// GetByUserID gets a pharmacist by login account
func (r *PharmacistRepository) GetByUserID(ctx context.Context, userID uint) (*models.Pharmacist, error) {
	var pharmacist models.Pharmacist
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pharmacist).Error
	return &pharmacist, err
}
