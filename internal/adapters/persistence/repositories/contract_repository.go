package repositories

import (
	"context"
	"errors"
	"time"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"

	"gorm.io/gorm"
)

// ContractRepository handles contract data access
type ContractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ContractRepository) WithTx(tx *gorm.DB) ContractStore {
	return &ContractRepository{db: tx}
}

// Create creates a new contract
func (r *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

// GetByID gets a contract with all relations
func (r *ContractRepository) GetByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Pharmacy").
		Preload("Pharmacist").
		Preload("JobPosting").
		Preload("Payment").
		First(&contract, id).Error
	return &contract, err
}

// GetByApplicationID gets the contract created for an application
func (r *ContractRepository) GetByApplicationID(ctx context.Context, applicationID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("application_id = ?", applicationID).
		First(&contract).Error
	return &contract, err
}

// ExistsByApplicationID checks whether a contract already exists for an
// application
func (r *ContractRepository) ExistsByApplicationID(ctx context.Context, applicationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("application_id = ?", applicationID).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatusFrom performs a status-guarded update: the row is mutated only
// if its status is still one of from. Exactly one of a racing user action and
// the scheduler's expiry can win; the loser sees zero rows affected.
func (r *ContractRepository) UpdateStatusFrom(ctx context.Context, id uint, from []domain.ContractStatus, to domain.ContractStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

// ListByPharmacy lists a pharmacy's contracts, newest first
func (r *ContractRepository) ListByPharmacy(ctx context.Context, pharmacyID uint, offset, limit int) ([]*models.Contract, int64, error) {
	return r.list(ctx, "pharmacy_id = ?", pharmacyID, offset, limit)
}

// ListByPharmacist lists a pharmacist's contracts, newest first
func (r *ContractRepository) ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Contract, int64, error) {
	return r.list(ctx, "pharmacist_id = ?", pharmacistID, offset, limit)
}

func (r *ContractRepository) list(ctx context.Context, cond string, arg uint, offset, limit int) ([]*models.Contract, int64, error) {
	var contracts []*models.Contract
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Contract{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Pharmacy").
		Preload("Pharmacist").
		Preload("Payment").
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&contracts).Error

	return contracts, total, err
}

// ListActiveEndedBefore lists active contracts whose engagement ended before
// cutoff. The completion sweep drives these to completed.
func (r *ContractRepository) ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", domain.ContractActive, cutoff).
		Order("end_date ASC").
		Find(&contracts).Error
	return contracts, err
}

// IsNotFound reports whether err is a missing-row error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
