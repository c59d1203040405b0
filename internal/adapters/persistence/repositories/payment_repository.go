package repositories

import (
	"context"
	"time"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"

	"gorm.io/gorm"
)

// PaymentRepository handles payment data access
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PaymentRepository) WithTx(tx *gorm.DB) PaymentStore {
	return &PaymentRepository{db: tx}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment with its contract
func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Contract").
		First(&payment, id).Error
	return &payment, err
}

// GetByContractID gets the payment for a contract
func (r *PaymentRepository) GetByContractID(ctx context.Context, contractID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Where("contract_id = ?", contractID).
		First(&payment).Error
	return &payment, err
}

// UpdateStatusFrom performs a status-guarded update: the row is mutated only
// if its status is still one of from. Returns whether a row was updated.
func (r *PaymentRepository) UpdateStatusFrom(ctx context.Context, id uint, from []domain.PaymentStatus, to domain.PaymentStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"payment_status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND payment_status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

// ListDeadlineElapsed lists unconfirmed payments whose contract's fee
// deadline has passed. Payments whose contract is already terminal are
// excluded: a rejected offer leaves its payment pending forever, never
// overdue. This is the deadline scheduler's work queue; it is re-derived
// from row status each tick, so a stopped or retried sweep loses nothing.
func (r *PaymentRepository) ListDeadlineElapsed(ctx context.Context, now time.Time) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = payments.contract_id").
		Where("payments.payment_status IN ? AND contracts.status IN ? AND contracts.payment_deadline < ?",
			[]domain.PaymentStatus{domain.PaymentPending, domain.PaymentReported},
			[]domain.ContractStatus{domain.ContractPendingApproval, domain.ContractPendingPayment},
			now).
		Preload("Contract").
		Find(&payments).Error
	return payments, err
}
