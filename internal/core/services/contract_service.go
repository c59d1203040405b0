package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/core/domain"
	"pharmatch/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contract service errors
var (
	ErrContractNotFound = errors.New("contract not found")
	ErrNotAuthorized    = errors.New("not authorized")
)

// ContractService owns the contract state machine. Every status mutation is
// a guarded update, so a racing user action and a scheduler sweep can never
// both win.
type ContractService struct {
	db         *gorm.DB
	contracts  repositories.ContractStore
	payments   repositories.PaymentStore
	pharmacies repositories.PharmacyStore
	postings   repositories.JobPostingStore
	notifier   Notifier
	clk        clock.Clock
}

// NewContractService creates a new contract service
func NewContractService(
	db *gorm.DB,
	contracts repositories.ContractStore,
	payments repositories.PaymentStore,
	pharmacies repositories.PharmacyStore,
	postings repositories.JobPostingStore,
	notifier Notifier,
	clk clock.Clock,
) *ContractService {
	return &ContractService{
		db:         db,
		contracts:  contracts,
		payments:   payments,
		pharmacies: pharmacies,
		postings:   postings,
		notifier:   notifier,
		clk:        clk,
	}
}

// createFromApplication creates the binding contract plus its companion fee
// invoice the instant an application is accepted. Runs inside the acceptance
// transaction: the application flip, the contract and the payment commit or
// roll back together.
func (s *ContractService) createFromApplication(ctx context.Context, tx *gorm.DB, app *models.Application) (*models.Contract, error) {
	exists, err := s.contracts.WithTx(tx).ExistsByApplicationID(ctx, app.ID)
	if err != nil {
		return nil, domain.Transient("contract.create", err)
	}
	if exists {
		log.Printf("❌ Contract already exists for application #%d", app.ID)
		return nil, domain.ErrDuplicateContract
	}

	posting := app.JobPosting
	if posting == nil {
		return nil, ErrContractNotFound
	}

	pharmacy, err := s.pharmacies.WithTx(tx).GetByID(ctx, posting.PharmacyID)
	if err != nil {
		return nil, domain.Transient("contract.create", err)
	}
	if pharmacy.Suspended() {
		return nil, domain.ErrAccountSuspended
	}

	total, fee, err := domain.ComputeFinancials(posting.DailyWage, posting.WorkDays)
	if err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ApplicationID:     app.ID,
		PharmacyID:        posting.PharmacyID,
		PharmacistID:      app.PharmacistID,
		JobPostingID:      posting.ID,
		InitialWorkDate:   posting.InitialWorkDate,
		WorkDays:          posting.WorkDays,
		DailyWage:         posting.DailyWage,
		TotalCompensation: total,
		PlatformFee:       fee,
		PaymentDeadline:   domain.PaymentDeadlineFor(posting.InitialWorkDate),
		EndDate:           domain.EngagementEndFor(posting.InitialWorkDate, posting.WorkDays),
		Status:            domain.ContractPendingApproval,
	}
	if err := s.contracts.WithTx(tx).Create(ctx, contract); err != nil {
		return nil, domain.Transient("contract.create", err)
	}

	payment := &models.Payment{
		ContractID:    contract.ID,
		PharmacyID:    contract.PharmacyID,
		ReferenceNo:   uuid.New().String(),
		Amount:        fee,
		PaymentStatus: domain.PaymentPending,
	}
	if err := s.payments.WithTx(tx).Create(ctx, payment); err != nil {
		return nil, domain.Transient("contract.create", err)
	}
	contract.Payment = payment

	return contract, nil
}

// Approve is the pharmacist's acceptance of the offer terms (distinct from
// the pharmacy accepting the application). Moves the contract from
// pending_approval to pending_payment. Approving an already pending_payment
// contract is an idempotent no-op.
func (s *ContractService) Approve(ctx context.Context, contractID, pharmacistID uint) (*models.Contract, error) {
	contract, err := s.getOwned(ctx, contractID, 0, pharmacistID)
	if err != nil {
		return nil, err
	}

	if contract.Status == domain.ContractPendingPayment {
		return contract, nil
	}

	ok, err := s.contracts.UpdateStatusFrom(ctx, contractID,
		[]domain.ContractStatus{domain.ContractPendingApproval},
		domain.ContractPendingPayment, nil)
	if err != nil {
		return nil, domain.Transient("contract.approve", err)
	}
	if !ok {
		// Lost a race: re-read to distinguish the idempotent case from a
		// genuinely illegal transition.
		current, rerr := s.contracts.GetByID(ctx, contractID)
		if rerr == nil && current.Status == domain.ContractPendingPayment {
			return current, nil
		}
		return nil, domain.ErrInvalidTransition
	}

	contract, err = s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, domain.Transient("contract.approve", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyOfferApproved(contract)
	}
	return contract, nil
}

// RejectOffer is the pharmacist declining the offer while the contract is
// still pending_approval. The contract is cancelled; the companion payment
// is left untouched and no penalty is created.
func (s *ContractService) RejectOffer(ctx context.Context, contractID, pharmacistID uint) (*models.Contract, error) {
	if _, err := s.getOwned(ctx, contractID, 0, pharmacistID); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	ok, err := s.contracts.UpdateStatusFrom(ctx, contractID,
		[]domain.ContractStatus{domain.ContractPendingApproval},
		domain.ContractCancelled,
		map[string]interface{}{"cancelled_at": now})
	if err != nil {
		return nil, domain.Transient("contract.reject", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, domain.Transient("contract.reject", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyOfferRejected(contract)
	}
	return contract, nil
}

// activate moves pending_payment → active and marks the posting filled.
// Only payment confirmation reaches here, which is what guarantees "active
// implies fee confirmed". Runs inside the confirmation transaction; returns
// false when the contract is no longer pending_payment.
func (s *ContractService) activate(ctx context.Context, tx *gorm.DB, contract *models.Contract) (bool, error) {
	now := s.clk.Now()
	ok, err := s.contracts.WithTx(tx).UpdateStatusFrom(ctx, contract.ID,
		[]domain.ContractStatus{domain.ContractPendingPayment},
		domain.ContractActive,
		map[string]interface{}{"activated_at": now})
	if err != nil || !ok {
		return ok, err
	}

	if err := s.postings.WithTx(tx).MarkFilled(ctx, contract.JobPostingID); err != nil {
		return false, err
	}
	return true, nil
}

// expire cancels a contract on a missed fee deadline, whether the offer was
// already approved or still awaiting the pharmacist. A contract that is
// already active or cancelled reports false, never an error; the caller
// decides whether to unwind its transaction.
func (s *ContractService) expire(ctx context.Context, tx *gorm.DB, contractID uint) (bool, error) {
	now := s.clk.Now()
	return s.contracts.WithTx(tx).UpdateStatusFrom(ctx, contractID,
		[]domain.ContractStatus{domain.ContractPendingApproval, domain.ContractPendingPayment},
		domain.ContractCancelled,
		map[string]interface{}{"cancelled_at": now})
}

// Complete moves active → completed at the end of the engagement. Called by
// the completion sweep and by the admin surface.
func (s *ContractService) Complete(ctx context.Context, contractID uint) (*models.Contract, error) {
	now := s.clk.Now()
	ok, err := s.contracts.UpdateStatusFrom(ctx, contractID,
		[]domain.ContractStatus{domain.ContractActive},
		domain.ContractCompleted,
		map[string]interface{}{"completed_at": now})
	if err != nil {
		return nil, domain.Transient("contract.complete", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, domain.Transient("contract.complete", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyContractCompleted(contract)
	}
	return contract, nil
}

// GetByID gets a contract by ID
func (s *ContractService) GetByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrContractNotFound
		}
		return nil, domain.Transient("contract.get", err)
	}
	return contract, nil
}

// ListByPharmacy lists a pharmacy's contracts
func (s *ContractService) ListByPharmacy(ctx context.Context, pharmacyID uint, offset, limit int) ([]*models.Contract, int64, error) {
	return s.contracts.ListByPharmacy(ctx, pharmacyID, offset, limit)
}

// ListByPharmacist lists a pharmacist's contracts
func (s *ContractService) ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Contract, int64, error) {
	return s.contracts.ListByPharmacist(ctx, pharmacistID, offset, limit)
}

// getOwned fetches a contract and verifies the caller is a party to it.
// Pass zero for the party that is not asserting ownership.
func (s *ContractService) getOwned(ctx context.Context, contractID, pharmacyID, pharmacistID uint) (*models.Contract, error) {
	contract, err := s.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if pharmacyID != 0 && contract.PharmacyID != pharmacyID {
		return nil, fmt.Errorf("%w: contract #%d", ErrNotAuthorized, contractID)
	}
	if pharmacistID != 0 && contract.PharmacistID != pharmacistID {
		return nil, fmt.Errorf("%w: contract #%d", ErrNotAuthorized, contractID)
	}
	return contract, nil
}
