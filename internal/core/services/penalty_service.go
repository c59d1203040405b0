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

	"gorm.io/gorm"
)

// Penalty service errors
var (
	ErrPenaltyNotFound = errors.New("penalty not found")
)

// PenaltyService creates and escalates sanctions against pharmacies. Only
// the deadline scheduler imposes penalties; only an administrator resolves
// them.
type PenaltyService struct {
	db        *gorm.DB
	penalties repositories.PenaltyStore
	account   *AccountStandingService
	notifier  Notifier
	clk       clock.Clock
}

// NewPenaltyService creates a new penalty service
func NewPenaltyService(
	db *gorm.DB,
	penalties repositories.PenaltyStore,
	account *AccountStandingService,
	notifier Notifier,
	clk clock.Clock,
) *PenaltyService {
	return &PenaltyService{
		db:        db,
		penalties: penalties,
		account:   account,
		notifier:  notifier,
		clk:       clk,
	}
}

// imposeForLateContract records a payment_delay penalty and escalates the
// pharmacy's standing. Runs inside the payment-expiry transaction so a crash
// can never leave an overdue payment with no penalty behind it.
//
// Escalation counts the pharmacy's lifetime payment_delay penalties, resolved
// ones included: the first offense suspends temporarily, the second and any
// later one suspends permanently.
func (s *PenaltyService) imposeForLateContract(ctx context.Context, tx *gorm.DB, payment *models.Payment) (*models.Penalty, error) {
	prior, err := s.penalties.WithTx(tx).CountByPharmacyAndType(ctx, payment.PharmacyID, domain.PenaltyPaymentDelay)
	if err != nil {
		return nil, domain.Transient("penalty.impose", err)
	}

	contract := payment.Contract
	reason := fmt.Sprintf("platform fee %d yen (reference %s) for contract #%d unpaid past deadline",
		payment.Amount, payment.ReferenceNo, payment.ContractID)
	if contract != nil {
		reason = fmt.Sprintf("platform fee %d yen (reference %s) for contract #%d unpaid past deadline %s",
			payment.Amount, payment.ReferenceNo, contract.ID, contract.PaymentDeadline.Format("2006-01-02"))
	}

	penalty := &models.Penalty{
		PharmacyID:    payment.PharmacyID,
		ContractID:    payment.ContractID,
		PenaltyType:   domain.PenaltyPaymentDelay,
		Reason:        reason,
		PenaltyStatus: domain.PenaltyActive,
		ImposedAt:     s.clk.Now(),
	}
	if err := s.penalties.WithTx(tx).Create(ctx, penalty); err != nil {
		return nil, domain.Transient("penalty.impose", err)
	}

	if err := s.account.pharmacies.WithTx(tx).IncrementPenaltyCount(ctx, payment.PharmacyID); err != nil {
		return nil, domain.Transient("penalty.impose", err)
	}

	if prior == 0 {
		if err := s.account.suspendTemporary(ctx, tx, payment.PharmacyID, reason); err != nil {
			return nil, domain.Transient("penalty.impose", err)
		}
	} else {
		if err := s.account.suspendPermanent(ctx, tx, payment.PharmacyID,
			fmt.Sprintf("repeat payment delay (offense %d): %s", prior+1, reason)); err != nil {
			return nil, domain.Transient("penalty.impose", err)
		}
	}

	log.Printf("⚠️ Penalty #%d imposed on pharmacy #%d (payment_delay, prior: %d)", penalty.ID, payment.PharmacyID, prior)
	return penalty, nil
}

// Resolve closes a penalty after the administrator has verified the unpaid
// amount was settled; the mandatory note is the audit trail of that check.
// Resolving reinstates a temporarily suspended pharmacy; a permanently
// suspended one stays suspended. Rejecting an appeal is a Resolve whose note
// records the rejection.
func (s *PenaltyService) Resolve(ctx context.Context, penaltyID uint, note string) (*models.Penalty, error) {
	if note == "" {
		return nil, domain.ErrInvalidInput
	}

	penalty, err := s.GetByID(ctx, penaltyID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.penalties.WithTx(tx).UpdateStatusFrom(ctx, penaltyID,
			[]domain.PenaltyStatus{domain.PenaltyActive, domain.PenaltyAppealSubmitted},
			domain.PenaltyResolved,
			map[string]interface{}{
				"resolved_at":     now,
				"resolution_note": note,
			})
		if err != nil {
			return domain.Transient("penalty.resolve", err)
		}
		if !ok {
			return domain.ErrInvalidTransition
		}

		if penalty.PenaltyType == domain.PenaltyPaymentDelay {
			return s.account.reinstate(ctx, tx, penalty.PharmacyID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	penalty, err = s.GetByID(ctx, penaltyID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyPenaltyResolved(penalty)
	}
	return penalty, nil
}

// SubmitAppeal lets the sanctioned pharmacy contest an active penalty.
func (s *PenaltyService) SubmitAppeal(ctx context.Context, penaltyID, pharmacyID uint, reason string) (*models.Penalty, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}

	penalty, err := s.GetByID(ctx, penaltyID)
	if err != nil {
		return nil, err
	}
	if penalty.PharmacyID != pharmacyID {
		return nil, fmt.Errorf("%w: penalty #%d", ErrNotAuthorized, penaltyID)
	}

	ok, err := s.penalties.UpdateStatusFrom(ctx, penaltyID,
		[]domain.PenaltyStatus{domain.PenaltyActive},
		domain.PenaltyAppealSubmitted,
		map[string]interface{}{"appeal_reason": reason})
	if err != nil {
		return nil, domain.Transient("penalty.appeal", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	return s.GetByID(ctx, penaltyID)
}

// GetByID gets a penalty by ID
func (s *PenaltyService) GetByID(ctx context.Context, id uint) (*models.Penalty, error) {
	penalty, err := s.penalties.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrPenaltyNotFound
		}
		return nil, domain.Transient("penalty.get", err)
	}
	return penalty, nil
}

// ListByPharmacy lists a pharmacy's penalties
func (s *PenaltyService) ListByPharmacy(ctx context.Context, pharmacyID uint, offset, limit int) ([]*models.Penalty, int64, error) {
	return s.penalties.ListByPharmacy(ctx, pharmacyID, offset, limit)
}
