package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/core/domain"
	"pharmatch/internal/pkg/clock"

	"gorm.io/gorm"
)

// Payment service errors
var (
	ErrPaymentNotFound = errors.New("payment not found")
)

// errExpireSuperseded aborts the expiry transaction when the contract left
// the expirable states after this transaction's first read. Expire maps it
// to a no-op so the payment flip and the penalty roll back together.
var errExpireSuperseded = errors.New("contract no longer expirable")

// ReportPaymentInput is the pharmacy's bank-transfer report
type ReportPaymentInput struct {
	PaymentDate  time.Time `json:"payment_date"`
	TransferName string    `json:"transfer_name"`
	Note         string    `json:"note,omitempty"`
}

// PaymentService owns the payment state machine. Confirmation and expiry
// span payment and contract (and penalty) rows; each runs inside a single
// transaction so a crash mid-sequence cannot leave the entities disagreeing.
type PaymentService struct {
	db        *gorm.DB
	payments  repositories.PaymentStore
	contracts repositories.ContractStore
	contract  *ContractService
	penalty   *PenaltyService
	notifier  Notifier
	clk       clock.Clock
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	db *gorm.DB,
	payments repositories.PaymentStore,
	contracts repositories.ContractStore,
	contractService *ContractService,
	penaltyService *PenaltyService,
	notifier Notifier,
	clk clock.Clock,
) *PaymentService {
	return &PaymentService{
		db:        db,
		payments:  payments,
		contracts: contracts,
		contract:  contractService,
		penalty:   penaltyService,
		notifier:  notifier,
		clk:       clk,
	}
}

// Report records the pharmacy's claim that the fee was transferred. Legal
// only from pending: once a report is in, a second submission is rejected,
// not overwritten. Correcting a bad report goes through the admin
// ResetReport path.
func (s *PaymentService) Report(ctx context.Context, paymentID, pharmacyID uint, input *ReportPaymentInput) (*models.Payment, error) {
	payment, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.PharmacyID != pharmacyID {
		return nil, fmt.Errorf("%w: payment #%d", ErrNotAuthorized, paymentID)
	}

	if input.TransferName == "" || input.PaymentDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	now := s.clk.Now()
	ok, err := s.payments.UpdateStatusFrom(ctx, paymentID,
		[]domain.PaymentStatus{domain.PaymentPending},
		domain.PaymentReported,
		map[string]interface{}{
			"payment_date":  input.PaymentDate,
			"transfer_name": input.TransferName,
			"report_note":   input.Note,
			"reported_at":   now,
		})
	if err != nil {
		return nil, domain.Transient("payment.report", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	payment, err = s.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyPaymentReported(payment)
	}
	return payment, nil
}

// Confirm is the administrator verifying the transfer arrived. The payment
// flip and the contract activation commit in one transaction; confirming an
// already confirmed payment is ErrInvalidTransition with no side effects.
func (s *PaymentService) Confirm(ctx context.Context, paymentID uint, note string) (*models.Payment, error) {
	now := s.clk.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.payments.WithTx(tx).GetByID(ctx, paymentID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrPaymentNotFound
			}
			return domain.Transient("payment.confirm", err)
		}

		ok, err := s.payments.WithTx(tx).UpdateStatusFrom(ctx, paymentID,
			[]domain.PaymentStatus{domain.PaymentReported},
			domain.PaymentConfirmed,
			map[string]interface{}{
				"confirmed_at":      now,
				"confirmation_note": note,
			})
		if err != nil {
			return domain.Transient("payment.confirm", err)
		}
		if !ok {
			return domain.ErrInvalidTransition
		}

		activated, err := s.contract.activate(ctx, tx, payment.Contract)
		if err != nil {
			return domain.Transient("payment.confirm", err)
		}
		if !activated {
			// Contract left pending_payment under us (e.g. expired by the
			// scheduler); roll the confirmation back rather than confirm a
			// fee on a dead contract.
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyPaymentConfirmed(payment)
		if payment.Contract != nil {
			s.notifier.NotifyContractActivated(payment.Contract)
		}
	}
	return payment, nil
}

// Expire drives a deadline-crossed payment to overdue, cancels its contract
// and imposes the late-payment penalty, all in one transaction. Only the
// deadline scheduler calls this. The status guard makes a retried sweep a
// silent no-op: one penalty, never two. Returns whether this call performed
// the transition.
func (s *PaymentService) Expire(ctx context.Context, paymentID uint) (bool, error) {
	var (
		payment *models.Payment
		penalty *models.Penalty
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.payments.WithTx(tx).GetByID(ctx, paymentID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrPaymentNotFound
			}
			return domain.Transient("payment.expire", err)
		}

		// A contract cancelled by an offer rejection (or already completed)
		// owes nothing: its payment is left untouched.
		if p.Contract != nil && p.Contract.Status.Terminal() {
			return nil
		}

		ok, err := s.payments.WithTx(tx).UpdateStatusFrom(ctx, paymentID,
			[]domain.PaymentStatus{domain.PaymentPending, domain.PaymentReported},
			domain.PaymentOverdue, nil)
		if err != nil {
			return domain.Transient("payment.expire", err)
		}
		if !ok {
			// Confirmed (or already expired) since the sweep queried it.
			return nil
		}
		payment = p

		cancelled, err := s.contract.expire(ctx, tx, p.ContractID)
		if err != nil {
			return domain.Transient("payment.expire", err)
		}
		if !cancelled {
			// A rejection or confirmation committed between the first read
			// and the guarded updates. The contract owes nothing now, so
			// the whole transaction, payment flip included, must unwind.
			return errExpireSuperseded
		}

		penalty, err = s.penalty.imposeForLateContract(ctx, tx, p)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errExpireSuperseded) {
			return false, nil
		}
		return false, err
	}
	if payment == nil {
		return false, nil
	}

	if s.notifier != nil {
		s.notifier.NotifyPaymentOverdue(payment)
		if payment.Contract != nil {
			s.notifier.NotifyContractExpired(payment.Contract)
		}
		if penalty != nil {
			s.notifier.NotifyPenaltyImposed(penalty)
		}
	}
	return true, nil
}

// ResetReport is the admin-mediated correction path: it clears an inaccurate
// report and returns the payment to pending so the pharmacy can re-report.
func (s *PaymentService) ResetReport(ctx context.Context, paymentID uint) (*models.Payment, error) {
	ok, err := s.payments.UpdateStatusFrom(ctx, paymentID,
		[]domain.PaymentStatus{domain.PaymentReported},
		domain.PaymentPending,
		map[string]interface{}{
			"payment_date":  nil,
			"transfer_name": "",
			"report_note":   "",
			"reported_at":   nil,
		})
	if err != nil {
		return nil, domain.Transient("payment.reset", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	return s.GetByID(ctx, paymentID)
}

// GetByID gets a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, domain.Transient("payment.get", err)
	}
	return payment, nil
}

// GetByContractID gets the payment for a contract
func (s *PaymentService) GetByContractID(ctx context.Context, contractID uint) (*models.Payment, error) {
	payment, err := s.payments.GetByContractID(ctx, contractID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, domain.Transient("payment.get", err)
	}
	return payment, nil
}
