package services

import (
	"context"
	"testing"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReport_RecordsTransferDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.contracts.Approve(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)

	payment, err := env.payments.Report(ctx, contract.Payment.ID, pharmacy.ID, &ReportPaymentInput{
		PaymentDate:  baseTime,
		TransferName: "sakura pharmacy co ltd",
		Note:         "paid from main account",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentReported, payment.PaymentStatus)
	assert.Equal(t, "sakura pharmacy co ltd", payment.TransferName)
	assert.Equal(t, "paid from main account", payment.ReportNote)
	require.NotNil(t, payment.PaymentDate)
	require.NotNil(t, payment.ReportedAt)
	assert.Equal(t, 1, env.notifier.Count("payment.reported"))
}

func TestReport_SecondReportRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	payment := env.reportedPayment(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.payments.Report(ctx, payment.ID, pharmacy.ID, &ReportPaymentInput{
		PaymentDate:  baseTime,
		TransferName: "second attempt",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// The first report was not overwritten.
	got, err := env.payments.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "sakura pharmacy co ltd", got.TransferName)
}

func TestReport_ValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.payments.Report(ctx, contract.Payment.ID, pharmacy.ID, &ReportPaymentInput{
		PaymentDate: baseTime,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.payments.Report(ctx, contract.Payment.ID, pharmacy.ID, &ReportPaymentInput{
		TransferName: "sakura pharmacy co ltd",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReport_WrongPharmacy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)
	other := env.seedPharmacy(t, "rival-pharmacy")

	_, err := env.payments.Report(ctx, contract.Payment.ID, other.ID, &ReportPaymentInput{
		PaymentDate:  baseTime,
		TransferName: "rival",
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

// End-to-end: accept → approve → report → confirm activates the contract
// and discloses contact details.
func TestConfirm_ActivatesContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	payment := env.reportedPayment(t, posting, pharmacist.ID, pharmacy.ID)

	confirmed, err := env.payments.Confirm(ctx, payment.ID, "statement line 42")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentConfirmed, confirmed.PaymentStatus)
	assert.Equal(t, "statement line 42", confirmed.ConfirmationNote)
	require.NotNil(t, confirmed.ConfirmedAt)

	contract, err := env.contracts.GetByID(ctx, payment.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractActive, contract.Status)
	require.NotNil(t, contract.ActivatedAt)
	assert.True(t, contract.ToResponse().ContactDisclosed)

	filled, err := env.postings.GetByID(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostingFilled, filled.Status)

	assert.Equal(t, 1, env.notifier.Count("payment.confirmed"))
	assert.Equal(t, 1, env.notifier.Count("contract.activated"))
}

func TestConfirm_TwiceIsInvalidWithNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	payment := env.reportedPayment(t, posting, pharmacist.ID, pharmacy.ID)

	first, err := env.payments.Confirm(ctx, payment.ID, "statement line 42")
	require.NoError(t, err)

	_, err = env.payments.Confirm(ctx, payment.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := env.payments.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "statement line 42", got.ConfirmationNote)
	assert.WithinDuration(t, *first.ConfirmedAt, *got.ConfirmedAt, 0)
	assert.Equal(t, 1, env.notifier.Count("payment.confirmed"))
}

func TestConfirm_WithoutReportRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.payments.Confirm(ctx, contract.Payment.ID, "nothing arrived")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// End-to-end: the deadline passes with the payment still pending. The
// payment goes overdue, the contract is cancelled and exactly one
// payment_delay penalty exists.
func TestExpire_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.contracts.Approve(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)

	did, err := env.payments.Expire(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.True(t, did)

	payment, err := env.payments.GetByID(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentOverdue, payment.PaymentStatus)

	got, err := env.contracts.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractCancelled, got.Status)

	var penalties []models.Penalty
	require.NoError(t, env.db.Where("pharmacy_id = ?", pharmacy.ID).Find(&penalties).Error)
	require.Len(t, penalties, 1)
	assert.Equal(t, domain.PenaltyPaymentDelay, penalties[0].PenaltyType)
	assert.Equal(t, domain.PenaltyActive, penalties[0].PenaltyStatus)

	isActive, permanent, count, err := env.account.GetStanding(ctx, pharmacy.ID)
	require.NoError(t, err)
	assert.False(t, isActive)
	assert.False(t, permanent)
	assert.Equal(t, 1, count)

	assert.Equal(t, 1, env.notifier.Count("payment.overdue"))
	assert.Equal(t, 1, env.notifier.Count("contract.expired"))
	assert.Equal(t, 1, env.notifier.Count("penalty.imposed"))
}

func TestExpire_TwiceImposesOnePenalty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.contracts.Approve(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)

	did, err := env.payments.Expire(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.True(t, did)

	did, err = env.payments.Expire(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.False(t, did)

	var penalties int64
	env.db.Model(&models.Penalty{}).Count(&penalties)
	assert.Equal(t, int64(1), penalties)
	assert.Equal(t, 1, env.notifier.Count("penalty.imposed"))
}

func TestExpire_ConfirmedPaymentUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	payment := env.reportedPayment(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.payments.Confirm(ctx, payment.ID, "statement line 42")
	require.NoError(t, err)

	did, err := env.payments.Expire(ctx, payment.ID)
	require.NoError(t, err)
	assert.False(t, did)

	got, err := env.payments.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentConfirmed, got.PaymentStatus)

	var penalties int64
	env.db.Model(&models.Penalty{}).Count(&penalties)
	assert.Zero(t, penalties)
}

func TestExpire_RejectedContractUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.contracts.RejectOffer(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)

	did, err := env.payments.Expire(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.False(t, did)

	got, err := env.payments.GetByID(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)

	var penalties int64
	env.db.Model(&models.Penalty{}).Count(&penalties)
	assert.Zero(t, penalties)
}

func TestExpire_RejectionWinningMidTransactionRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	// Cancel the contract right before the payment row is updated, after
	// the expiry transaction has already read and vetted it. The guarded
	// contract update must then hit zero rows and unwind the whole
	// transaction: no overdue flip, no penalty.
	fired := false
	err := env.db.Callback().Update().Before("gorm:update").
		Register("cancel_contract_before_payment_flip", func(tx *gorm.DB) {
			if fired {
				return
			}
			if _, ok := tx.Statement.Model.(*models.Payment); !ok {
				return
			}
			fired = true
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Contract{}).
				Where("id = ?", contract.ID).
				Update("status", domain.ContractCancelled)
		})
	require.NoError(t, err)
	t.Cleanup(func() {
		env.db.Callback().Update().Remove("cancel_contract_before_payment_flip")
	})

	did, err := env.payments.Expire(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.False(t, did)
	require.True(t, fired)

	got, err := env.payments.GetByID(ctx, contract.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)

	var penalties int64
	env.db.Model(&models.Penalty{}).Count(&penalties)
	assert.Zero(t, penalties)

	var ph models.Pharmacy
	require.NoError(t, env.db.First(&ph, pharmacy.ID).Error)
	assert.True(t, ph.IsActive)
	assert.Zero(t, ph.PenaltyCount)

	assert.Zero(t, env.notifier.Count("payment.overdue"))
	assert.Zero(t, env.notifier.Count("penalty.imposed"))
}

func TestResetReport_ReturnsToPendingAndAllowsReReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	payment := env.reportedPayment(t, posting, pharmacist.ID, pharmacy.ID)

	reset, err := env.payments.ResetReport(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, reset.PaymentStatus)
	assert.Empty(t, reset.TransferName)
	assert.Empty(t, reset.ReportNote)
	assert.Nil(t, reset.PaymentDate)
	assert.Nil(t, reset.ReportedAt)

	_, err = env.payments.Report(ctx, payment.ID, pharmacy.ID, &ReportPaymentInput{
		PaymentDate:  baseTime,
		TransferName: "corrected sender name",
	})
	assert.NoError(t, err)
}

func TestResetReport_OnlyFromReported(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.payments.ResetReport(ctx, contract.Payment.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
