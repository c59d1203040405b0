package services

import (
	"context"
	"testing"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprove_MovesToPendingPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	approved, err := env.contracts.Approve(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractPendingPayment, approved.Status)
	assert.Equal(t, 1, env.notifier.Count("contract.approved"))
}

func TestApprove_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.contracts.Approve(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)

	again, err := env.contracts.Approve(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractPendingPayment, again.Status)
	assert.Equal(t, 1, env.notifier.Count("contract.approved"))
}

func TestApprove_WrongPharmacist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)
	other := env.seedPharmacist(t, "suzuki-ren")

	_, err := env.contracts.Approve(ctx, contract.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRejectOffer_CancelsWithoutPaymentOrPenalty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	rejected, err := env.contracts.RejectOffer(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractCancelled, rejected.Status)
	assert.NotNil(t, rejected.CancelledAt)

	// The companion payment is untouched and no penalty exists.
	payment, err := env.payments.GetByContractID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, payment.PaymentStatus)

	var penalties int64
	env.db.Model(&models.Penalty{}).Count(&penalties)
	assert.Zero(t, penalties)
}

func TestRejectOffer_AfterApprovalRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.contracts.Approve(ctx, contract.ID, pharmacist.ID)
	require.NoError(t, err)

	_, err = env.contracts.RejectOffer(ctx, contract.ID, pharmacist.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestComplete_OnlyFromActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	contract := env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	_, err := env.contracts.Complete(ctx, contract.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	payment := env.reportedPaymentFor(t, contract, pharmacist.ID, pharmacy.ID)
	_, err = env.payments.Confirm(ctx, payment.ID, "statement line 42")
	require.NoError(t, err)

	completed, err := env.contracts.Complete(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, 1, env.notifier.Count("contract.completed"))

	// Completed is terminal.
	_, err = env.contracts.Complete(ctx, contract.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestListByParty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	env.acceptedContract(t, posting, pharmacist.ID, pharmacy.ID)

	byPharmacy, total, err := env.contracts.ListByPharmacy(ctx, pharmacy.ID, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byPharmacy, 1)

	byPharmacist, total, err := env.contracts.ListByPharmacist(ctx, pharmacist.ID, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byPharmacist, 1)

	assert.Equal(t, byPharmacy[0].ID, byPharmacist[0].ID)
}
