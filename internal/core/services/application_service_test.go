package services

import (
	"context"
	"testing"
	"time"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_CreatesApplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, pharmacist, posting := env.seedMarketplace(t)

	app, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationApplied, app.Status)
	assert.WithinDuration(t, baseTime, app.AppliedAt, 0)
}

func TestApply_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, pharmacist, posting := env.seedMarketplace(t)

	_, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	_, err = env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicateApplication)
}

func TestApply_AllowedAgainAfterRejection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)

	app, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	_, err = env.applications.Reject(ctx, app.ID, pharmacy.ID, "shift already staffed")
	require.NoError(t, err)

	_, err = env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	assert.NoError(t, err)
}

func TestApply_PostingNotOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, _ := env.seedMarketplace(t)

	closed := &models.JobPosting{
		PharmacyID:      pharmacy.ID,
		Title:           "Filled shift",
		DailyWage:       20000,
		WorkDays:        5,
		InitialWorkDate: baseTime.AddDate(0, 0, 20),
		Status:          models.PostingFilled,
	}
	require.NoError(t, env.postings.Create(ctx, closed))

	_, err := env.applications.Apply(ctx, closed.ID, pharmacist.ID)
	assert.ErrorIs(t, err, ErrPostingNotOpen)
}

func TestAccept_CreatesContractAndPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)

	app, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	contract, err := env.applications.Accept(ctx, app.ID, pharmacy.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ContractPendingApproval, contract.Status)
	assert.Equal(t, int64(750000), contract.TotalCompensation)
	assert.Equal(t, int64(300000), contract.PlatformFee)
	assert.WithinDuration(t, posting.InitialWorkDate.Add(-72*time.Hour), contract.PaymentDeadline, 0)
	assert.WithinDuration(t, posting.InitialWorkDate.AddDate(0, 0, 30), contract.EndDate, 0)

	require.NotNil(t, contract.Payment)
	assert.Equal(t, domain.PaymentPending, contract.Payment.PaymentStatus)
	assert.Equal(t, int64(300000), contract.Payment.Amount)
	assert.NotEmpty(t, contract.Payment.ReferenceNo)

	got, err := env.applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, got.Status)
	assert.Equal(t, 1, env.notifier.Count("contract.created"))
}

func TestAccept_SecondAcceptRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)

	app, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	_, err = env.applications.Accept(ctx, app.ID, pharmacy.ID)
	require.NoError(t, err)

	_, err = env.applications.Accept(ctx, app.ID, pharmacy.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAccept_SuspendedPharmacyRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)

	app, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	require.NoError(t, env.pharmacies.UpdateStanding(ctx, pharmacy.ID, map[string]interface{}{
		"is_active": false,
	}))

	_, err = env.applications.Accept(ctx, app.ID, pharmacy.ID)
	assert.ErrorIs(t, err, domain.ErrAccountSuspended)

	// The acceptance rolled back with the contract: the application is
	// still open.
	got, err := env.applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApplied, got.Status)
}

func TestAccept_WrongPharmacy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, pharmacist, posting := env.seedMarketplace(t)
	other := env.seedPharmacy(t, "rival-pharmacy")

	app, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	_, err = env.applications.Accept(ctx, app.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestReject_RecordsReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)

	app, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	rejected, err := env.applications.Reject(ctx, app.ID, pharmacy.ID, "shift already staffed")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, rejected.Status)
	assert.Equal(t, "shift already staffed", rejected.RejectionReason)

	// Terminal: a second decision is refused.
	_, err = env.applications.Accept(ctx, app.ID, pharmacy.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestListByPosting_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pharmacy, pharmacist, posting := env.seedMarketplace(t)
	other := env.seedPharmacy(t, "rival-pharmacy")

	_, err := env.applications.Apply(ctx, posting.ID, pharmacist.ID)
	require.NoError(t, err)

	apps, total, err := env.applications.ListByPosting(ctx, posting.ID, pharmacy.ID, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, apps, 1)

	_, _, err = env.applications.ListByPosting(ctx, posting.ID, other.ID, 0, 20)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestListByPosting_SurfacesQueryErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, _, posting := env.seedMarketplace(t)

	require.NoError(t, env.db.Migrator().DropTable(&models.Application{}))

	_, _, err := env.appRepo.ListByPosting(ctx, posting.ID, 0, 20)
	assert.Error(t, err)
}
