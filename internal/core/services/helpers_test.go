package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/pkg/clock"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// baseTime is the pinned test clock. The seeded posting starts ten days
// later, so its fee deadline (start minus three days) is seven days out.
var baseTime = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// recordingNotifier captures event names in call order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}

func (n *recordingNotifier) Count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e == event {
			count++
		}
	}
	return count
}

func (n *recordingNotifier) NotifyContractCreated(*models.Contract)   { n.record("contract.created") }
func (n *recordingNotifier) NotifyOfferApproved(*models.Contract)     { n.record("contract.approved") }
func (n *recordingNotifier) NotifyOfferRejected(*models.Contract)     { n.record("contract.rejected") }
func (n *recordingNotifier) NotifyContractActivated(*models.Contract) { n.record("contract.activated") }
func (n *recordingNotifier) NotifyContractExpired(*models.Contract)   { n.record("contract.expired") }
func (n *recordingNotifier) NotifyContractCompleted(*models.Contract) { n.record("contract.completed") }
func (n *recordingNotifier) NotifyPaymentReported(*models.Payment)    { n.record("payment.reported") }
func (n *recordingNotifier) NotifyPaymentConfirmed(*models.Payment)   { n.record("payment.confirmed") }
func (n *recordingNotifier) NotifyPaymentOverdue(*models.Payment)     { n.record("payment.overdue") }
func (n *recordingNotifier) NotifyPenaltyImposed(*models.Penalty)     { n.record("penalty.imposed") }
func (n *recordingNotifier) NotifyPenaltyResolved(*models.Penalty)    { n.record("penalty.resolved") }

// testEnv wires the full service graph over an in-memory database.
type testEnv struct {
	db       *gorm.DB
	clk      *clock.Fixed
	notifier *recordingNotifier

	pharmacies *repositories.PharmacyRepository
	postings   *repositories.JobPostingRepository
	appRepo    *repositories.ApplicationRepository
	conRepo    *repositories.ContractRepository
	payRepo    *repositories.PaymentRepository
	penRepo    *repositories.PenaltyRepository

	account      *AccountStandingService
	penalties    *PenaltyService
	contracts    *ContractService
	payments     *PaymentService
	applications *ApplicationService
	scheduler    *DeadlineScheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))

	env := &testEnv{
		db:         db,
		clk:        clock.NewFixed(baseTime),
		notifier:   &recordingNotifier{},
		pharmacies: repositories.NewPharmacyRepository(db),
		postings:   repositories.NewJobPostingRepository(db),
		appRepo:    repositories.NewApplicationRepository(db),
		conRepo:    repositories.NewContractRepository(db),
		payRepo:    repositories.NewPaymentRepository(db),
		penRepo:    repositories.NewPenaltyRepository(db),
	}

	env.account = NewAccountStandingService(db, env.pharmacies, env.postings)
	env.penalties = NewPenaltyService(db, env.penRepo, env.account, env.notifier, env.clk)
	env.contracts = NewContractService(db, env.conRepo, env.payRepo, env.pharmacies, env.postings, env.notifier, env.clk)
	env.payments = NewPaymentService(db, env.payRepo, env.conRepo, env.contracts, env.penalties, env.notifier, env.clk)
	env.applications = NewApplicationService(db, env.appRepo, env.postings, env.contracts, env.notifier, env.clk)
	env.scheduler = NewDeadlineScheduler(env.payRepo, env.conRepo, env.payments, env.contracts, env.clk, time.Minute)

	return env
}

func (env *testEnv) seedPharmacy(t *testing.T, name string) *models.Pharmacy {
	t.Helper()

	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     models.RolePharmacy,
		IsActive: true,
	}
	require.NoError(t, env.db.Create(user).Error)

	pharmacy := &models.Pharmacy{
		UserID:   user.ID,
		Name:     name,
		Phone:    "03-1234-5678",
		Email:    name + "@example.com",
		Address:  "1-2-3 Nihonbashi, Tokyo",
		IsActive: true,
	}
	require.NoError(t, env.pharmacies.Create(context.Background(), pharmacy))
	return pharmacy
}

func (env *testEnv) seedPharmacist(t *testing.T, name string) *models.Pharmacist {
	t.Helper()

	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     models.RolePharmacist,
		IsActive: true,
	}
	require.NoError(t, env.db.Create(user).Error)

	pharmacist := &models.Pharmacist{
		UserID:    user.ID,
		Name:      name,
		Phone:     "090-1111-2222",
		Email:     name + "@example.com",
		LicenseNo: "PH-2026-0042",
	}
	require.NoError(t, env.db.Create(pharmacist).Error)
	return pharmacist
}

func (env *testEnv) seedPosting(t *testing.T, pharmacyID uint) *models.JobPosting {
	t.Helper()

	posting := &models.JobPosting{
		PharmacyID:      pharmacyID,
		Title:           "Locum pharmacist, weekday mornings",
		DailyWage:       25000,
		WorkDays:        30,
		InitialWorkDate: baseTime.AddDate(0, 0, 10),
		Status:          models.PostingOpen,
	}
	require.NoError(t, env.postings.Create(context.Background(), posting))
	return posting
}

// seedMarketplace creates one pharmacy, one pharmacist and one open posting
// on the 25000 yen x 30 days terms.
func (env *testEnv) seedMarketplace(t *testing.T) (*models.Pharmacy, *models.Pharmacist, *models.JobPosting) {
	t.Helper()
	pharmacy := env.seedPharmacy(t, "sakura-pharmacy")
	pharmacist := env.seedPharmacist(t, "tanaka-yuki")
	posting := env.seedPosting(t, pharmacy.ID)
	return pharmacy, pharmacist, posting
}

// acceptedContract walks apply → accept and returns the contract with its
// companion payment.
func (env *testEnv) acceptedContract(t *testing.T, posting *models.JobPosting, pharmacistID, pharmacyID uint) *models.Contract {
	t.Helper()
	ctx := context.Background()

	app, err := env.applications.Apply(ctx, posting.ID, pharmacistID)
	require.NoError(t, err)

	contract, err := env.applications.Accept(ctx, app.ID, pharmacyID)
	require.NoError(t, err)
	require.NotNil(t, contract.Payment)
	return contract
}

// reportedPayment walks apply → accept → approve → report and returns the
// reported payment.
func (env *testEnv) reportedPayment(t *testing.T, posting *models.JobPosting, pharmacistID, pharmacyID uint) *models.Payment {
	t.Helper()
	contract := env.acceptedContract(t, posting, pharmacistID, pharmacyID)
	return env.reportedPaymentFor(t, contract, pharmacistID, pharmacyID)
}

// reportedPaymentFor approves an accepted contract and reports its fee.
func (env *testEnv) reportedPaymentFor(t *testing.T, contract *models.Contract, pharmacistID, pharmacyID uint) *models.Payment {
	t.Helper()
	ctx := context.Background()

	_, err := env.contracts.Approve(ctx, contract.ID, pharmacistID)
	require.NoError(t, err)

	payment, err := env.payments.Report(ctx, contract.Payment.ID, pharmacyID, &ReportPaymentInput{
		PaymentDate:  env.clk.Now(),
		TransferName: "sakura pharmacy co ltd",
	})
	require.NoError(t, err)
	return payment
}
