package services

import (
	"context"
	"errors"
	"fmt"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/core/domain"
	"pharmatch/internal/pkg/clock"

	"gorm.io/gorm"
)

// Application service errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrPostingNotOpen      = errors.New("job posting is not open")
)

// ApplicationService handles application intake and the acceptance that
// births a contract. Withdrawal is deliberately not offered.
type ApplicationService struct {
	db           *gorm.DB
	applications repositories.ApplicationStore
	postings     repositories.JobPostingStore
	contract     *ContractService
	notifier     Notifier
	clk          clock.Clock
}

// NewApplicationService creates a new application service
func NewApplicationService(
	db *gorm.DB,
	applications repositories.ApplicationStore,
	postings repositories.JobPostingStore,
	contractService *ContractService,
	notifier Notifier,
	clk clock.Clock,
) *ApplicationService {
	return &ApplicationService{
		db:           db,
		applications: applications,
		postings:     postings,
		contract:     contractService,
		notifier:     notifier,
		clk:          clk,
	}
}

// Apply submits a pharmacist's application to a posting. At most one
// non-terminal application may exist per (posting, pharmacist) pair.
func (s *ApplicationService) Apply(ctx context.Context, postingID, pharmacistID uint) (*models.Application, error) {
	posting, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, domain.Transient("application.apply", err)
	}
	if posting.Status != models.PostingOpen {
		return nil, ErrPostingNotOpen
	}

	open, err := s.applications.HasOpenApplication(ctx, postingID, pharmacistID)
	if err != nil {
		return nil, domain.Transient("application.apply", err)
	}
	if open {
		return nil, domain.ErrDuplicateApplication
	}

	app := &models.Application{
		JobPostingID: postingID,
		PharmacistID: pharmacistID,
		Status:       domain.ApplicationApplied,
		AppliedAt:    s.clk.Now(),
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, domain.Transient("application.apply", err)
	}
	return app, nil
}

// Accept is the pharmacy accepting the pharmacist. The application flip and
// the contract creation (with its companion payment) are one transaction:
// an accepted application without a contract cannot exist.
func (s *ApplicationService) Accept(ctx context.Context, applicationID, pharmacyID uint) (*models.Contract, error) {
	app, err := s.getForPharmacy(ctx, applicationID, pharmacyID)
	if err != nil {
		return nil, err
	}

	var contract *models.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.applications.WithTx(tx).UpdateStatusFrom(ctx, app.ID,
			[]domain.ApplicationStatus{domain.ApplicationApplied, domain.ApplicationUnderReview},
			domain.ApplicationAccepted, nil)
		if err != nil {
			return domain.Transient("application.accept", err)
		}
		if !ok {
			return domain.ErrInvalidTransition
		}

		contract, err = s.contract.createFromApplication(ctx, tx, app)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyContractCreated(contract)
	}
	return contract, nil
}

// Reject is the pharmacy declining the pharmacist, with a reason shown to
// the applicant.
func (s *ApplicationService) Reject(ctx context.Context, applicationID, pharmacyID uint, reason string) (*models.Application, error) {
	app, err := s.getForPharmacy(ctx, applicationID, pharmacyID)
	if err != nil {
		return nil, err
	}

	ok, err := s.applications.UpdateStatusFrom(ctx, app.ID,
		[]domain.ApplicationStatus{domain.ApplicationApplied, domain.ApplicationUnderReview},
		domain.ApplicationRejected,
		map[string]interface{}{"rejection_reason": reason})
	if err != nil {
		return nil, domain.Transient("application.reject", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	return s.GetByID(ctx, applicationID)
}

// GetByID gets an application by ID
func (s *ApplicationService) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, domain.Transient("application.get", err)
	}
	return app, nil
}

// ListByPosting lists applications for a posting owned by the pharmacy
func (s *ApplicationService) ListByPosting(ctx context.Context, postingID, pharmacyID uint, offset, limit int) ([]*models.Application, int64, error) {
	posting, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, 0, ErrApplicationNotFound
		}
		return nil, 0, domain.Transient("application.list", err)
	}
	if posting.PharmacyID != pharmacyID {
		return nil, 0, fmt.Errorf("%w: posting #%d", ErrNotAuthorized, postingID)
	}
	return s.applications.ListByPosting(ctx, postingID, offset, limit)
}

func (s *ApplicationService) getForPharmacy(ctx context.Context, applicationID, pharmacyID uint) (*models.Application, error) {
	app, err := s.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.JobPosting == nil || app.JobPosting.PharmacyID != pharmacyID {
		return nil, fmt.Errorf("%w: application #%d", ErrNotAuthorized, applicationID)
	}
	return app, nil
}
