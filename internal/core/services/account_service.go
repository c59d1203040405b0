package services

import (
	"context"
	"errors"
	"log"

	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/core/domain"

	"gorm.io/gorm"
)

// Account service errors
var (
	ErrPharmacyNotFound     = errors.New("pharmacy not found")
	ErrPermanentlySuspended = errors.New("pharmacy is permanently suspended")
)

// AccountStandingService owns every mutation of a pharmacy's standing flags.
// All suspension and reinstatement flows go through here so each change is
// logged in one place instead of ad-hoc flag writes across call sites.
type AccountStandingService struct {
	db         *gorm.DB
	pharmacies repositories.PharmacyStore
	postings   repositories.JobPostingStore
}

// NewAccountStandingService creates a new account standing service
func NewAccountStandingService(db *gorm.DB, pharmacies repositories.PharmacyStore, postings repositories.JobPostingStore) *AccountStandingService {
	return &AccountStandingService{
		db:         db,
		pharmacies: pharmacies,
		postings:   postings,
	}
}

// suspendTemporary deactivates the pharmacy and pauses its open postings.
// Runs inside the caller's transaction (penalty imposition).
func (s *AccountStandingService) suspendTemporary(ctx context.Context, tx *gorm.DB, pharmacyID uint, reason string) error {
	if err := s.pharmacies.WithTx(tx).UpdateStanding(ctx, pharmacyID, map[string]interface{}{
		"is_active": false,
	}); err != nil {
		return err
	}

	paused, err := s.postings.WithTx(tx).PauseOpenByPharmacy(ctx, pharmacyID)
	if err != nil {
		return err
	}

	log.Printf("⛔ Pharmacy #%d temporarily suspended (%d postings paused): %s", pharmacyID, paused, reason)
	return nil
}

// suspendPermanent marks the pharmacy permanently suspended. The flag is
// never cleared, not even by penalty resolution.
func (s *AccountStandingService) suspendPermanent(ctx context.Context, tx *gorm.DB, pharmacyID uint, reason string) error {
	if err := s.pharmacies.WithTx(tx).UpdateStanding(ctx, pharmacyID, map[string]interface{}{
		"is_active":             false,
		"permanently_suspended": true,
	}); err != nil {
		return err
	}

	paused, err := s.postings.WithTx(tx).PauseOpenByPharmacy(ctx, pharmacyID)
	if err != nil {
		return err
	}

	log.Printf("⛔ Pharmacy #%d PERMANENTLY suspended (%d postings paused): %s", pharmacyID, paused, reason)
	return nil
}

// reinstate re-activates a temporarily suspended pharmacy and reopens its
// paused postings. A permanently suspended pharmacy is left untouched.
func (s *AccountStandingService) reinstate(ctx context.Context, tx *gorm.DB, pharmacyID uint) error {
	pharmacy, err := s.pharmacies.WithTx(tx).GetByID(ctx, pharmacyID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrPharmacyNotFound
		}
		return err
	}

	if pharmacy.PermanentlySuspended {
		log.Printf("⛔ Pharmacy #%d not reinstated: permanent suspension cannot be cleared", pharmacyID)
		return nil
	}
	if pharmacy.IsActive {
		return nil
	}

	if err := s.pharmacies.WithTx(tx).UpdateStanding(ctx, pharmacyID, map[string]interface{}{
		"is_active": true,
	}); err != nil {
		return err
	}

	resumed, err := s.postings.WithTx(tx).ResumePausedByPharmacy(ctx, pharmacyID)
	if err != nil {
		return err
	}

	log.Printf("✅ Pharmacy #%d reinstated (%d postings reopened)", pharmacyID, resumed)
	return nil
}

// Reinstate is the admin-facing reinstatement call. It refuses permanently
// suspended accounts instead of silently skipping them.
func (s *AccountStandingService) Reinstate(ctx context.Context, pharmacyID uint) error {
	pharmacy, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrPharmacyNotFound
		}
		return err
	}
	if pharmacy.PermanentlySuspended {
		return ErrPermanentlySuspended
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.reinstate(ctx, tx, pharmacyID)
	})
}

// GetStanding returns a pharmacy's current standing
func (s *AccountStandingService) GetStanding(ctx context.Context, pharmacyID uint) (isActive, permanentlySuspended bool, penaltyCount int, err error) {
	pharmacy, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return false, false, 0, ErrPharmacyNotFound
		}
		return false, false, 0, domain.Transient("account.standing", err)
	}
	return pharmacy.IsActive, pharmacy.PermanentlySuspended, pharmacy.PenaltyCount, nil
}
